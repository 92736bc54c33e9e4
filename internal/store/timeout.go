package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/component-feed/backend/internal/errs"
)

// Timeout bounds every call to the wrapped store and turns backend failures
// into errs.KindStoreUnavailable. It never retries. ErrDuplicate and errors
// that already carry a kind pass through untouched.
type Timeout struct {
	next Store
	d    time.Duration
}

// WithTimeout wraps s. A non-positive d keeps only the error mapping.
func WithTimeout(s Store, d time.Duration) *Timeout { return &Timeout{next: s, d: d} }

func (t *Timeout) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, t.d)
}

func mapErr(err error, op, table string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDuplicate) {
		return err
	}
	if _, ok := errs.As(err); ok {
		return err
	}
	msg := fmt.Sprintf("store %s %s", op, table)
	if errors.Is(err, context.DeadlineExceeded) {
		msg += ": timed out"
	}
	return errs.WithOp(errs.Unavailable(err, msg), op)
}

// Insert implements Store
func (t *Timeout) Insert(ctx context.Context, table string, rec Record) (string, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	key, err := t.next.Insert(ctx, table, rec)
	return key, mapErr(err, "insert", table)
}

// DeleteWhere implements Store
func (t *Timeout) DeleteWhere(ctx context.Context, table string, where Predicate) (int64, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	n, err := t.next.DeleteWhere(ctx, table, where)
	return n, mapErr(err, "delete", table)
}

// UpdateWhere implements Store
func (t *Timeout) UpdateWhere(ctx context.Context, table string, where Predicate, patch Record) (int64, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	n, err := t.next.UpdateWhere(ctx, table, where, patch)
	return n, mapErr(err, "update", table)
}

// ScanWhere implements Store
func (t *Timeout) ScanWhere(ctx context.Context, table string, where Predicate, order ...Order) ([]Record, error) {
	ctx, cancel := t.bound(ctx)
	defer cancel()
	recs, err := t.next.ScanWhere(ctx, table, where, order...)
	return recs, mapErr(err, "scan", table)
}
