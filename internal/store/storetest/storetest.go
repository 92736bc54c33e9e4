// Package storetest provides store.Store wrappers for tests: call counting,
// injected failures and blocking.
package storetest

import (
	"context"
	"sync"

	"github.com/anonto42/component-feed/backend/internal/store"
)

// Call records one store operation
type Call struct {
	Op    string
	Table string
	Where store.Predicate
}

// FailFunc decides whether a call fails; return nil to let it through
type FailFunc func(c Call) error

// Spy wraps a store, records every call and can inject failures
type Spy struct {
	Next store.Store

	mu    sync.Mutex
	calls []Call
	fail  FailFunc
}

// NewSpy wraps next
func NewSpy(next store.Store) *Spy { return &Spy{Next: next} }

// FailWhen installs f; pass nil to clear it
func (s *Spy) FailWhen(f FailFunc) {
	s.mu.Lock()
	s.fail = f
	s.mu.Unlock()
}

// Calls returns a copy of the recorded calls
func (s *Spy) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many calls matched op and table
func (s *Spy) Count(op, table string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Op == op && c.Table == table {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls
func (s *Spy) Reset() {
	s.mu.Lock()
	s.calls = nil
	s.mu.Unlock()
}

func (s *Spy) record(c Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, c)
	if s.fail != nil {
		return s.fail(c)
	}
	return nil
}

// Insert implements store.Store
func (s *Spy) Insert(ctx context.Context, table string, rec store.Record) (string, error) {
	if err := s.record(Call{Op: "insert", Table: table}); err != nil {
		return "", err
	}
	return s.Next.Insert(ctx, table, rec)
}

// DeleteWhere implements store.Store
func (s *Spy) DeleteWhere(ctx context.Context, table string, where store.Predicate) (int64, error) {
	if err := s.record(Call{Op: "delete", Table: table, Where: where}); err != nil {
		return 0, err
	}
	return s.Next.DeleteWhere(ctx, table, where)
}

// UpdateWhere implements store.Store
func (s *Spy) UpdateWhere(ctx context.Context, table string, where store.Predicate, patch store.Record) (int64, error) {
	if err := s.record(Call{Op: "update", Table: table, Where: where}); err != nil {
		return 0, err
	}
	return s.Next.UpdateWhere(ctx, table, where, patch)
}

// ScanWhere implements store.Store
func (s *Spy) ScanWhere(ctx context.Context, table string, where store.Predicate, order ...store.Order) ([]store.Record, error) {
	if err := s.record(Call{Op: "scan", Table: table, Where: where}); err != nil {
		return nil, err
	}
	return s.Next.ScanWhere(ctx, table, where, order...)
}

// Blocking is a store whose every call waits for ctx to end
type Blocking struct{}

// Insert implements store.Store
func (Blocking) Insert(ctx context.Context, _ string, _ store.Record) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// DeleteWhere implements store.Store
func (Blocking) DeleteWhere(ctx context.Context, _ string, _ store.Predicate) (int64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

// UpdateWhere implements store.Store
func (Blocking) UpdateWhere(ctx context.Context, _ string, _ store.Predicate, _ store.Record) (int64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

// ScanWhere implements store.Store
func (Blocking) ScanWhere(ctx context.Context, _ string, _ store.Predicate, _ ...store.Order) ([]store.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
