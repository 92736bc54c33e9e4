// Package store is the generic keyed-record adapter the ledger and feed are
// built on. Backends live in subpackages (pgstore, mongostore) plus the
// in-memory Memory backend here.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrDuplicate is returned by Insert when a record with the same key exists
var ErrDuplicate = errors.New("store: duplicate key")

// ErrUnknownTable is returned when a table has no backend
var ErrUnknownTable = errors.New("store: unknown table")

// CreatedAtField is stamped by every backend on Insert
const CreatedAtField = "created_at"

// Store is the record store contract. Implementations must be safe for
// concurrent use. No operation spans more than one table and none is
// transactional across calls.
type Store interface {
	// Insert adds rec to table and returns its key. Fails with ErrDuplicate
	// when the table key already exists.
	Insert(ctx context.Context, table string, rec Record) (string, error)

	// DeleteWhere removes every record matching where and reports how many
	DeleteWhere(ctx context.Context, table string, where Predicate) (int64, error)

	// UpdateWhere applies patch to every record matching where and reports
	// how many matched
	UpdateWhere(ctx context.Context, table string, where Predicate, patch Record) (int64, error)

	// ScanWhere returns records matching where, sorted by order
	ScanWhere(ctx context.Context, table string, where Predicate, order ...Order) ([]Record, error)
}

// Table describes a table's key. Key fields together identify one record.
type Table struct {
	Name string
	Key  []string
}

// KeyOf renders the key of rec for t
func (t Table) KeyOf(rec Record) string {
	if len(t.Key) == 0 {
		return ""
	}
	parts := make([]string, len(t.Key))
	for i, f := range t.Key {
		parts[i] = rec.String(f)
	}
	return strings.Join(parts, "/")
}

// Order sorts scan results by Field
type Order struct {
	Field string
	Desc  bool
}

// Asc orders ascending by field
func Asc(field string) Order { return Order{Field: field} }

// Desc orders descending by field
func Desc(field string) Order { return Order{Field: field, Desc: true} }
