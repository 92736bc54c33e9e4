package store

import (
	"context"
	"fmt"
)

// Router sends each table to the backend that owns it, e.g. items to Mongo
// and engagement facts to Postgres. Tables without a route go to the
// fallback; with no fallback they fail with ErrUnknownTable.
type Router struct {
	routes   map[string]Store
	fallback Store
}

// NewRouter returns a router with an optional fallback backend (may be nil)
func NewRouter(fallback Store) *Router {
	return &Router{routes: map[string]Store{}, fallback: fallback}
}

// Route assigns tables to s and returns the router for chaining
func (r *Router) Route(s Store, tables ...string) *Router {
	for _, t := range tables {
		r.routes[t] = s
	}
	return r
}

func (r *Router) backend(table string) (Store, error) {
	if s, ok := r.routes[table]; ok {
		return s, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
}

// Insert implements Store
func (r *Router) Insert(ctx context.Context, table string, rec Record) (string, error) {
	s, err := r.backend(table)
	if err != nil {
		return "", err
	}
	return s.Insert(ctx, table, rec)
}

// DeleteWhere implements Store
func (r *Router) DeleteWhere(ctx context.Context, table string, where Predicate) (int64, error) {
	s, err := r.backend(table)
	if err != nil {
		return 0, err
	}
	return s.DeleteWhere(ctx, table, where)
}

// UpdateWhere implements Store
func (r *Router) UpdateWhere(ctx context.Context, table string, where Predicate, patch Record) (int64, error) {
	s, err := r.backend(table)
	if err != nil {
		return 0, err
	}
	return s.UpdateWhere(ctx, table, where, patch)
}

// ScanWhere implements Store
func (r *Router) ScanWhere(ctx context.Context, table string, where Predicate, order ...Order) ([]Record, error) {
	s, err := r.backend(table)
	if err != nil {
		return nil, err
	}
	return s.ScanWhere(ctx, table, where, order...)
}
