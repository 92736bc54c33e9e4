package store

import (
	"context"
	"slices"
	"sync"
)

type memTable struct {
	def  Table
	rows []Record
	keys map[string]struct{}
}

// Memory is an in-process Store. Each call holds one lock, so single calls
// are atomic but sequences of calls are not, same as the networked backends.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]*memTable
	clock  *Clock
}

// NewMemory returns an empty store. Tables not declared here are created on
// first insert without a key.
func NewMemory(tables ...Table) *Memory {
	return NewMemoryWithClock(NewClock(), tables...)
}

// NewMemoryWithClock is NewMemory with an explicit insertion clock
func NewMemoryWithClock(clock *Clock, tables ...Table) *Memory {
	m := &Memory{tables: make(map[string]*memTable, len(tables)), clock: clock}
	for _, t := range tables {
		m.tables[t.Name] = &memTable{def: t, keys: map[string]struct{}{}}
	}
	return m
}

func (m *Memory) table(name string) *memTable {
	t, ok := m.tables[name]
	if !ok {
		t = &memTable{def: Table{Name: name}, keys: map[string]struct{}{}}
		m.tables[name] = t
	}
	return t
}

// Insert implements Store
func (m *Memory) Insert(ctx context.Context, table string, rec Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	row := rec.Clone()
	key := t.def.KeyOf(row)
	if key != "" {
		if _, dup := t.keys[key]; dup {
			return "", ErrDuplicate
		}
		t.keys[key] = struct{}{}
	}
	m.clock.Stamp(row)
	t.rows = append(t.rows, row)
	return key, nil
}

// DeleteWhere implements Store
func (m *Memory) DeleteWhere(ctx context.Context, table string, where Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	if where.Empty() {
		return 0, nil
	}
	var n int64
	kept := t.rows[:0]
	for _, row := range t.rows {
		if where.Match(row) {
			if key := t.def.KeyOf(row); key != "" {
				delete(t.keys, key)
			}
			n++
			continue
		}
		kept = append(kept, row)
	}
	clear(t.rows[len(kept):])
	t.rows = kept
	return n, nil
}

// UpdateWhere implements Store. Key fields cannot be patched.
func (m *Memory) UpdateWhere(ctx context.Context, table string, where Predicate, patch Record) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(table)
	if where.Empty() {
		return 0, nil
	}
	var n int64
	for _, row := range t.rows {
		if !where.Match(row) {
			continue
		}
		for k, v := range patch {
			if slices.Contains(t.def.Key, k) {
				continue
			}
			row[k] = v
		}
		n++
	}
	return n, nil
}

// ScanWhere implements Store. Returned records are copies.
func (m *Memory) ScanWhere(ctx context.Context, table string, where Predicate, order ...Order) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[table]
	if !ok || where.Empty() {
		return []Record{}, nil
	}
	out := make([]Record, 0, len(t.rows))
	for _, row := range t.rows {
		if where.Match(row) {
			out = append(out, row.Clone())
		}
	}
	SortRecords(out, order...)
	return out, nil
}

// SortRecords stably sorts recs by order
func SortRecords(recs []Record, order ...Order) {
	if len(order) == 0 {
		return
	}
	slices.SortStableFunc(recs, func(a, b Record) int {
		for _, o := range order {
			c := compareValues(a[o.Field], b[o.Field])
			if c == 0 {
				continue
			}
			if o.Desc {
				return -c
			}
			return c
		}
		return 0
	})
}
