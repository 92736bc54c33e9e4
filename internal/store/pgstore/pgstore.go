// Package pgstore is the Postgres backend of the record store, built on gorm
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/anonto42/component-feed/backend/internal/store"
)

const pgUniqueViolation = "23505"

// Table binds a store table to the gorm model used to migrate it
type Table struct {
	store.Table
	Model any
}

// DefaultTables are the tables this service keeps in Postgres
func DefaultTables() []Table {
	return []Table{
		{Table: store.Table{Name: "items", Key: []string{"id"}}, Model: &ItemRow{}},
		{Table: store.Table{Name: "like_facts", Key: []string{"user_id", "item_id"}}, Model: &LikeFactRow{}},
		{Table: store.Table{Name: "save_facts", Key: []string{"user_id", "item_id"}}, Model: &SaveFactRow{}},
		{Table: store.Table{Name: "profiles", Key: []string{"user_id"}}, Model: &ProfileRow{}},
	}
}

// Store implements store.Store over a gorm connection
type Store struct {
	db     *gorm.DB
	clock  *store.Clock
	tables map[string]Table
}

// New returns a Store over db serving tables
func New(db *gorm.DB, clock *store.Clock, tables ...Table) *Store {
	s := &Store{db: db, clock: clock, tables: make(map[string]Table, len(tables))}
	for _, t := range tables {
		s.tables[t.Name] = t
	}
	return s
}

// Migrate creates or updates the registered tables
func (s *Store) Migrate(ctx context.Context) error {
	models := make([]any, 0, len(s.tables))
	for _, t := range s.tables {
		models = append(models, t.Model)
	}
	return s.db.WithContext(ctx).AutoMigrate(models...)
}

func (s *Store) table(name string) (Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return Table{}, fmt.Errorf("%w: %s", store.ErrUnknownTable, name)
	}
	return t, nil
}

// Insert implements store.Store
func (s *Store) Insert(ctx context.Context, table string, rec store.Record) (string, error) {
	t, err := s.table(table)
	if err != nil {
		return "", err
	}
	row := rec.Clone()
	s.clock.Stamp(row)
	values, err := encode(row)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Table(table).Create(values).Error; err != nil {
		if isDuplicate(err) {
			return "", store.ErrDuplicate
		}
		return "", err
	}
	return t.KeyOf(row), nil
}

// DeleteWhere implements store.Store
func (s *Store) DeleteWhere(ctx context.Context, table string, where store.Predicate) (int64, error) {
	t, err := s.table(table)
	if err != nil {
		return 0, err
	}
	if where.Empty() {
		return 0, nil
	}
	model := reflect.New(reflect.TypeOf(t.Model).Elem()).Interface()
	res := s.db.WithContext(ctx).Clauses(clause.Where{Exprs: whereExprs(where)}).Delete(model)
	return res.RowsAffected, res.Error
}

// UpdateWhere implements store.Store
func (s *Store) UpdateWhere(ctx context.Context, table string, where store.Predicate, patch store.Record) (int64, error) {
	if _, err := s.table(table); err != nil {
		return 0, err
	}
	if where.Empty() || len(patch) == 0 {
		return 0, nil
	}
	values, err := encode(patch)
	if err != nil {
		return 0, err
	}
	res := s.db.WithContext(ctx).Table(table).Clauses(clause.Where{Exprs: whereExprs(where)}).Updates(values)
	return res.RowsAffected, res.Error
}

// ScanWhere implements store.Store
func (s *Store) ScanWhere(ctx context.Context, table string, where store.Predicate, order ...store.Order) ([]store.Record, error) {
	if _, err := s.table(table); err != nil {
		return nil, err
	}
	if where.Empty() {
		return []store.Record{}, nil
	}
	q := s.db.WithContext(ctx).Table(table)
	if len(where) > 0 {
		q = q.Clauses(clause.Where{Exprs: whereExprs(where)})
	}
	for _, o := range orderColumns(order) {
		q = q.Order(o)
	}
	var rows []map[string]any
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]store.Record, len(rows))
	for i, r := range rows {
		out[i] = store.Record(r)
	}
	return out, nil
}

// whereExprs translates a predicate into gorm clause expressions
func whereExprs(where store.Predicate) []clause.Expression {
	exprs := make([]clause.Expression, 0, len(where))
	for _, c := range where {
		col := clause.Column{Name: c.Field}
		switch c.Op {
		case store.OpIn:
			exprs = append(exprs, clause.IN{Column: col, Values: c.Values})
		default:
			exprs = append(exprs, clause.Eq{Column: col, Value: c.Values[0]})
		}
	}
	return exprs
}

func orderColumns(order []store.Order) []clause.OrderByColumn {
	out := make([]clause.OrderByColumn, len(order))
	for i, o := range order {
		out[i] = clause.OrderByColumn{Column: clause.Column{Name: o.Field}, Desc: o.Desc}
	}
	return out
}

// encode turns a record into column values; string slices become JSON
func encode(rec store.Record) (map[string]any, error) {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if ss, ok := v.([]string); ok {
			if ss == nil {
				ss = []string{}
			}
			b, err := json.Marshal(ss)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", k, err)
			}
			out[k] = string(b)
			continue
		}
		out[k] = v
	}
	return out, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
