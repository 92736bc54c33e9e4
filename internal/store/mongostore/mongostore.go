// Package mongostore is the MongoDB backend of the record store. Each table
// is a collection; table keys are enforced with unique compound indexes.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/component-feed/backend/internal/store"
)

// Store implements store.Store over a mongo database
type Store struct {
	db     *mongo.Database
	clock  *store.Clock
	tables map[string]store.Table
}

// New returns a Store serving tables from db
func New(db *mongo.Database, clock *store.Clock, tables ...store.Table) *Store {
	s := &Store{db: db, clock: clock, tables: make(map[string]store.Table, len(tables))}
	for _, t := range tables {
		s.tables[t.Name] = t
	}
	return s
}

// EnsureIndexes creates the unique key index of every table
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, t := range s.tables {
		if len(t.Key) == 0 {
			continue
		}
		_, err := s.db.Collection(t.Name).Indexes().CreateOne(ctx, keyIndex(t))
		if err != nil {
			return fmt.Errorf("ensure index on %s: %w", t.Name, err)
		}
	}
	return nil
}

func keyIndex(t store.Table) mongo.IndexModel {
	keys := bson.D{}
	for _, f := range t.Key {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetUnique(true).SetName("uniq_" + t.Name),
	}
}

func (s *Store) table(name string) (store.Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return store.Table{}, fmt.Errorf("%w: %s", store.ErrUnknownTable, name)
	}
	return t, nil
}

// Insert implements store.Store
func (s *Store) Insert(ctx context.Context, table string, rec store.Record) (string, error) {
	t, err := s.table(table)
	if err != nil {
		return "", err
	}
	doc := rec.Clone()
	s.clock.Stamp(doc)
	if _, err := s.db.Collection(table).InsertOne(ctx, bson.M(doc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", store.ErrDuplicate
		}
		return "", err
	}
	return t.KeyOf(doc), nil
}

// DeleteWhere implements store.Store
func (s *Store) DeleteWhere(ctx context.Context, table string, where store.Predicate) (int64, error) {
	if _, err := s.table(table); err != nil {
		return 0, err
	}
	if where.Empty() {
		return 0, nil
	}
	res, err := s.db.Collection(table).DeleteMany(ctx, filter(where))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// UpdateWhere implements store.Store
func (s *Store) UpdateWhere(ctx context.Context, table string, where store.Predicate, patch store.Record) (int64, error) {
	t, err := s.table(table)
	if err != nil {
		return 0, err
	}
	if where.Empty() || len(patch) == 0 {
		return 0, nil
	}
	set := bson.M{}
	for k, v := range patch {
		if isKey(t, k) {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return 0, nil
	}
	res, err := s.db.Collection(table).UpdateMany(ctx, filter(where), bson.M{"$set": set})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// ScanWhere implements store.Store
func (s *Store) ScanWhere(ctx context.Context, table string, where store.Predicate, order ...store.Order) ([]store.Record, error) {
	if _, err := s.table(table); err != nil {
		return nil, err
	}
	if where.Empty() {
		return []store.Record{}, nil
	}
	opts := options.Find()
	if len(order) > 0 {
		opts.SetSort(sortDoc(order))
	}
	cursor, err := s.db.Collection(table).Find(ctx, filter(where), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]store.Record, len(docs))
	for i, d := range docs {
		out[i] = normalize(d)
	}
	return out, nil
}

func isKey(t store.Table, field string) bool {
	for _, k := range t.Key {
		if k == field {
			return true
		}
	}
	return false
}

// filter translates a predicate into a mongo filter document
func filter(where store.Predicate) bson.M {
	f := bson.M{}
	for _, c := range where {
		switch c.Op {
		case store.OpIn:
			f[c.Field] = bson.M{"$in": bson.A(c.Values)}
		default:
			f[c.Field] = c.Values[0]
		}
	}
	return f
}

func sortDoc(order []store.Order) bson.D {
	d := make(bson.D, len(order))
	for i, o := range order {
		dir := 1
		if o.Desc {
			dir = -1
		}
		d[i] = bson.E{Key: o.Field, Value: dir}
	}
	return d
}

// normalize maps driver types back to the shapes the memory store returns
func normalize(doc bson.M) store.Record {
	rec := make(store.Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			continue
		}
		rec[k] = normalizeValue(v)
	}
	return rec
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time().UTC()
	case int32:
		return int64(x)
	case primitive.A:
		strs := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				out := make([]any, len(x))
				for i, e := range x {
					out[i] = normalizeValue(e)
				}
				return out
			}
			strs = append(strs, s)
		}
		return strs
	default:
		return v
	}
}
