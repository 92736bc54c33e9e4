package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/anonto42/component-feed/backend/internal/store"
)

func TestFilter(t *testing.T) {
	f := filter(store.Where(
		store.Eq("user_id", "u1"),
		store.InStrings("item_id", []string{"a", "b"}),
	))
	assert.Equal(t, "u1", f["user_id"])
	assert.Equal(t, bson.M{"$in": bson.A{"a", "b"}}, f["item_id"])

	assert.Empty(t, filter(nil))
}

func TestSortDoc(t *testing.T) {
	d := sortDoc([]store.Order{store.Desc("likes_count"), store.Desc("created_at"), store.Asc("id")})
	assert.Equal(t, bson.D{
		{Key: "likes_count", Value: -1},
		{Key: "created_at", Value: -1},
		{Key: "id", Value: 1},
	}, d)
}

func TestKeyIndex(t *testing.T) {
	idx := keyIndex(store.Table{Name: "save_facts", Key: []string{"user_id", "item_id"}})
	assert.Equal(t, bson.D{{Key: "user_id", Value: 1}, {Key: "item_id", Value: 1}}, idx.Keys)
	require.NotNil(t, idx.Options.Unique)
	assert.True(t, *idx.Options.Unique)
}

func TestNormalize(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := normalize(bson.M{
		"_id":         primitive.NewObjectID(),
		"id":          "a",
		"created_at":  primitive.NewDateTimeFromTime(at),
		"likes_count": int32(4),
		"tags":        primitive.A{"css", "glass"},
		"mixed":       primitive.A{"x", int32(1)},
	})

	_, hasID := rec["_id"]
	assert.False(t, hasID)
	assert.Equal(t, "a", rec.String("id"))
	assert.Equal(t, at, rec.Time("created_at"))
	assert.Equal(t, int64(4), rec["likes_count"])
	assert.Equal(t, []string{"css", "glass"}, rec["tags"])
	assert.Equal(t, []any{"x", int64(1)}, rec["mixed"])
}

func TestUnknownTableAndEmptyIn(t *testing.T) {
	s := New(nil, store.NewClock(), store.Table{Name: "like_facts", Key: []string{"user_id", "item_id"}})
	ctx := context.Background()

	_, err := s.ScanWhere(ctx, "items", nil)
	assert.ErrorIs(t, err, store.ErrUnknownTable)

	recs, err := s.ScanWhere(ctx, "like_facts", store.Where(store.In("item_id")))
	require.NoError(t, err)
	assert.Empty(t, recs)

	n, err := s.UpdateWhere(ctx, "like_facts", store.Where(store.Eq("user_id", "u")), store.Record{"user_id": "z"})
	require.NoError(t, err)
	assert.Zero(t, n)
}
