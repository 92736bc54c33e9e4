package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/store"
)

func newStore() store.Store { return store.NewMemory(Tables()...) }

func TestItemRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewItemRepository(newStore())

	item := &models.Item{OwnerID: "u1", Title: "Glass Card", Body: "<div/>"}
	require.NoError(t, repo.CreateItem(ctx, item))
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, []string{}, item.Tags)

	got, err := repo.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, *item, *got)

	_, err = repo.GetItemByID(ctx, "missing")
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestItemRepositoryOrderings(t *testing.T) {
	ctx := context.Background()
	st := newStore()
	repo := NewItemRepository(st)

	var ids []string
	for _, owner := range []string{"u1", "u2", "u1"} {
		item := &models.Item{OwnerID: owner, Title: "t", Body: "b"}
		require.NoError(t, repo.CreateItem(ctx, item))
		ids = append(ids, item.ID)
	}
	require.NoError(t, repo.SetCount(ctx, ids[0], LikesCountField, 5))

	newest, err := repo.ListItems(ctx, "", NewestFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, itemIDs(newest))

	liked, err := repo.ListItems(ctx, "", MostLikedFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[0], ids[2], ids[1]}, itemIDs(liked))

	owned, err := repo.ListItems(ctx, "u1", NewestFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[0]}, itemIDs(owned))

	byIDs, err := repo.GetItemsByIDs(ctx, []string{ids[1], "gone"})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[1]}, itemIDs(byIDs))

	err = repo.SetCount(ctx, "gone", LikesCountField, 1)
	assert.True(t, errs.Is(err, errs.KindNotFound))
}

func TestNewestFirstBreaksTimestampTiesByID(t *testing.T) {
	ctx := context.Background()
	st := newStore()
	repo := NewItemRepository(st)

	// rows stamped by two processes can share a created_at
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"0190-b", "0190-c", "0190-a"} {
		_, err := st.Insert(ctx, models.TableItems, store.Record{
			"id": id, "owner_id": "u1", "title": "t", "body": "b",
			store.CreatedAtField: at, LikesCountField: 0, SavesCountField: 0,
		})
		require.NoError(t, err)
	}

	newest, err := repo.ListItems(ctx, "", NewestFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{"0190-c", "0190-b", "0190-a"}, itemIDs(newest))

	liked, err := repo.ListItems(ctx, "", MostLikedFirst)
	require.NoError(t, err)
	assert.Equal(t, []string{"0190-c", "0190-b", "0190-a"}, itemIDs(liked))
}

func TestFactRepository(t *testing.T) {
	ctx := context.Background()
	likes := NewLikeFactRepository(newStore())
	assert.Equal(t, models.TableLikeFacts, likes.Table())

	require.NoError(t, likes.CreateFact(ctx, "u1", "a"))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, likes.CreateFact(ctx, "u1", "b"))
	require.NoError(t, likes.CreateFact(ctx, "u2", "a"))
	assert.ErrorIs(t, likes.CreateFact(ctx, "u1", "a"), store.ErrDuplicate)

	ok, err := likes.HasFact(ctx, "u1", "a")
	require.NoError(t, err)
	assert.True(t, ok)

	set, err := likes.MemberSet(ctx, "u1", []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a": true}, set)

	facts, err := likes.GetFactsByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, facts, 2)
	assert.Equal(t, "b", facts[0].ItemID)

	n, err := likes.CountByItemID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	gone, err := likes.DeleteFact(ctx, "u1", "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, gone)
	gone, err = likes.DeleteFact(ctx, "u1", "a")
	require.NoError(t, err)
	assert.Zero(t, gone)

	gone, err = likes.DeleteByItemID(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, gone)
}

func TestLikeAndSaveFactsAreIndependent(t *testing.T) {
	ctx := context.Background()
	st := newStore()
	require.NoError(t, NewLikeFactRepository(st).CreateFact(ctx, "u1", "a"))

	ok, err := NewSaveFactRepository(st).HasFact(ctx, "u1", "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepository(newStore())

	_, ok, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.UpsertProfile(ctx, models.Profile{UserID: "u1", DisplayName: "Ada"}))
	require.NoError(t, repo.UpsertProfile(ctx, models.Profile{UserID: "u1", DisplayName: "Ada L", Bio: "hi"}))

	p, ok, err := repo.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.Profile{UserID: "u1", DisplayName: "Ada L", Bio: "hi"}, p)

	byID, err := repo.GetProfilesByIDs(ctx, []string{"u1", "u2"})
	require.NoError(t, err)
	assert.Len(t, byID, 1)
	assert.Equal(t, "Ada L", byID["u1"].DisplayName)
}

func itemIDs(items []models.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
