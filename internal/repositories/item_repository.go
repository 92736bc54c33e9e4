package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/store"
)

// Counter fields on items
const (
	LikesCountField = "likes_count"
	SavesCountField = "saves_count"
)

// Feed orderings. Ties fall back to created_at then id so pages are stable.
var (
	NewestFirst    = []store.Order{store.Desc(store.CreatedAtField), store.Desc("id")}
	MostLikedFirst = []store.Order{store.Desc(LikesCountField), store.Desc(store.CreatedAtField), store.Desc("id")}
)

// ItemRepository defines the interface for item data operations
type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id string) (*models.Item, error)
	GetItemsByIDs(ctx context.Context, ids []string) ([]models.Item, error)
	ListItems(ctx context.Context, ownerID string, order []store.Order) ([]models.Item, error)
	DeleteItem(ctx context.Context, id string) (int64, error)
	SetCount(ctx context.Context, id, field string, n int) error
}

// StoreItemRepository implements ItemRepository over the record store
type StoreItemRepository struct {
	st store.Store
}

// NewItemRepository creates a new StoreItemRepository
func NewItemRepository(st store.Store) *StoreItemRepository {
	return &StoreItemRepository{st: st}
}

// CreateItem inserts item and fills in the stored id and created_at
func (r *StoreItemRepository) CreateItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		item.ID = id.String()
	}
	if _, err := r.st.Insert(ctx, models.TableItems, itemToRecord(item)); err != nil {
		return err
	}
	stored, err := r.GetItemByID(ctx, item.ID)
	if err != nil {
		return err
	}
	*item = *stored
	return nil
}

// GetItemByID retrieves an item by id
func (r *StoreItemRepository) GetItemByID(ctx context.Context, id string) (*models.Item, error) {
	recs, err := r.st.ScanWhere(ctx, models.TableItems, store.Where(store.Eq("id", id)))
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, errs.NotFoundf("item %s not found", id)
	}
	item := itemFromRecord(recs[0])
	return &item, nil
}

// GetItemsByIDs fetches items in one IN scan. Missing ids are skipped and
// the result order is unspecified.
func (r *StoreItemRepository) GetItemsByIDs(ctx context.Context, ids []string) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}
	recs, err := r.st.ScanWhere(ctx, models.TableItems, store.Where(store.InStrings("id", ids)))
	if err != nil {
		return nil, err
	}
	return itemsFromRecords(recs), nil
}

// ListItems returns all items, or those of ownerID when set, in order
func (r *StoreItemRepository) ListItems(ctx context.Context, ownerID string, order []store.Order) ([]models.Item, error) {
	var where store.Predicate
	if ownerID != "" {
		where = store.Where(store.Eq("owner_id", ownerID))
	}
	recs, err := r.st.ScanWhere(ctx, models.TableItems, where, order...)
	if err != nil {
		return nil, err
	}
	return itemsFromRecords(recs), nil
}

// DeleteItem removes an item by id
func (r *StoreItemRepository) DeleteItem(ctx context.Context, id string) (int64, error) {
	return r.st.DeleteWhere(ctx, models.TableItems, store.Where(store.Eq("id", id)))
}

// SetCount overwrites one counter of an item
func (r *StoreItemRepository) SetCount(ctx context.Context, id, field string, n int) error {
	matched, err := r.st.UpdateWhere(ctx, models.TableItems, store.Where(store.Eq("id", id)), store.Record{field: n})
	if err != nil {
		return err
	}
	if matched == 0 {
		return errs.NotFoundf("item %s not found", id)
	}
	return nil
}

func itemToRecord(item *models.Item) store.Record {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	rec := store.Record{
		"id":            item.ID,
		"owner_id":      item.OwnerID,
		"title":         item.Title,
		"description":   item.Description,
		"body":          item.Body,
		"tags":          tags,
		"preview_ref":   item.PreviewRef,
		LikesCountField: item.LikesCount,
		SavesCountField: item.SavesCount,
	}
	if !item.CreatedAt.IsZero() {
		rec[store.CreatedAtField] = item.CreatedAt
	}
	return rec
}

func itemFromRecord(rec store.Record) models.Item {
	tags := rec.Strings("tags")
	if tags == nil {
		tags = []string{}
	}
	return models.Item{
		ID:          rec.String("id"),
		OwnerID:     rec.String("owner_id"),
		Title:       rec.String("title"),
		Description: rec.String("description"),
		Body:        rec.String("body"),
		Tags:        tags,
		PreviewRef:  rec.String("preview_ref"),
		CreatedAt:   rec.Time(store.CreatedAtField),
		LikesCount:  rec.Int(LikesCountField),
		SavesCount:  rec.Int(SavesCountField),
	}
}

func itemsFromRecords(recs []store.Record) []models.Item {
	items := make([]models.Item, len(recs))
	for i, rec := range recs {
		items[i] = itemFromRecord(rec)
	}
	return items
}
