package repositories

import (
	"context"

	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/store"
)

// FactRepository defines the interface for like or save fact operations
type FactRepository interface {
	HasFact(ctx context.Context, userID, itemID string) (bool, error)
	CreateFact(ctx context.Context, userID, itemID string) error
	DeleteFact(ctx context.Context, userID, itemID string) (int64, error)
	MemberSet(ctx context.Context, userID string, itemIDs []string) (map[string]bool, error)
	GetFactsByUserID(ctx context.Context, userID string) ([]models.Fact, error)
	CountByItemID(ctx context.Context, itemID string) (int, error)
	DeleteByItemID(ctx context.Context, itemID string) (int64, error)
}

// StoreFactRepository implements FactRepository over one fact table
type StoreFactRepository struct {
	st    store.Store
	table string
}

// NewLikeFactRepository creates a FactRepository over like_facts
func NewLikeFactRepository(st store.Store) *StoreFactRepository {
	return &StoreFactRepository{st: st, table: models.TableLikeFacts}
}

// NewSaveFactRepository creates a FactRepository over save_facts
func NewSaveFactRepository(st store.Store) *StoreFactRepository {
	return &StoreFactRepository{st: st, table: models.TableSaveFacts}
}

// Table returns the fact table name
func (r *StoreFactRepository) Table() string { return r.table }

func pair(userID, itemID string) store.Predicate {
	return store.Where(store.Eq("user_id", userID), store.Eq("item_id", itemID))
}

// HasFact checks if userID has a fact for itemID
func (r *StoreFactRepository) HasFact(ctx context.Context, userID, itemID string) (bool, error) {
	recs, err := r.st.ScanWhere(ctx, r.table, pair(userID, itemID))
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

// CreateFact records a fact. Returns store.ErrDuplicate if it already exists.
func (r *StoreFactRepository) CreateFact(ctx context.Context, userID, itemID string) error {
	_, err := r.st.Insert(ctx, r.table, store.Record{"user_id": userID, "item_id": itemID})
	return err
}

// DeleteFact removes a fact and reports how many rows went
func (r *StoreFactRepository) DeleteFact(ctx context.Context, userID, itemID string) (int64, error) {
	return r.st.DeleteWhere(ctx, r.table, pair(userID, itemID))
}

// MemberSet returns which of itemIDs userID has a fact for, in one IN scan
func (r *StoreFactRepository) MemberSet(ctx context.Context, userID string, itemIDs []string) (map[string]bool, error) {
	recs, err := r.st.ScanWhere(ctx, r.table,
		store.Where(store.Eq("user_id", userID), store.InStrings("item_id", itemIDs)))
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(recs))
	for _, rec := range recs {
		set[rec.String("item_id")] = true
	}
	return set, nil
}

// GetFactsByUserID returns the user's facts, most recent first
func (r *StoreFactRepository) GetFactsByUserID(ctx context.Context, userID string) ([]models.Fact, error) {
	recs, err := r.st.ScanWhere(ctx, r.table, store.Where(store.Eq("user_id", userID)),
		store.Desc(store.CreatedAtField), store.Desc("item_id"))
	if err != nil {
		return nil, err
	}
	facts := make([]models.Fact, len(recs))
	for i, rec := range recs {
		facts[i] = models.Fact{
			UserID:    rec.String("user_id"),
			ItemID:    rec.String("item_id"),
			CreatedAt: rec.Time(store.CreatedAtField),
		}
	}
	return facts, nil
}

// CountByItemID counts the facts referencing itemID
func (r *StoreFactRepository) CountByItemID(ctx context.Context, itemID string) (int, error) {
	recs, err := r.st.ScanWhere(ctx, r.table, store.Where(store.Eq("item_id", itemID)))
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// DeleteByItemID removes every fact referencing itemID
func (r *StoreFactRepository) DeleteByItemID(ctx context.Context, itemID string) (int64, error) {
	return r.st.DeleteWhere(ctx, r.table, store.Where(store.Eq("item_id", itemID)))
}
