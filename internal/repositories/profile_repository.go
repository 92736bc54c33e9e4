package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/store"
)

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, bool, error)
	GetProfilesByIDs(ctx context.Context, userIDs []string) (map[string]models.Profile, error)
	UpsertProfile(ctx context.Context, p models.Profile) error
}

// StoreProfileRepository implements ProfileRepository over the record store
type StoreProfileRepository struct {
	st store.Store
}

// NewProfileRepository creates a new StoreProfileRepository
func NewProfileRepository(st store.Store) *StoreProfileRepository {
	return &StoreProfileRepository{st: st}
}

// GetProfile retrieves one profile; ok is false when there is none
func (r *StoreProfileRepository) GetProfile(ctx context.Context, userID string) (models.Profile, bool, error) {
	recs, err := r.st.ScanWhere(ctx, models.TableProfiles, store.Where(store.Eq("user_id", userID)))
	if err != nil || len(recs) == 0 {
		return models.Profile{}, false, err
	}
	return profileFromRecord(recs[0]), true, nil
}

// GetProfilesByIDs resolves many profiles in one IN scan, keyed by user id
func (r *StoreProfileRepository) GetProfilesByIDs(ctx context.Context, userIDs []string) (map[string]models.Profile, error) {
	recs, err := r.st.ScanWhere(ctx, models.TableProfiles, store.Where(store.InStrings("user_id", userIDs)))
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.Profile, len(recs))
	for _, rec := range recs {
		p := profileFromRecord(rec)
		out[p.UserID] = p
	}
	return out, nil
}

// UpsertProfile updates the profile or creates it when missing
func (r *StoreProfileRepository) UpsertProfile(ctx context.Context, p models.Profile) error {
	where := store.Where(store.Eq("user_id", p.UserID))
	patch := store.Record{"display_name": p.DisplayName, "avatar_ref": p.AvatarRef, "bio": p.Bio}

	n, err := r.st.UpdateWhere(ctx, models.TableProfiles, where, patch)
	if err != nil || n > 0 {
		return err
	}
	rec := patch.Clone()
	rec["user_id"] = p.UserID
	_, err = r.st.Insert(ctx, models.TableProfiles, rec)
	if errors.Is(err, store.ErrDuplicate) {
		// created concurrently; apply ours on top
		_, err = r.st.UpdateWhere(ctx, models.TableProfiles, where, patch)
	}
	return err
}

func profileFromRecord(rec store.Record) models.Profile {
	return models.Profile{
		UserID:      rec.String("user_id"),
		DisplayName: rec.String("display_name"),
		AvatarRef:   rec.String("avatar_ref"),
		Bio:         rec.String("bio"),
	}
}
