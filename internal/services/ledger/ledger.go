// Package ledger keeps the per-user like and save facts and the item
// counters derived from them.
//
// A toggle is two separate store writes: the fact first, then the counter.
// There is no transaction across them. If the counter write fails the fact
// stays and the counter lags behind it (undercount, never overcount), and
// the caller gets a PartialApply error. The counter write is a plain
// read-modify-write, so concurrent toggles on one item can lose an update;
// Reconcile recounts from the facts.
package ledger

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/repositories"
	"github.com/anonto42/component-feed/backend/internal/store"
)

// Service is the engagement ledger
type Service struct {
	items repositories.ItemRepository
	likes repositories.FactRepository
	saves repositories.FactRepository
	log   zerolog.Logger
}

// New creates a ledger over the given repositories
func New(items repositories.ItemRepository, likes, saves repositories.FactRepository, log zerolog.Logger) *Service {
	return &Service{items: items, likes: likes, saves: saves, log: log}
}

type track struct {
	name  string
	facts repositories.FactRepository
	field string
}

func (s *Service) likeTrack() track {
	return track{name: "like", facts: s.likes, field: repositories.LikesCountField}
}

func (s *Service) saveTrack() track {
	return track{name: "save", facts: s.saves, field: repositories.SavesCountField}
}

// ToggleLike likes the item if the viewer has not, otherwise unlikes it
func (s *Service) ToggleLike(ctx context.Context, viewer models.Viewer, itemID string) (models.ToggleResult, error) {
	return s.toggle(ctx, viewer, itemID, s.likeTrack())
}

// ToggleSave saves the item if the viewer has not, otherwise unsaves it
func (s *Service) ToggleSave(ctx context.Context, viewer models.Viewer, itemID string) (models.ToggleResult, error) {
	return s.toggle(ctx, viewer, itemID, s.saveTrack())
}

func (s *Service) toggle(ctx context.Context, viewer models.Viewer, itemID string, t track) (models.ToggleResult, error) {
	op := "ledger.toggle_" + t.name
	if !viewer.Present() {
		return models.ToggleResult{}, errs.WithOp(errs.Unauthenticated("sign in to "+t.name+" components"), op)
	}
	if _, err := s.items.GetItemByID(ctx, itemID); err != nil {
		return models.ToggleResult{}, errs.WithOp(err, op)
	}
	has, err := t.facts.HasFact(ctx, viewer.UserID, itemID)
	if err != nil {
		return models.ToggleResult{}, errs.WithOp(err, op)
	}

	var res models.ToggleResult
	if has {
		res, err = s.remove(ctx, viewer, itemID, t)
	} else {
		res, err = s.add(ctx, viewer, itemID, t)
	}
	if err != nil {
		return models.ToggleResult{}, errs.WithOp(err, op)
	}
	return res, nil
}

func (s *Service) add(ctx context.Context, viewer models.Viewer, itemID string, t track) (models.ToggleResult, error) {
	err := t.facts.CreateFact(ctx, viewer.UserID, itemID)
	if errors.Is(err, store.ErrDuplicate) {
		// lost a race with the same viewer; the fact is there and was counted by the winner
		cur, err := s.current(ctx, itemID, t.field)
		return models.ToggleResult{Active: true, Count: cur}, err
	}
	if err != nil {
		return models.ToggleResult{}, err
	}

	cur, err := s.current(ctx, itemID, t.field)
	if err != nil {
		return models.ToggleResult{}, s.partial(err, viewer, itemID, t, "increment")
	}
	next := cur + 1
	if err := s.items.SetCount(ctx, itemID, t.field, next); err != nil {
		return models.ToggleResult{}, s.partial(err, viewer, itemID, t, "increment")
	}
	return models.ToggleResult{Active: true, Count: next}, nil
}

func (s *Service) remove(ctx context.Context, viewer models.Viewer, itemID string, t track) (models.ToggleResult, error) {
	n, err := t.facts.DeleteFact(ctx, viewer.UserID, itemID)
	if err != nil {
		return models.ToggleResult{}, err
	}
	if n == 0 {
		// already gone; only a deletion we made may decrement
		cur, err := s.current(ctx, itemID, t.field)
		return models.ToggleResult{Active: false, Count: cur}, err
	}

	cur, err := s.current(ctx, itemID, t.field)
	if err != nil {
		return models.ToggleResult{}, s.partial(err, viewer, itemID, t, "decrement")
	}
	next := max(cur-1, 0)
	if err := s.items.SetCount(ctx, itemID, t.field, next); err != nil {
		return models.ToggleResult{}, s.partial(err, viewer, itemID, t, "decrement")
	}
	return models.ToggleResult{Active: false, Count: next}, nil
}

func (s *Service) current(ctx context.Context, itemID, field string) (int, error) {
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return 0, err
	}
	if field == repositories.SavesCountField {
		return item.SavesCount, nil
	}
	return item.LikesCount, nil
}

func (s *Service) partial(cause error, viewer models.Viewer, itemID string, t track, step string) error {
	s.log.Error().Err(cause).
		Str("user_id", viewer.UserID).
		Str("item_id", itemID).
		Str("counter", t.field).
		Str("step", step).
		Msg("fact written but counter update failed")
	return errs.PartialApply(cause, t.name+" recorded but "+t.field+" not updated")
}

// AnnotateForViewer reports, for each id, whether the viewer likes and has
// saved it. Uses one IN scan per fact table regardless of len(ids). An
// anonymous viewer gets all false without touching the store.
func (s *Service) AnnotateForViewer(ctx context.Context, viewer models.Viewer, ids []string) (map[string]models.Engagement, error) {
	out := make(map[string]models.Engagement, len(ids))
	for _, id := range ids {
		out[id] = models.Engagement{}
	}
	if !viewer.Present() || len(out) == 0 {
		return out, nil
	}

	unique := make([]string, 0, len(out))
	for id := range out {
		unique = append(unique, id)
	}

	var liked, saved map[string]bool
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		liked, err = s.likes.MemberSet(gctx, viewer.UserID, unique)
		return err
	})
	g.Go(func() error {
		var err error
		saved, err = s.saves.MemberSet(gctx, viewer.UserID, unique)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errs.WithOp(err, "ledger.annotate")
	}

	for id := range out {
		out[id] = models.Engagement{Liked: liked[id], Saved: saved[id]}
	}
	return out, nil
}

// Reconcile recounts the item's facts and overwrites both counters
func (s *Service) Reconcile(ctx context.Context, itemID string) (likes, saves int, err error) {
	const op = "ledger.reconcile"
	item, err := s.items.GetItemByID(ctx, itemID)
	if err != nil {
		return 0, 0, errs.WithOp(err, op)
	}
	if likes, err = s.likes.CountByItemID(ctx, itemID); err != nil {
		return 0, 0, errs.WithOp(err, op)
	}
	if saves, err = s.saves.CountByItemID(ctx, itemID); err != nil {
		return 0, 0, errs.WithOp(err, op)
	}
	if err := s.items.SetCount(ctx, itemID, repositories.LikesCountField, likes); err != nil {
		return 0, 0, errs.WithOp(err, op)
	}
	if err := s.items.SetCount(ctx, itemID, repositories.SavesCountField, saves); err != nil {
		return 0, 0, errs.WithOp(err, op)
	}
	if likes != item.LikesCount || saves != item.SavesCount {
		s.log.Info().
			Str("item_id", itemID).
			Int("likes_before", item.LikesCount).Int("likes", likes).
			Int("saves_before", item.SavesCount).Int("saves", saves).
			Msg("counters reconciled")
	}
	return likes, saves, nil
}
