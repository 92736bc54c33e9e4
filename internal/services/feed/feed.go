// Package feed composes the viewer-specific component feed
package feed

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/repositories"
)

// Annotator resolves the viewer's engagement for a batch of items
type Annotator interface {
	AnnotateForViewer(ctx context.Context, viewer models.Viewer, ids []string) (map[string]models.Engagement, error)
}

// Service is the feed composer
type Service struct {
	items    repositories.ItemRepository
	saves    repositories.FactRepository
	profiles repositories.ProfileRepository
	ledger   Annotator
	log      zerolog.Logger
}

// New creates a feed composer
func New(items repositories.ItemRepository, saves repositories.FactRepository, profiles repositories.ProfileRepository, ledger Annotator, log zerolog.Logger) *Service {
	return &Service{items: items, saves: saves, profiles: profiles, ledger: ledger, log: log}
}

// ComposeFeed returns the items selected by filter in sort order, annotated
// for viewer and joined with their authors' profiles
func (s *Service) ComposeFeed(ctx context.Context, filter Filter, sort Sort, viewer models.Viewer) ([]models.AnnotatedItem, error) {
	const op = "feed.compose"
	items, err := s.selectItems(ctx, filter, sort)
	if err != nil {
		return nil, errs.WithOp(err, op)
	}
	if len(items) == 0 {
		return []models.AnnotatedItem{}, nil
	}

	ids := make([]string, len(items))
	owners := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		ids[i] = it.ID
		if !seen[it.OwnerID] {
			seen[it.OwnerID] = true
			owners = append(owners, it.OwnerID)
		}
	}

	engagement, err := s.ledger.AnnotateForViewer(ctx, viewer, ids)
	if err != nil {
		return nil, errs.WithOp(err, op)
	}
	authors, err := s.profiles.GetProfilesByIDs(ctx, owners)
	if err != nil {
		return nil, errs.WithOp(err, op)
	}

	out := make([]models.AnnotatedItem, len(items))
	for i, it := range items {
		author, ok := authors[it.OwnerID]
		if !ok {
			author = models.AnonymousProfile(it.OwnerID)
		}
		e := engagement[it.ID]
		out[i] = models.AnnotatedItem{Item: it, Author: author, Liked: e.Liked, Saved: e.Saved}
	}
	return out, nil
}

func (s *Service) selectItems(ctx context.Context, filter Filter, sort Sort) ([]models.Item, error) {
	switch filter.Kind {
	case FilterOwnedBy:
		return s.items.ListItems(ctx, filter.UserID, sort.order())
	case FilterSavedBy:
		return s.savedItems(ctx, filter.UserID)
	default:
		return s.items.ListItems(ctx, "", sort.order())
	}
}

// savedItems returns the user's saved items in save order, most recent
// first. Items deleted since they were saved are skipped.
func (s *Service) savedItems(ctx context.Context, userID string) ([]models.Item, error) {
	facts, err := s.saves.GetFactsByUserID(ctx, userID)
	if err != nil || len(facts) == 0 {
		return nil, err
	}
	ids := make([]string, len(facts))
	for i, f := range facts {
		ids[i] = f.ItemID
	}
	fetched, err := s.items.GetItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Item, len(fetched))
	for _, it := range fetched {
		byID[it.ID] = it
	}

	out := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		it, ok := byID[id]
		if !ok {
			s.log.Debug().Str("user_id", userID).Str("item_id", id).Msg("saved item no longer exists")
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

// Search keeps the items whose title, description or any tag contains term,
// ignoring case. Order is preserved and a blank term keeps everything. The
// term is matched as given, surrounding spaces included.
func Search(items []models.AnnotatedItem, term string) []models.AnnotatedItem {
	if strings.TrimSpace(term) == "" {
		return items
	}
	caser := cases.Fold()
	needle := caser.String(term)
	out := make([]models.AnnotatedItem, 0, len(items))
	for _, it := range items {
		if matches(caser, it.Item, needle) {
			out = append(out, it)
		}
	}
	return out
}

func matches(caser cases.Caser, it models.Item, needle string) bool {
	if strings.Contains(caser.String(it.Title), needle) || strings.Contains(caser.String(it.Description), needle) {
		return true
	}
	for _, tag := range it.Tags {
		if strings.Contains(caser.String(tag), needle) {
			return true
		}
	}
	return false
}
