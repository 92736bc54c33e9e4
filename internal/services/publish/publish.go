// Package publish creates and removes components
package publish

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/repositories"
	"github.com/anonto42/component-feed/backend/internal/validation"
)

// Service is the publication service
type Service struct {
	items    repositories.ItemRepository
	likes    repositories.FactRepository
	saves    repositories.FactRepository
	validate *validation.Validator
	log      zerolog.Logger
}

// New creates a publication service
func New(items repositories.ItemRepository, likes, saves repositories.FactRepository, v *validation.Validator, log zerolog.Logger) *Service {
	return &Service{items: items, likes: likes, saves: saves, validate: v, log: log}
}

// Publish stores a new component owned by owner with zero counters
func (s *Service) Publish(ctx context.Context, owner models.Viewer, in models.PublishInput) (models.Item, error) {
	const op = "publish.publish"
	if !owner.Present() {
		return models.Item{}, errs.WithOp(errs.Unauthenticated("sign in to publish components"), op)
	}
	in = normalize(in)
	if err := s.validate.Validate(in); err != nil {
		return models.Item{}, errs.WithOp(err, op)
	}

	item := &models.Item{
		OwnerID:     owner.UserID,
		Title:       in.Title,
		Description: in.Description,
		Body:        in.Body,
		Tags:        in.Tags,
		PreviewRef:  in.PreviewRef,
	}
	if err := s.items.CreateItem(ctx, item); err != nil {
		return models.Item{}, errs.WithOp(err, op)
	}
	s.log.Info().Str("item_id", item.ID).Str("owner_id", item.OwnerID).Msg("component published")
	return *item, nil
}

// Get returns one component
func (s *Service) Get(ctx context.Context, id string) (models.Item, error) {
	item, err := s.items.GetItemByID(ctx, id)
	if err != nil {
		return models.Item{}, errs.WithOp(err, "publish.get")
	}
	return *item, nil
}

// Delete removes a component. Only its owner may. Engagement facts are
// removed afterwards on a best-effort basis.
func (s *Service) Delete(ctx context.Context, actor models.Viewer, id string) error {
	const op = "publish.delete"
	if !actor.Present() {
		return errs.WithOp(errs.Unauthenticated("sign in to delete components"), op)
	}
	item, err := s.items.GetItemByID(ctx, id)
	if err != nil {
		return errs.WithOp(err, op)
	}
	if item.OwnerID != actor.UserID {
		return errs.WithOp(errs.Forbiddenf("only the owner can delete this component"), op)
	}
	n, err := s.items.DeleteItem(ctx, id)
	if err != nil {
		return errs.WithOp(err, op)
	}
	if n == 0 {
		return errs.WithOp(errs.NotFoundf("item %s not found", id), op)
	}

	for _, facts := range []repositories.FactRepository{s.likes, s.saves} {
		if _, err := facts.DeleteByItemID(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("item_id", id).Msg("could not remove engagement facts of deleted item")
		}
	}
	s.log.Info().Str("item_id", id).Str("owner_id", actor.UserID).Msg("component deleted")
	return nil
}

// normalize trims text fields and drops blank tags. Duplicate tags are kept.
func normalize(in models.PublishInput) models.PublishInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.Description = strings.TrimSpace(in.Description)
	in.PreviewRef = strings.TrimSpace(in.PreviewRef)
	tags := make([]string, 0, len(in.Tags))
	for _, t := range in.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	in.Tags = tags
	return in
}
