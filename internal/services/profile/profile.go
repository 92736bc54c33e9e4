// Package profile serves display profiles
package profile

import (
	"context"
	"strings"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/repositories"
	"github.com/anonto42/component-feed/backend/internal/validation"
)

// Service reads and edits profiles
type Service struct {
	profiles repositories.ProfileRepository
	validate *validation.Validator
}

// New creates a profile service
func New(profiles repositories.ProfileRepository, v *validation.Validator) *Service {
	return &Service{profiles: profiles, validate: v}
}

// Get returns the user's profile, or the anonymous stand-in if there is none
func (s *Service) Get(ctx context.Context, userID string) (models.Profile, error) {
	p, ok, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return models.Profile{}, errs.WithOp(err, "profile.get")
	}
	if !ok {
		return models.AnonymousProfile(userID), nil
	}
	return p, nil
}

// Update replaces the viewer's own profile
func (s *Service) Update(ctx context.Context, viewer models.Viewer, in models.UpdateProfileInput) (models.Profile, error) {
	const op = "profile.update"
	if !viewer.Present() {
		return models.Profile{}, errs.WithOp(errs.Unauthenticated("sign in to edit your profile"), op)
	}
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.AvatarRef = strings.TrimSpace(in.AvatarRef)
	in.Bio = strings.TrimSpace(in.Bio)
	if err := s.validate.Validate(in); err != nil {
		return models.Profile{}, errs.WithOp(err, op)
	}
	p := models.Profile{UserID: viewer.UserID, DisplayName: in.DisplayName, AvatarRef: in.AvatarRef, Bio: in.Bio}
	if err := s.profiles.UpsertProfile(ctx, p); err != nil {
		return models.Profile{}, errs.WithOp(err, op)
	}
	return p, nil
}
