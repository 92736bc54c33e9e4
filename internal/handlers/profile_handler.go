package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/component-feed/backend/internal/middleware"
	"github.com/anonto42/component-feed/backend/internal/models"
)

// Profiles reads and edits display profiles
type Profiles interface {
	Get(ctx context.Context, userID string) (models.Profile, error)
	Update(ctx context.Context, viewer models.Viewer, in models.UpdateProfileInput) (models.Profile, error)
}

// ProfileHandler handles profile requests
type ProfileHandler struct {
	profiles Profiles
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(profiles Profiles) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterProfileRoutes registers profile routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetMyProfile, middleware.RequireViewer)
	g.PUT("/profile", h.UpdateMyProfile)
	g.GET("/profiles/:user_id", h.GetProfile)
}

// GetProfile returns a user's display profile
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	p, err := h.profiles.Get(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, p)
}

// GetMyProfile returns the viewer's own profile
func (h *ProfileHandler) GetMyProfile(c echo.Context) error {
	p, err := h.profiles.Get(c.Request().Context(), middleware.Viewer(c).UserID)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, p)
}

// UpdateMyProfile edits the viewer's own profile
func (h *ProfileHandler) UpdateMyProfile(c echo.Context) error {
	var in models.UpdateProfileInput
	if err := bind(c, &in); err != nil {
		return err
	}
	p, err := h.profiles.Update(c.Request().Context(), middleware.Viewer(c), in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, p)
}
