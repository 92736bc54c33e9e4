package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/middleware"
	"github.com/anonto42/component-feed/backend/internal/models"
)

// maxAnnotateIDs bounds one engagement lookup
const maxAnnotateIDs = 200

// Ledger toggles and reports engagement
type Ledger interface {
	ToggleLike(ctx context.Context, viewer models.Viewer, itemID string) (models.ToggleResult, error)
	ToggleSave(ctx context.Context, viewer models.Viewer, itemID string) (models.ToggleResult, error)
	AnnotateForViewer(ctx context.Context, viewer models.Viewer, ids []string) (map[string]models.Engagement, error)
}

// EngagementHandler handles like, save and engagement lookups
type EngagementHandler struct {
	ledger Ledger
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(ledger Ledger) *EngagementHandler {
	return &EngagementHandler{ledger: ledger}
}

// RegisterEngagementRoutes registers engagement routes
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group) {
	g.POST("/components/:id/like", h.ToggleLike)
	g.POST("/components/:id/save", h.ToggleSave)
	g.GET("/engagement", h.GetEngagement)
}

// ToggleLike likes or unlikes a component
func (h *EngagementHandler) ToggleLike(c echo.Context) error {
	res, err := h.ledger.ToggleLike(c.Request().Context(), middleware.Viewer(c), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"liked": res.Active, "new_count": res.Count})
}

// ToggleSave saves or unsaves a component
func (h *EngagementHandler) ToggleSave(c echo.Context) error {
	res, err := h.ledger.ToggleSave(c.Request().Context(), middleware.Viewer(c), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"saved": res.Active, "new_count": res.Count})
}

// GetEngagement reports the viewer's likes and saves for ?ids=a,b,c
func (h *EngagementHandler) GetEngagement(c echo.Context) error {
	var ids []string
	for _, id := range strings.Split(c.QueryParam("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) > maxAnnotateIDs {
		return errs.InvalidInput("ids", "too many ids")
	}
	got, err := h.ledger.AnnotateForViewer(c.Request().Context(), middleware.Viewer(c), ids)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, got)
}
