package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/component-feed/backend/internal/middleware"
	"github.com/anonto42/component-feed/backend/internal/models"
)

// Publisher creates, reads and deletes components
type Publisher interface {
	Publish(ctx context.Context, owner models.Viewer, in models.PublishInput) (models.Item, error)
	Get(ctx context.Context, id string) (models.Item, error)
	Delete(ctx context.Context, actor models.Viewer, id string) error
}

// ComponentHandler handles HTTP requests related to components
type ComponentHandler struct {
	publisher Publisher
}

// NewComponentHandler creates a new ComponentHandler
func NewComponentHandler(publisher Publisher) *ComponentHandler {
	return &ComponentHandler{publisher: publisher}
}

// RegisterComponentRoutes registers component routes
func (h *ComponentHandler) RegisterComponentRoutes(g *echo.Group) {
	g.POST("/components", h.CreateComponent)
	g.GET("/components/:id", h.GetComponent)
	g.DELETE("/components/:id", h.DeleteComponent)
}

// CreateComponent publishes a component owned by the viewer
func (h *ComponentHandler) CreateComponent(c echo.Context) error {
	var in models.PublishInput
	if err := bind(c, &in); err != nil {
		return err
	}
	item, err := h.publisher.Publish(c.Request().Context(), middleware.Viewer(c), in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, item)
}

// GetComponent returns one component
func (h *ComponentHandler) GetComponent(c echo.Context) error {
	item, err := h.publisher.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, item)
}

// DeleteComponent removes a component the viewer owns
func (h *ComponentHandler) DeleteComponent(c echo.Context) error {
	if err := h.publisher.Delete(c.Request().Context(), middleware.Viewer(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
