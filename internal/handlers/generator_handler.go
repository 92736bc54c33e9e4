package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/component-feed/backend/internal/middleware"
	"github.com/anonto42/component-feed/backend/internal/models"
)

// Generator turns prompts into code
type Generator interface {
	Generate(ctx context.Context, viewer models.Viewer, in models.GenerateInput) (string, error)
}

// GeneratorHandler handles code generation requests
type GeneratorHandler struct {
	generator Generator
}

// NewGeneratorHandler creates a new GeneratorHandler
func NewGeneratorHandler(generator Generator) *GeneratorHandler {
	return &GeneratorHandler{generator: generator}
}

// RegisterGeneratorRoutes registers generator routes
func (h *GeneratorHandler) RegisterGeneratorRoutes(g *echo.Group) {
	g.POST("/generate", h.Generate)
}

// Generate returns code for a prompt
func (h *GeneratorHandler) Generate(c echo.Context) error {
	var in models.GenerateInput
	if err := bind(c, &in); err != nil {
		return err
	}
	code, err := h.generator.Generate(c.Request().Context(), middleware.Viewer(c), in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, echo.Map{"code": code})
}
