package handlers

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/component-feed/backend/internal/middleware"
	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/services/feed"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Composer builds feeds
type Composer interface {
	ComposeFeed(ctx context.Context, filter feed.Filter, sort feed.Sort, viewer models.Viewer) ([]models.AnnotatedItem, error)
}

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	composer Composer
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(composer Composer) *FeedHandler {
	return &FeedHandler{composer: composer}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns the annotated feed for the current viewer.
// Query: filter (all|owned|saved), user_id, sort (newest|most_liked|trending),
// q (search term), page, limit.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewer := middleware.Viewer(c)
	filter, err := feed.ParseFilter(c.QueryParam("filter"), c.QueryParam("user_id"), viewer)
	if err != nil {
		return err
	}
	sort, err := feed.ParseSort(c.QueryParam("sort"))
	if err != nil {
		return err
	}

	items, err := h.composer.ComposeFeed(c.Request().Context(), filter, sort, viewer)
	if err != nil {
		return err
	}
	items = feed.Search(items, c.QueryParam("q"))

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}

	totalItems := len(items)
	totalPages := int(math.Ceil(float64(totalItems) / float64(limit)))
	// page is bounded before multiplying so huge values cannot overflow
	start := totalItems
	if page <= totalPages {
		start = (page - 1) * limit
	}
	end := min(start+limit, totalItems)

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"components": items[start:end],
		},
		"meta": echo.Map{
			"currentPage":     page,
			"totalPages":      totalPages,
			"totalItems":      totalItems,
			"itemsPerPage":    limit,
			"hasNextPage":     page < totalPages,
			"hasPreviousPage": page > 1,
			"sort":            sort.String(),
		},
	})
}
