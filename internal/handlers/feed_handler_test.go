package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/services/feed"
)

type staticComposer struct {
	items []models.AnnotatedItem
}

func (s staticComposer) ComposeFeed(context.Context, feed.Filter, feed.Sort, models.Viewer) ([]models.AnnotatedItem, error) {
	return s.items, nil
}

type feedPage struct {
	Data struct {
		Components []models.AnnotatedItem `json:"components"`
	} `json:"data"`
	Meta struct {
		CurrentPage int  `json:"currentPage"`
		TotalPages  int  `json:"totalPages"`
		TotalItems  int  `json:"totalItems"`
		PerPage     int  `json:"itemsPerPage"`
		HasNext     bool `json:"hasNextPage"`
		HasPrevious bool `json:"hasPreviousPage"`
	} `json:"meta"`
}

func getFeed(t *testing.T, n int, query string) feedPage {
	t.Helper()
	items := make([]models.AnnotatedItem, n)
	for i := range items {
		items[i].ID = fmt.Sprintf("item-%d", i)
	}
	e := echo.New()
	g := e.Group("")
	NewFeedHandler(staticComposer{items: items}).RegisterFeedRoutes(g)

	req := httptest.NewRequest(http.MethodGet, "/feed"+query, nil)
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { e.ServeHTTP(rec, req) })
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page feedPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	return page
}

func TestGetFeedPagination(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		query   string
		ids     []string
		current int
		pages   int
		next    bool
		prev    bool
	}{
		{"defaults", 3, "", []string{"item-0", "item-1", "item-2"}, 1, 1, false, false},
		{"middle page", 5, "?page=2&limit=2", []string{"item-2", "item-3"}, 2, 3, true, true},
		{"last partial page", 5, "?page=3&limit=2", []string{"item-4"}, 3, 3, false, true},
		{"past the last page", 5, "?page=9&limit=2", []string{}, 9, 3, false, true},
		{"huge page", 1, "?page=922337203685477581&limit=20", []string{}, 922337203685477581, 1, false, true},
		{"page beyond int range", 1, "?page=99999999999999999999999", []string{}, 0, 1, false, true},
		{"bad values fall back", 2, "?page=-4&limit=1000", []string{"item-0", "item-1"}, 1, 1, false, false},
		{"empty feed", 0, "?page=3", []string{}, 3, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := getFeed(t, tt.n, tt.query)
			ids := make([]string, 0, len(page.Data.Components))
			for _, it := range page.Data.Components {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.ids, ids)
			if tt.current != 0 {
				assert.Equal(t, tt.current, page.Meta.CurrentPage)
			}
			assert.Equal(t, tt.pages, page.Meta.TotalPages)
			assert.Equal(t, tt.n, page.Meta.TotalItems)
			assert.Equal(t, tt.next, page.Meta.HasNext)
			assert.Equal(t, tt.prev, page.Meta.HasPrevious)
		})
	}
}
