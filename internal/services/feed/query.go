package feed

import (
	"strings"

	"github.com/anonto42/component-feed/backend/internal/errs"
	"github.com/anonto42/component-feed/backend/internal/models"
	"github.com/anonto42/component-feed/backend/internal/repositories"
	"github.com/anonto42/component-feed/backend/internal/store"
)

// FilterKind selects which items a feed draws from
type FilterKind uint8

const (
	// FilterAll is every item
	FilterAll FilterKind = iota
	// FilterOwnedBy is the items published by one user
	FilterOwnedBy
	// FilterSavedBy is the items one user saved, in save order
	FilterSavedBy
)

// Filter is a feed selection
type Filter struct {
	Kind   FilterKind
	UserID string
}

// All selects every item
func All() Filter { return Filter{Kind: FilterAll} }

// OwnedBy selects items published by userID
func OwnedBy(userID string) Filter { return Filter{Kind: FilterOwnedBy, UserID: userID} }

// SavedBy selects items saved by userID
func SavedBy(userID string) Filter { return Filter{Kind: FilterSavedBy, UserID: userID} }

// Sort orders a feed. SavedBy feeds ignore it.
type Sort uint8

const (
	// Newest orders by created_at descending
	Newest Sort = iota
	// MostLiked orders by likes_count descending
	MostLiked
)

func (s Sort) order() []store.Order {
	if s == MostLiked {
		return repositories.MostLikedFirst
	}
	return repositories.NewestFirst
}

// String returns the query name of the sort
func (s Sort) String() string {
	if s == MostLiked {
		return "most_liked"
	}
	return "newest"
}

// ParseFilter maps the filter query parameter. owned and saved fall back to
// the viewer when userID is empty and need one of them.
func ParseFilter(name, userID string, viewer models.Viewer) (Filter, error) {
	if userID == "" {
		userID = viewer.UserID
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "all":
		return All(), nil
	case "owned", "mine":
		if userID == "" {
			return Filter{}, errs.Unauthenticated("sign in to see your components")
		}
		return OwnedBy(userID), nil
	case "saved":
		if userID == "" {
			return Filter{}, errs.Unauthenticated("sign in to see saved components")
		}
		return SavedBy(userID), nil
	default:
		return Filter{}, errs.InvalidInput("filter", "filter must be one of all, owned, saved")
	}
}

// ParseSort maps the sort query parameter; trending is an alias of most_liked
func ParseSort(name string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "newest":
		return Newest, nil
	case "most_liked", "trending":
		return MostLiked, nil
	default:
		return Newest, errs.InvalidInput("sort", "sort must be one of newest, most_liked")
	}
}
