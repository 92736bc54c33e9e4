package models

import "time"

// Table names shared by repositories and store backends
const (
	TableItems     = "items"
	TableLikeFacts = "like_facts"
	TableSaveFacts = "save_facts"
	TableProfiles  = "profiles"
)

// Item is a published component. Counters are denormalized and only moved by
// the engagement ledger.
type Item struct {
	ID          string    `json:"id" bson:"id"`
	OwnerID     string    `json:"owner_id" bson:"owner_id"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Body        string    `json:"body" bson:"body"`
	Tags        []string  `json:"tags" bson:"tags"`
	PreviewRef  string    `json:"preview_ref,omitempty" bson:"preview_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	LikesCount  int       `json:"likes_count" bson:"likes_count"`
	SavesCount  int       `json:"saves_count" bson:"saves_count"`
}

// AnnotatedItem is an item joined with its author and the viewer's engagement
type AnnotatedItem struct {
	Item
	Author Profile `json:"author"`
	Liked  bool    `json:"liked"`
	Saved  bool    `json:"saved"`
}

// PublishInput defines the request body for publishing a component
type PublishInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Body        string   `json:"body" validate:"required"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	Tags        []string `json:"tags,omitempty" validate:"max=32,dive,max=64"`
	PreviewRef  string   `json:"preview_ref,omitempty" validate:"omitempty,max=2048"`
}
