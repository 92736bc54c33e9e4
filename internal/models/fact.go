package models

import "time"

// Fact records that one user likes, or has saved, one item. At most one
// exists per (UserID, ItemID) in each fact table.
type Fact struct {
	UserID    string    `json:"user_id" bson:"user_id"`
	ItemID    string    `json:"item_id" bson:"item_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Engagement is the viewer's relation to one item
type Engagement struct {
	Liked bool `json:"liked"`
	Saved bool `json:"saved"`
}

// ToggleResult is the outcome of a like or save toggle
type ToggleResult struct {
	Active bool
	Count  int
}
