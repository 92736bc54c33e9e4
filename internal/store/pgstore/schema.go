package pgstore

import "time"

// Row models exist for AutoMigrate and deletes. Reads and writes go through
// maps so the store stays generic. Tags are stored as a JSON array in a
// jsonb column.

// ItemRow is the items table
type ItemRow struct {
	ID          string `gorm:"primaryKey;type:varchar(64)"`
	OwnerID     string `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description string
	Body        string `gorm:"not null"`
	Tags        string `gorm:"type:jsonb"`
	PreviewRef  string
	LikesCount  int       `gorm:"not null;default:0;index"`
	SavesCount  int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index"`
}

// TableName implements gorm's tabler
func (ItemRow) TableName() string { return "items" }

// LikeFactRow is one like; (user_id, item_id) is unique
type LikeFactRow struct {
	UserID    string    `gorm:"primaryKey;type:varchar(128);uniqueIndex:idx_like_user_item"`
	ItemID    string    `gorm:"primaryKey;type:varchar(64);uniqueIndex:idx_like_user_item;index"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName implements gorm's tabler
func (LikeFactRow) TableName() string { return "like_facts" }

// SaveFactRow is one save; (user_id, item_id) is unique
type SaveFactRow struct {
	UserID    string    `gorm:"primaryKey;type:varchar(128);uniqueIndex:idx_save_user_item"`
	ItemID    string    `gorm:"primaryKey;type:varchar(64);uniqueIndex:idx_save_user_item;index"`
	CreatedAt time.Time `gorm:"index"`
}

// TableName implements gorm's tabler
func (SaveFactRow) TableName() string { return "save_facts" }

// ProfileRow is a user's display profile
type ProfileRow struct {
	UserID      string `gorm:"primaryKey;type:varchar(128)"`
	DisplayName string
	AvatarRef   string
	Bio         string
	CreatedAt   time.Time
}

// TableName implements gorm's tabler
func (ProfileRow) TableName() string { return "profiles" }
