package models

import "time"

// Post is a feed item. Posts are never hard-deleted: a duel stake can
// destroy one, which flips Deleted and leaves the row for the history
// ledger's original-content snapshot.
type Post struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID   string `gorm:"index;not null" json:"user_id"`
	Username string `gorm:"not null" json:"username"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Slug     string `gorm:"index" json:"slug"`

	// Optional media attachment, uploaded to R2 at creation time.
	MediaURL *string `json:"media_url,omitempty"`

	Deleted bool `gorm:"default:false;index" json:"deleted"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
