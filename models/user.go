package models

import (
	"time"
)

// DuelUser is the local user directory row for the duel service.
// Identity fields (username, avatar) are mirrored from the Profile
// Service by the sync worker; rating and the win/loss record are owned
// here and mutated only by duel resolution.
type DuelUser struct {
	ID                string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID    string  `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Username          string  `gorm:"uniqueIndex;not null" json:"username"`
	Slug              string  `gorm:"index" json:"slug"`
	SearchKey         string  `gorm:"index" json:"-"` // ASCII-folded, lower-cased username
	ProfilePictureURL *string `json:"profile_picture_url,omitempty"`

	Rating    int `gorm:"default:1000" json:"rating"`
	Wins      int `gorm:"default:0" json:"wins"`
	Losses    int `gorm:"default:0" json:"losses"`
	Followers int `gorm:"default:0" json:"followers"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// UserSummary is the public shape returned by search and profile routes.
type UserSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Rating    int    `json:"rating"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	Followers int    `json:"followers"`
}

func (u *DuelUser) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Rating:    u.Rating,
		Wins:      u.Wins,
		Losses:    u.Losses,
		Followers: u.Followers,
	}
}
