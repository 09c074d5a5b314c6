package models

import "time"

// WinnerTie is stored in DuelHistory.WinnerID when neither side won.
const WinnerTie = "tie"

// DuelHistory is the append-only ledger of resolved duels. After
// insert only PostDestroyed and HijackUsed ever change, each
// false→true exactly once (stake privileges are single-use).
type DuelHistory struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	ChallengerID   string `gorm:"index;not null" json:"challenger_id"`
	ChallengerName string `gorm:"not null" json:"challenger_name"`
	DefenderID     string `gorm:"index;not null" json:"defender_id"`
	DefenderName   string `gorm:"not null" json:"defender_name"`

	PostID string `gorm:"index;not null" json:"post_id"`
	// Snapshot taken at resolution so the ledger survives the post
	// being destroyed later.
	OriginalPostContent string `gorm:"type:text" json:"original_post_content"`

	WinnerID   string `gorm:"not null" json:"winner_id"` // user id or WinnerTie
	WinnerName string `gorm:"not null" json:"winner_name"`

	PostDestroyed bool `gorm:"default:false" json:"post_destroyed"`
	HijackUsed    bool `gorm:"default:false" json:"hijack_used"`

	ResolvedAt time.Time `gorm:"index" json:"resolved_at"`
}

// StakeActions is what a given viewer may still do with a ledger entry.
type StakeActions struct {
	CanDestroy      bool `json:"can_destroy"`
	CanPostOnBehalf bool `json:"can_post_on_behalf"`
	CanForward      bool `json:"can_forward"`
}
