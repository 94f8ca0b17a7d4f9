package models

import "time"

// Achievement is the per-user progress row for one catalog entry. Progress is
// re-derived from statistics and history on every recompute; Unlocked is a
// one-way transition and UnlockedAt is stamped exactly once.
type Achievement struct {
	ID         uint       `gorm:"primaryKey" json:"-"`
	UserID     uint       `gorm:"index:idx_user_achievement,unique;not null" json:"user_id"`
	Code       string     `gorm:"index:idx_user_achievement,unique;size:64;not null" json:"code"`
	Progress   int        `gorm:"not null;default:0" json:"progress"`
	Unlocked   bool       `gorm:"not null;default:false" json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	CreatedAt  time.Time  `json:"-"`
	UpdatedAt  time.Time  `json:"-"`
}
