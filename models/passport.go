package models

import "time"

// CloudPassport is the leveling ledger: points carry over across level-ups,
// so CurrentPoints is always below the current level's threshold. Title is
// derived from Level and stored only for display queries.
type CloudPassport struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Level          int        `gorm:"not null;default:1" json:"level"`
	CurrentPoints  int        `gorm:"not null;default:0" json:"current_points"`
	TotalPoints    int        `gorm:"not null;default:0" json:"total_points"`
	Title          string     `gorm:"size:32" json:"title"`
	CheckInStreak  int        `gorm:"not null;default:0" json:"check_in_streak"`
	LastCheckInDay *time.Time `json:"last_check_in_day"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}
