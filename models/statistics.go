package models

import "time"

// CheckInStatistics is the per-user aggregate maintained by folding one
// CheckInRecord at a time, in chronological arrival order. The streak branch
// depends on the previous LastCheckInAt, so the fold is order-sensitive.
type CheckInStatistics struct {
	ID             uint         `gorm:"primaryKey" json:"-"`
	UserID         uint         `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalCheckIns  int          `gorm:"not null;default:0" json:"total_check_ins"`
	TotalPoints    int          `gorm:"not null;default:0" json:"total_points"`
	VisitedTemples UintSet      `gorm:"type:json" json:"visited_temples"`
	CurrentStreak  int          `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak  int          `gorm:"not null;default:0" json:"longest_streak"`
	LastCheckInAt  *time.Time   `json:"last_check_in_at"`
	MonthlyCounts  StringIntMap `gorm:"type:json" json:"monthly_counts"`
	TempleCounts   UintIntMap   `gorm:"type:json" json:"temple_counts"`
	CreatedAt      time.Time    `json:"-"`
	UpdatedAt      time.Time    `json:"-"`
}

// HasVisited reports whether the user has any prior check-in at the temple.
func (s *CheckInStatistics) HasVisited(templeID uint) bool {
	return s.TempleCounts[templeID] > 0
}
