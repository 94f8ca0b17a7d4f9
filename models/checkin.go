package models

import "time"

// CheckInType classifies a check-in for point multipliers.
type CheckInType string

const (
	CheckInNormal      CheckInType = "normal"
	CheckInPrayer      CheckInType = "prayer"
	CheckInFestival    CheckInType = "festival"
	CheckInFirstVisit  CheckInType = "first_visit"
	CheckInConsecutive CheckInType = "consecutive"
)

// Multiplier returns the base point multiplier for the type.
func (t CheckInType) Multiplier() float64 {
	switch t {
	case CheckInPrayer:
		return 1.5
	case CheckInFestival:
		return 2.0
	case CheckInFirstVisit:
		return 2.5
	case CheckInConsecutive:
		return 1.2
	default:
		return 1.0
	}
}

// CheckInRecord is an append-only event: created once on a successful
// validation, never edited afterwards.
type CheckInRecord struct {
	ID              string      `gorm:"primaryKey;size:36" json:"id"`
	UserID          uint        `gorm:"index;not null" json:"user_id"`
	TempleID        uint        `gorm:"index;not null" json:"temple_id"`
	CheckInTime     time.Time   `gorm:"index;not null" json:"check_in_time"`
	EarnedPoints    int         `gorm:"not null" json:"earned_points"`
	CheckInType     CheckInType `gorm:"size:16;not null;default:'normal'" json:"check_in_type"`
	IsConsecutive   bool        `gorm:"not null;default:false" json:"is_consecutive"`
	ConsecutiveDays int         `gorm:"not null;default:1" json:"consecutive_days"`
	PrayerNote      string      `gorm:"size:255" json:"prayer_note,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}
