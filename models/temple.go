package models

import "time"

// Temple is a catalog entry the engine reads but never modifies.
// CheckInRadius is in meters; BlessPoints is the base reward per check-in.
type Temple struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Code          string    `gorm:"size:64;uniqueIndex;not null" json:"code"` // scanned QR/NFC identifier
	Name          string    `gorm:"size:128;not null" json:"name"`
	Deity         string    `gorm:"size:64;not null" json:"deity"`
	Address       string    `gorm:"size:255" json:"address"`
	Description   string    `gorm:"type:text" json:"description"`
	Latitude      float64   `gorm:"not null" json:"latitude"`
	Longitude     float64   `gorm:"not null" json:"longitude"`
	CheckInRadius float64   `gorm:"not null;default:100" json:"check_in_radius"`
	BlessPoints   int       `gorm:"not null;default:10" json:"bless_points"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Valid reports whether the catalog entry satisfies its invariants.
func (t Temple) Valid() bool {
	return t.CheckInRadius > 0 && t.BlessPoints >= 0
}
