package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/qifu-app/qifu/models"
)

// ValidationFailureKind distinguishes the expected, user-recoverable
// rejection reasons.
type ValidationFailureKind string

const (
	FailureOutOfRange    ValidationFailureKind = "out_of_range"
	FailureAlreadyToday  ValidationFailureKind = "already_checked_in_today"
	FailureInvalidTemple ValidationFailureKind = "invalid_temple"
)

// ValidationError is returned for rejected attempts. It is a result value,
// not a fault: the caller surfaces Message verbatim to the user.
type ValidationError struct {
	Kind    ValidationFailureKind
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidationInput carries everything Validate needs for one attempt.
type ValidationInput struct {
	Temple      models.Temple
	UserCoord   Coordinate
	LastCheckIn *models.CheckInRecord
	Now         time.Time
}

// Validate applies the eligibility rules in order; the first failure wins.
// Opening hours are deliberately not checked: temples accept check-ins at
// any hour.
func Validate(in ValidationInput) *ValidationError {
	if !in.Temple.Valid() {
		return &ValidationError{
			Kind:    FailureInvalidTemple,
			Message: fmt.Sprintf("temple %d has an invalid catalog entry", in.Temple.ID),
		}
	}

	dist := DistanceMeters(in.UserCoord, Coordinate{
		Latitude:  in.Temple.Latitude,
		Longitude: in.Temple.Longitude,
	})
	if dist > in.Temple.CheckInRadius {
		return &ValidationError{
			Kind: FailureOutOfRange,
			Message: fmt.Sprintf("距离太远：当前 %d 米，需在 %d 米以内",
				int(math.Round(dist)), int(math.Round(in.Temple.CheckInRadius))),
		}
	}

	if in.LastCheckIn != nil &&
		in.LastCheckIn.TempleID == in.Temple.ID &&
		sameCalendarDay(in.LastCheckIn.CheckInTime, in.Now) {
		return &ValidationError{
			Kind:    FailureAlreadyToday,
			Message: "今天已在该寺庙打卡，明天再来吧",
		}
	}

	return nil
}

// Classification is the outcome of DetermineCheckInType for one attempt.
type Classification struct {
	Type            models.CheckInType
	IsConsecutive   bool
	ConsecutiveDays int
}

// DetermineCheckInType classifies the attempt. First visit to the temple
// wins over everything; otherwise a consecutive-day attempt; otherwise the
// requested prayer kind or plain normal. Festival detection is not wired and
// always falls through.
func DetermineCheckInType(stats *models.CheckInStatistics, temple models.Temple, now time.Time, prayer bool) Classification {
	consecutive := isConsecutiveAttempt(stats, now)
	days := 1
	if consecutive {
		days = stats.CurrentStreak + 1
	}

	c := Classification{IsConsecutive: consecutive, ConsecutiveDays: days}
	switch {
	case !stats.HasVisited(temple.ID):
		c.Type = models.CheckInFirstVisit
	case consecutive:
		c.Type = models.CheckInConsecutive
	case prayer:
		c.Type = models.CheckInPrayer
	default:
		c.Type = models.CheckInNormal
	}
	return c
}

// CalculatePoints computes earned points for one check-in. The consecutive
// bonus grows 5% per day beyond the first and hard-caps at 2x. The result is
// truncated, not rounded.
func CalculatePoints(basePoints int, c Classification) int {
	points := float64(basePoints) * c.Type.Multiplier()
	if c.IsConsecutive && c.ConsecutiveDays > 1 {
		bonus := 1 + float64(c.ConsecutiveDays-1)*0.05
		if bonus > 2.0 {
			bonus = 2.0
		}
		points *= bonus
	}
	return int(math.Floor(points))
}

// isConsecutiveAttempt is true iff the previous check-in happened exactly one
// calendar day before now. Day components, not a wall-clock window.
func isConsecutiveAttempt(stats *models.CheckInStatistics, now time.Time) bool {
	if stats.LastCheckInAt == nil {
		return false
	}
	return calendarDaysBetween(*stats.LastCheckInAt, now) == 1
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameCalendarDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// calendarDaysBetween counts whole calendar days from a to b (negative when
// b is earlier). Rounding absorbs DST-shortened or -lengthened days.
func calendarDaysBetween(a, b time.Time) int {
	return int(math.Round(startOfDay(b).Sub(startOfDay(a)).Hours() / 24))
}
