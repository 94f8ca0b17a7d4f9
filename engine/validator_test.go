package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qifu-app/qifu/models"
)

func testTemple() models.Temple {
	return models.Temple{
		ID:            1,
		Code:          "TPL-TEST",
		Name:          "灵隐寺",
		Deity:         "观音菩萨",
		Latitude:      30.24102,
		Longitude:     120.09829,
		CheckInRadius: 50,
		BlessPoints:   15,
	}
}

// offsetNorth returns a coordinate approximately meters north of the temple.
func offsetNorth(t models.Temple, meters float64) Coordinate {
	return Coordinate{
		Latitude:  t.Latitude + meters/111195.0,
		Longitude: t.Longitude,
	}
}

func TestValidate(t *testing.T) {
	temple := testTemple()
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)

	t.Run("accepts inside radius", func(t *testing.T) {
		verr := Validate(ValidationInput{
			Temple:    temple,
			UserCoord: offsetNorth(temple, 40),
			Now:       now,
		})
		assert.Nil(t, verr)
	})

	t.Run("accepts exactly on the boundary", func(t *testing.T) {
		coord := offsetNorth(temple, 120)
		boundary := temple
		boundary.CheckInRadius = DistanceMeters(coord, Coordinate{
			Latitude:  temple.Latitude,
			Longitude: temple.Longitude,
		})
		verr := Validate(ValidationInput{Temple: boundary, UserCoord: coord, Now: now})
		assert.Nil(t, verr)
	})

	t.Run("rejects outside radius", func(t *testing.T) {
		verr := Validate(ValidationInput{
			Temple:    temple,
			UserCoord: offsetNorth(temple, 80),
			Now:       now,
		})
		require.NotNil(t, verr)
		assert.Equal(t, FailureOutOfRange, verr.Kind)
		assert.NotEmpty(t, verr.Message)
	})

	t.Run("rejects second check-in at same temple same day", func(t *testing.T) {
		last := &models.CheckInRecord{
			TempleID:    temple.ID,
			CheckInTime: time.Date(2026, 3, 10, 8, 30, 0, 0, time.Local),
		}
		verr := Validate(ValidationInput{
			Temple:      temple,
			UserCoord:   offsetNorth(temple, 10),
			LastCheckIn: last,
			Now:         now,
		})
		require.NotNil(t, verr)
		assert.Equal(t, FailureAlreadyToday, verr.Kind)
	})

	t.Run("accepts next calendar day at same temple", func(t *testing.T) {
		last := &models.CheckInRecord{
			TempleID:    temple.ID,
			CheckInTime: time.Date(2026, 3, 9, 23, 59, 0, 0, time.Local),
		}
		verr := Validate(ValidationInput{
			Temple:      temple,
			UserCoord:   offsetNorth(temple, 10),
			LastCheckIn: last,
			Now:         time.Date(2026, 3, 10, 0, 1, 0, 0, time.Local),
		})
		assert.Nil(t, verr)
	})

	t.Run("accepts same day at a different temple", func(t *testing.T) {
		last := &models.CheckInRecord{
			TempleID:    99,
			CheckInTime: time.Date(2026, 3, 10, 8, 30, 0, 0, time.Local),
		}
		verr := Validate(ValidationInput{
			Temple:      temple,
			UserCoord:   offsetNorth(temple, 10),
			LastCheckIn: last,
			Now:         now,
		})
		assert.Nil(t, verr)
	})

	t.Run("rejects invalid catalog entry", func(t *testing.T) {
		bad := temple
		bad.CheckInRadius = 0
		verr := Validate(ValidationInput{Temple: bad, UserCoord: offsetNorth(temple, 10), Now: now})
		require.NotNil(t, verr)
		assert.Equal(t, FailureInvalidTemple, verr.Kind)
	})
}

func TestDetermineCheckInType(t *testing.T) {
	temple := testTemple()
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.Local)
	yesterday := now.AddDate(0, 0, -1)

	t.Run("first visit wins over everything", func(t *testing.T) {
		stats := &models.CheckInStatistics{
			CurrentStreak: 5,
			LastCheckInAt: &yesterday,
			TempleCounts:  models.UintIntMap{},
		}
		c := DetermineCheckInType(stats, temple, now, true)
		assert.Equal(t, models.CheckInFirstVisit, c.Type)
		assert.True(t, c.IsConsecutive)
		assert.Equal(t, 6, c.ConsecutiveDays)
	})

	t.Run("consecutive wins over prayer", func(t *testing.T) {
		stats := &models.CheckInStatistics{
			CurrentStreak: 5,
			LastCheckInAt: &yesterday,
			TempleCounts:  models.UintIntMap{temple.ID: 3},
		}
		c := DetermineCheckInType(stats, temple, now, true)
		assert.Equal(t, models.CheckInConsecutive, c.Type)
		assert.Equal(t, 6, c.ConsecutiveDays)
	})

	t.Run("prayer when requested and not consecutive", func(t *testing.T) {
		old := now.AddDate(0, 0, -3)
		stats := &models.CheckInStatistics{
			CurrentStreak: 1,
			LastCheckInAt: &old,
			TempleCounts:  models.UintIntMap{temple.ID: 3},
		}
		c := DetermineCheckInType(stats, temple, now, true)
		assert.Equal(t, models.CheckInPrayer, c.Type)
		assert.False(t, c.IsConsecutive)
		assert.Equal(t, 1, c.ConsecutiveDays)
	})

	t.Run("normal otherwise", func(t *testing.T) {
		old := now.AddDate(0, 0, -3)
		stats := &models.CheckInStatistics{
			CurrentStreak: 1,
			LastCheckInAt: &old,
			TempleCounts:  models.UintIntMap{temple.ID: 3},
		}
		c := DetermineCheckInType(stats, temple, now, false)
		assert.Equal(t, models.CheckInNormal, c.Type)
	})
}

func TestCalculatePoints(t *testing.T) {
	t.Run("first visit at 40m of a 50m radius temple", func(t *testing.T) {
		c := Classification{Type: models.CheckInFirstVisit, ConsecutiveDays: 1}
		assert.Equal(t, 37, CalculatePoints(15, c)) // floor(15 * 2.5)
	})

	t.Run("sixth consecutive day", func(t *testing.T) {
		c := Classification{Type: models.CheckInConsecutive, IsConsecutive: true, ConsecutiveDays: 6}
		// 15 * 1.2 * (1 + 5*0.05) = 22.5, truncated
		assert.Equal(t, 22, CalculatePoints(15, c))
	})

	t.Run("bonus clamps at 2x for very long streaks", func(t *testing.T) {
		c := Classification{Type: models.CheckInConsecutive, IsConsecutive: true, ConsecutiveDays: 100}
		assert.Equal(t, 24, CalculatePoints(10, c)) // 10 * 1.2 * 2.0
	})

	t.Run("no bonus on the first day of a streak", func(t *testing.T) {
		c := Classification{Type: models.CheckInNormal, ConsecutiveDays: 1}
		assert.Equal(t, 10, CalculatePoints(10, c))
	})

	t.Run("result is truncated not rounded", func(t *testing.T) {
		c := Classification{Type: models.CheckInPrayer, ConsecutiveDays: 1}
		assert.Equal(t, 16, CalculatePoints(11, c)) // 11 * 1.5 = 16.5
	})
}

func TestCalendarDayHelpers(t *testing.T) {
	t.Run("same calendar day across hours", func(t *testing.T) {
		a := time.Date(2026, 3, 10, 0, 0, 1, 0, time.Local)
		b := time.Date(2026, 3, 10, 23, 59, 59, 0, time.Local)
		assert.True(t, sameCalendarDay(a, b))
	})

	t.Run("midnight boundary splits days", func(t *testing.T) {
		a := time.Date(2026, 3, 10, 23, 59, 59, 0, time.Local)
		b := time.Date(2026, 3, 11, 0, 0, 1, 0, time.Local)
		assert.False(t, sameCalendarDay(a, b))
		assert.Equal(t, 1, calendarDaysBetween(a, b))
	})

	t.Run("negative when reversed", func(t *testing.T) {
		a := time.Date(2026, 3, 12, 8, 0, 0, 0, time.Local)
		b := time.Date(2026, 3, 10, 20, 0, 0, 0, time.Local)
		assert.Equal(t, -2, calendarDaysBetween(a, b))
	})
}
