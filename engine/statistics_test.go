package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qifu-app/qifu/models"
)

func recordAt(templeID uint, when time.Time, points int) models.CheckInRecord {
	return models.CheckInRecord{
		UserID:       1,
		TempleID:     templeID,
		CheckInTime:  when,
		EarnedPoints: points,
		CheckInType:  models.CheckInNormal,
	}
}

func TestApplyCheckIn(t *testing.T) {
	day := func(d, hour int) time.Time {
		return time.Date(2026, 3, d, hour, 0, 0, 0, time.Local)
	}

	t.Run("first record starts the streak", func(t *testing.T) {
		stats := models.CheckInStatistics{UserID: 1}
		rec := recordAt(1, day(1, 9), 15)
		ApplyCheckIn(&stats, &rec)

		assert.Equal(t, 1, stats.TotalCheckIns)
		assert.Equal(t, 15, stats.TotalPoints)
		assert.Equal(t, 1, stats.CurrentStreak)
		assert.Equal(t, 1, stats.LongestStreak)
		assert.True(t, stats.VisitedTemples.Contains(1))
		assert.Equal(t, 1, stats.TempleCounts[1])
		assert.Equal(t, 1, stats.MonthlyCounts["2026-03"])
	})

	t.Run("next day increments, same day holds, gap resets", func(t *testing.T) {
		stats := models.CheckInStatistics{UserID: 1}

		r1 := recordAt(1, day(1, 9), 10)
		ApplyCheckIn(&stats, &r1)
		r2 := recordAt(2, day(2, 9), 10)
		ApplyCheckIn(&stats, &r2)
		assert.Equal(t, 2, stats.CurrentStreak)

		// Second temple on the same day: unchanged.
		r3 := recordAt(3, day(2, 18), 10)
		ApplyCheckIn(&stats, &r3)
		assert.Equal(t, 2, stats.CurrentStreak)

		// Two-day gap: reset to 1, longest preserved.
		r4 := recordAt(1, day(5, 9), 10)
		ApplyCheckIn(&stats, &r4)
		assert.Equal(t, 1, stats.CurrentStreak)
		assert.Equal(t, 2, stats.LongestStreak)
	})

	t.Run("longest streak never drops below current", func(t *testing.T) {
		stats := models.CheckInStatistics{UserID: 1}
		days := []int{1, 2, 3, 6, 7, 8, 9, 12, 12, 13}
		for _, d := range days {
			rec := recordAt(uint(d%4+1), day(d, 10), 10)
			ApplyCheckIn(&stats, &rec)
			assert.GreaterOrEqual(t, stats.LongestStreak, stats.CurrentStreak)
		}
		assert.Equal(t, 4, stats.LongestStreak)
		assert.Equal(t, 2, stats.CurrentStreak)
	})

	t.Run("late-night to early-morning still counts as consecutive", func(t *testing.T) {
		stats := models.CheckInStatistics{UserID: 1}
		r1 := recordAt(1, day(1, 23), 10)
		ApplyCheckIn(&stats, &r1)
		r2 := recordAt(2, day(2, 0), 10)
		ApplyCheckIn(&stats, &r2)
		assert.Equal(t, 2, stats.CurrentStreak)
	})
}

func TestReplayHistory(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 10, 0, 0, 0, time.Local)
	}
	history := []models.CheckInRecord{
		recordAt(1, day(1), 15),
		recordAt(2, day(2), 12),
		recordAt(1, day(4), 15),
	}

	replayed := ReplayHistory(1, history)

	incremental := models.CheckInStatistics{UserID: 1}
	for i := range history {
		ApplyCheckIn(&incremental, &history[i])
	}

	require.Equal(t, incremental.TotalCheckIns, replayed.TotalCheckIns)
	assert.Equal(t, incremental.TotalPoints, replayed.TotalPoints)
	assert.Equal(t, incremental.CurrentStreak, replayed.CurrentStreak)
	assert.Equal(t, incremental.LongestStreak, replayed.LongestStreak)
	assert.Equal(t, incremental.TempleCounts, replayed.TempleCounts)
	assert.Equal(t, 42, replayed.TotalPoints)
	assert.Equal(t, 1, replayed.CurrentStreak)
	assert.Equal(t, 2, replayed.LongestStreak)
}

func TestTodayCheckIns(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.Local)
	history := []models.CheckInRecord{
		recordAt(1, time.Date(2026, 3, 9, 10, 0, 0, 0, time.Local), 10),
		recordAt(2, time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local), 10),
		recordAt(3, time.Date(2026, 3, 10, 19, 0, 0, 0, time.Local), 10),
	}
	assert.Equal(t, 2, TodayCheckIns(history, now))
	assert.Equal(t, 0, TodayCheckIns(nil, now))
}
