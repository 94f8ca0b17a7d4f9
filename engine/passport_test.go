package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qifu-app/qifu/models"
)

func TestPointsNeededForLevel(t *testing.T) {
	assert.Equal(t, 100, PointsNeededForLevel(1))
	assert.Equal(t, 700, PointsNeededForLevel(7))
	assert.Equal(t, 100, PointsNeededForLevel(0)) // clamped
	assert.Equal(t, 100, PointsNeededForLevel(-3))
}

func TestTitleForLevel(t *testing.T) {
	tests := []struct {
		level int
		title string
	}{
		{1, "初诣者"},
		{5, "初诣者"},
		{6, "参拜客"},
		{10, "参拜客"},
		{15, "香客"},
		{25, "祈愿人"},
		{35, "修行者"},
		{45, "修行者"},
		{55, "居士"},
		{65, "护法"},
		{75, "法师"},
		{85, "长老"},
		{95, "方丈"},
		{100, "云游大师"},
		{250, "云游大师"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.title, TitleForLevel(tt.level), "level %d", tt.level)
	}
}

func TestAddPoints(t *testing.T) {
	t.Run("small delta stays in level", func(t *testing.T) {
		p := models.CloudPassport{UserID: 1, Level: 1}
		AddPoints(&p, 40)
		assert.Equal(t, 1, p.Level)
		assert.Equal(t, 40, p.CurrentPoints)
		assert.Equal(t, 40, p.TotalPoints)
		assert.Equal(t, "初诣者", p.Title)
	})

	t.Run("large delta carries across multiple levels", func(t *testing.T) {
		p := models.CloudPassport{UserID: 1, Level: 1}
		AddPoints(&p, 250)
		assert.Equal(t, 3, p.Level)
		assert.Equal(t, 50, p.CurrentPoints)
		assert.Equal(t, 250, p.TotalPoints)
	})

	t.Run("current points stay below the level threshold", func(t *testing.T) {
		p := models.CloudPassport{UserID: 1, Level: 1}
		for i := 0; i < 50; i++ {
			AddPoints(&p, 37)
			assert.Less(t, p.CurrentPoints, PointsNeededForLevel(p.Level))
		}
		assert.Equal(t, 50*37, p.TotalPoints)
	})

	t.Run("negative delta is ignored", func(t *testing.T) {
		p := models.CloudPassport{UserID: 1, Level: 2, CurrentPoints: 30, TotalPoints: 130}
		AddPoints(&p, -500)
		assert.Equal(t, 2, p.Level)
		assert.Equal(t, 30, p.CurrentPoints)
		assert.Equal(t, 130, p.TotalPoints)
	})

	t.Run("zero level is normalized", func(t *testing.T) {
		p := models.CloudPassport{UserID: 1}
		AddPoints(&p, 10)
		assert.Equal(t, 1, p.Level)
	})

	t.Run("title tracks the new level", func(t *testing.T) {
		p := models.CloudPassport{UserID: 1, Level: 5, CurrentPoints: 490}
		AddPoints(&p, 20)
		assert.Equal(t, 6, p.Level)
		assert.Equal(t, "参拜客", p.Title)
	})
}

func TestUpdateCheckInStreak(t *testing.T) {
	day := func(d, hour int) time.Time {
		return time.Date(2026, 3, d, hour, 0, 0, 0, time.Local)
	}

	t.Run("first check-in", func(t *testing.T) {
		p := models.CloudPassport{UserID: 1}
		UpdateCheckInStreak(&p, day(1, 9))
		assert.Equal(t, 1, p.CheckInStreak)
		assert.Equal(t, day(1, 0), *p.LastCheckInDay)
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		p := models.CloudPassport{UserID: 1}
		UpdateCheckInStreak(&p, day(1, 9))
		UpdateCheckInStreak(&p, day(1, 22))
		assert.Equal(t, 1, p.CheckInStreak)
	})

	t.Run("next day increments", func(t *testing.T) {
		p := models.CloudPassport{UserID: 1}
		UpdateCheckInStreak(&p, day(1, 9))
		UpdateCheckInStreak(&p, day(2, 7))
		assert.Equal(t, 2, p.CheckInStreak)
	})

	t.Run("gap resets", func(t *testing.T) {
		p := models.CloudPassport{UserID: 1}
		UpdateCheckInStreak(&p, day(1, 9))
		UpdateCheckInStreak(&p, day(2, 9))
		UpdateCheckInStreak(&p, day(5, 9))
		assert.Equal(t, 1, p.CheckInStreak)
	})
}

// The passport and the statistics aggregate each keep a streak counter. They
// use separate code paths, so this differential test drives both with the
// same day sequences and requires them to agree.
func TestStreakCountersAgree(t *testing.T) {
	sequences := [][]int{
		{1},
		{1, 2, 3, 4, 5},
		{1, 1, 2},
		{1, 2, 5, 6, 7},
		{1, 3, 5, 7},
		{1, 2, 2, 3, 10, 11, 11, 12},
	}

	for _, days := range sequences {
		p := models.CloudPassport{UserID: 1}
		stats := models.CheckInStatistics{UserID: 1}
		for _, d := range days {
			when := time.Date(2026, 4, d, 15, 0, 0, 0, time.Local)
			rec := recordAt(1, when, 10)
			ApplyCheckIn(&stats, &rec)
			UpdateCheckInStreak(&p, when)
		}
		assert.Equal(t, stats.CurrentStreak, p.CheckInStreak, "day sequence %v", days)
	}
}
