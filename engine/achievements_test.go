package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qifu-app/qifu/models"
)

func testRegistry() []models.Temple {
	return []models.Temple{
		{ID: 1, Code: "TPL-A", Name: "灵隐寺", Deity: "观音菩萨", CheckInRadius: 100, BlessPoints: 15},
		{ID: 2, Code: "TPL-B", Name: "雍和宫", Deity: "弥勒佛", CheckInRadius: 100, BlessPoints: 15},
		{ID: 3, Code: "TPL-C", Name: "城隍庙", Deity: "城隍", CheckInRadius: 100, BlessPoints: 15},
	}
}

func findState(t *testing.T, states []models.Achievement, code string) models.Achievement {
	t.Helper()
	for _, s := range states {
		if s.Code == code {
			return s
		}
	}
	t.Fatalf("achievement %s not found", code)
	return models.Achievement{}
}

func TestRequirementTargetValue(t *testing.T) {
	assert.Equal(t, 1, Requirement{Kind: ReqFirstCheckIn}.TargetValue())
	assert.Equal(t, 7, Requirement{Kind: ReqPerfectWeek}.TargetValue())
	assert.Equal(t, 30, Requirement{Kind: ReqConsecutiveDays, Value: 30}.TargetValue())
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0.5, ProgressPercent(5, 10))
	assert.Equal(t, 1.0, ProgressPercent(15, 10))
	assert.Equal(t, 0.0, ProgressPercent(-2, 10))
	assert.Equal(t, 1.0, ProgressPercent(0, 0)) // guarded, no division
}

func TestRecomputeBasics(t *testing.T) {
	e := NewAchievementEngine(testRegistry())
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.Local)

	t.Run("empty history unlocks nothing", func(t *testing.T) {
		stats := &models.CheckInStatistics{UserID: 1}
		updated, newly := e.Recompute(1, nil, stats, nil, now)
		require.Len(t, updated, len(e.Definitions()))
		assert.Empty(t, newly)
		for _, s := range updated {
			assert.False(t, s.Unlocked, s.Code)
		}
	})

	t.Run("first check-in unlocks first_steps", func(t *testing.T) {
		rec := recordAt(1, now, 37)
		stats := ReplayHistory(1, []models.CheckInRecord{rec})
		updated, newly := e.Recompute(1, nil, &stats, []models.CheckInRecord{rec}, now)

		state := findState(t, updated, "first_steps")
		assert.True(t, state.Unlocked)
		require.NotNil(t, state.UnlockedAt)

		codes := make([]string, 0, len(newly))
		for _, u := range newly {
			codes = append(codes, u.Definition.Code)
		}
		assert.Contains(t, codes, "first_steps")
	})

	t.Run("recompute is idempotent", func(t *testing.T) {
		rec := recordAt(1, now, 37)
		stats := ReplayHistory(1, []models.CheckInRecord{rec})
		first, newly1 := e.Recompute(1, nil, &stats, []models.CheckInRecord{rec}, now)
		assert.NotEmpty(t, newly1)

		second, newly2 := e.Recompute(1, first, &stats, []models.CheckInRecord{rec}, now)
		assert.Empty(t, newly2, "already unlocked achievements must not fire again")
		assert.Equal(t, first, second)
	})
}

func TestUnlockIsFinal(t *testing.T) {
	e := NewAchievementEngine(testRegistry())
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.Local)

	rec := recordAt(1, now, 37)
	stats := ReplayHistory(1, []models.CheckInRecord{rec})
	states, _ := e.Recompute(1, nil, &stats, []models.CheckInRecord{rec}, now)
	require.True(t, findState(t, states, "first_steps").Unlocked)

	// Feed an empty aggregate: the formulas would now report zero progress.
	empty := &models.CheckInStatistics{UserID: 1}
	after, newly := e.Recompute(1, states, empty, nil, now.Add(time.Hour))
	assert.Empty(t, newly)
	state := findState(t, after, "first_steps")
	assert.True(t, state.Unlocked)
	assert.Equal(t, 1, state.Progress, "frozen progress is not recomputed")
}

func TestPerfectWeek(t *testing.T) {
	e := NewAchievementEngine(testRegistry())
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.Local)

	weekOf := func(days int) []models.CheckInRecord {
		history := make([]models.CheckInRecord, 0, days)
		for i := 0; i < days; i++ {
			history = append(history, recordAt(1, now.AddDate(0, 0, -i), 10))
		}
		return history
	}

	t.Run("seven distinct days unlock", func(t *testing.T) {
		history := weekOf(7)
		stats := ReplayHistory(1, history)
		updated, _ := e.Recompute(1, nil, &stats, history, now)
		state := findState(t, updated, "perfect_week")
		assert.Equal(t, 7, state.Progress)
		assert.True(t, state.Unlocked)
	})

	t.Run("six days report zero not six", func(t *testing.T) {
		history := weekOf(6)
		stats := ReplayHistory(1, history)
		updated, _ := e.Recompute(1, nil, &stats, history, now)
		state := findState(t, updated, "perfect_week")
		assert.Equal(t, 0, state.Progress)
		assert.False(t, state.Unlocked)
	})
}

func TestTimeWindowRequirements(t *testing.T) {
	e := NewAchievementEngine(testRegistry())
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

	at := func(hour, min int) models.CheckInRecord {
		return recordAt(1, time.Date(2026, 3, 10, hour, min, 0, 0, time.Local), 10)
	}

	history := []models.CheckInRecord{
		at(5, 59),  // too early
		at(6, 0),   // early bird
		at(8, 59),  // early bird
		at(9, 0),   // boundary excluded
		at(20, 59), // too early for night owl
		at(21, 0),  // night owl
		at(23, 59), // night owl
	}
	stats := ReplayHistory(1, history)
	updated, _ := e.Recompute(1, nil, &stats, history, now)

	assert.Equal(t, 2, findState(t, updated, "early_bird").Progress)
	assert.Equal(t, 2, findState(t, updated, "night_owl").Progress)
}

func TestRegistryWideRequirements(t *testing.T) {
	e := NewAchievementEngine(testRegistry())
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.Local)

	history := []models.CheckInRecord{
		recordAt(1, now.AddDate(0, 0, -2), 10),
		recordAt(2, now.AddDate(0, 0, -1), 10),
		recordAt(3, now, 10),
	}
	stats := ReplayHistory(1, history)
	updated, newly := e.Recompute(1, nil, &stats, history, now)

	assert.True(t, findState(t, updated, "all_deities").Unlocked)
	assert.True(t, findState(t, updated, "all_temples").Unlocked)
	assert.NotEmpty(t, newly)
}

func TestSingleEventAndStubRequirements(t *testing.T) {
	e := NewAchievementEngine(testRegistry())
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.Local)

	t.Run("earn points caps display at the target", func(t *testing.T) {
		history := []models.CheckInRecord{recordAt(1, now, 80)}
		stats := ReplayHistory(1, history)
		updated, _ := e.Recompute(1, nil, &stats, history, now)
		state := findState(t, updated, "big_blessing")
		assert.Equal(t, 50, state.Progress)
		assert.True(t, state.Unlocked)
	})

	t.Run("prayer count only sees prayer records", func(t *testing.T) {
		prayer := recordAt(1, now, 22)
		prayer.CheckInType = models.CheckInPrayer
		history := []models.CheckInRecord{recordAt(2, now.AddDate(0, 0, -1), 10), prayer}
		stats := ReplayHistory(1, history)
		updated, _ := e.Recompute(1, nil, &stats, history, now)
		assert.Equal(t, 1, findState(t, updated, "prayers_10").Progress)
	})

	t.Run("social stubs stay at zero", func(t *testing.T) {
		history := []models.CheckInRecord{recordAt(1, now, 10)}
		stats := ReplayHistory(1, history)
		updated, _ := e.Recompute(1, nil, &stats, history, now)
		assert.Equal(t, 0, findState(t, updated, "invite_3").Progress)
		assert.Equal(t, 0, findState(t, updated, "share_10").Progress)
		assert.False(t, findState(t, updated, "invite_3").Unlocked)
		assert.False(t, findState(t, updated, "share_10").Unlocked)
	})
}

func TestCatalogIntegrity(t *testing.T) {
	e := NewAchievementEngine(testRegistry())
	seen := map[string]bool{}
	for _, def := range e.Definitions() {
		assert.False(t, seen[def.Code], "duplicate code %s", def.Code)
		seen[def.Code] = true
		assert.NotEmpty(t, def.Name)
		assert.NotEmpty(t, def.Requirement.DisplayText(), def.Code)
		if def.Requirement.Kind != ReqInviteFriends && def.Requirement.Kind != ReqShareCheckIns {
			assert.Positive(t, def.Requirement.TargetValue(), def.Code)
		}
	}
}
