package engine

import (
	"fmt"
	"time"

	"github.com/qifu-app/qifu/models"
)

// RequirementKind tags the closed set of achievement requirement variants.
type RequirementKind string

const (
	ReqFirstCheckIn       RequirementKind = "first_check_in"
	ReqConsecutiveDays    RequirementKind = "consecutive_days"
	ReqTotalCheckIns      RequirementKind = "total_check_ins"
	ReqVisitTemples       RequirementKind = "visit_temples"
	ReqEarnPoints         RequirementKind = "earn_points" // single event
	ReqTotalPoints        RequirementKind = "total_points"
	ReqPrayerCount        RequirementKind = "prayer_count"
	ReqVisitAllDeityTypes RequirementKind = "visit_all_deity_types"
	ReqCheckInAllTemples  RequirementKind = "check_in_all_temples"
	ReqPerfectWeek        RequirementKind = "perfect_week"
	ReqEarlyBird          RequirementKind = "early_bird"
	ReqNightOwl           RequirementKind = "night_owl"
	ReqInviteFriends      RequirementKind = "invite_friends"
	ReqShareCheckIns      RequirementKind = "share_check_ins"
)

// Requirement is the tagged variant plus its magnitude. Value is the payload
// for counted variants; TargetValue and DisplayText are derived from the
// variant so they can never drift from it.
type Requirement struct {
	Kind  RequirementKind `json:"kind"`
	Value int             `json:"value"`
}

// TargetValue is the denominator for progress percentage.
func (r Requirement) TargetValue() int {
	switch r.Kind {
	case ReqFirstCheckIn:
		return 1
	case ReqPerfectWeek:
		return 7
	default:
		return r.Value
	}
}

// DisplayText renders a user-facing requirement description.
func (r Requirement) DisplayText() string {
	switch r.Kind {
	case ReqFirstCheckIn:
		return "完成首次打卡"
	case ReqConsecutiveDays:
		return fmt.Sprintf("连续打卡 %d 天", r.Value)
	case ReqTotalCheckIns:
		return fmt.Sprintf("累计打卡 %d 次", r.Value)
	case ReqVisitTemples:
		return fmt.Sprintf("参拜 %d 座不同寺庙", r.Value)
	case ReqEarnPoints:
		return fmt.Sprintf("单次打卡获得 %d 祈福值", r.Value)
	case ReqTotalPoints:
		return fmt.Sprintf("累计获得 %d 祈福值", r.Value)
	case ReqPrayerCount:
		return fmt.Sprintf("完成 %d 次祈愿打卡", r.Value)
	case ReqVisitAllDeityTypes:
		return "参拜所有类别的神明"
	case ReqCheckInAllTemples:
		return "在全部寺庙打卡"
	case ReqPerfectWeek:
		return "最近 7 天每天都有打卡"
	case ReqEarlyBird:
		return fmt.Sprintf("在清晨 6-9 点打卡 %d 次", r.Value)
	case ReqNightOwl:
		return fmt.Sprintf("在夜间 21-24 点打卡 %d 次", r.Value)
	case ReqInviteFriends:
		return fmt.Sprintf("邀请 %d 位好友", r.Value)
	case ReqShareCheckIns:
		return fmt.Sprintf("分享 %d 次打卡", r.Value)
	default:
		return ""
	}
}

// Definition is a catalog entry: immutable metadata plus the requirement.
// Per-user progress lives in models.Achievement rows keyed by Code.
type Definition struct {
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Icon         string      `json:"icon"`
	Category     string      `json:"category"`
	Rarity       string      `json:"rarity"`
	RewardPoints int         `json:"reward_points"`
	Requirement  Requirement `json:"requirement"`
}

// UnlockedAchievement pairs a freshly unlocked state with its definition for
// the orchestrator result.
type UnlockedAchievement struct {
	Definition Definition         `json:"definition"`
	State      models.Achievement `json:"state"`
}

// AchievementEngine recomputes achievement progress from statistics and the
// full check-in history. It holds the catalog and the temple registry facts
// (deity per temple, totals) the registry-wide requirements need.
type AchievementEngine struct {
	defs          []Definition
	deityByTemple map[uint]string
	templeCount   int
}

// NewAchievementEngine builds the engine over the temple registry. The
// all-temples and all-deities targets are resolved here so the catalog stays
// consistent with whatever registry was seeded.
func NewAchievementEngine(temples []models.Temple) *AchievementEngine {
	deities := map[string]struct{}{}
	deityByTemple := make(map[uint]string, len(temples))
	for _, t := range temples {
		deityByTemple[t.ID] = t.Deity
		if t.Deity != "" {
			deities[t.Deity] = struct{}{}
		}
	}

	e := &AchievementEngine{
		deityByTemple: deityByTemple,
		templeCount:   len(temples),
	}
	e.defs = buildCatalog(len(temples), len(deities))
	return e
}

// Definitions returns the catalog in display order.
func (e *AchievementEngine) Definitions() []Definition {
	return e.defs
}

// Recompute re-derives progress for every locked achievement from scratch
// and reports the ones that crossed their target this call. Unlocked entries
// are frozen: they are returned untouched no matter what the formulas would
// now report. Running it twice over the same inputs yields the same output.
func (e *AchievementEngine) Recompute(userID uint, states []models.Achievement, stats *models.CheckInStatistics, history []models.CheckInRecord, now time.Time) ([]models.Achievement, []UnlockedAchievement) {
	byCode := make(map[string]models.Achievement, len(states))
	for _, s := range states {
		byCode[s.Code] = s
	}

	updated := make([]models.Achievement, 0, len(e.defs))
	var newly []UnlockedAchievement

	for _, def := range e.defs {
		state, ok := byCode[def.Code]
		if !ok {
			state = models.Achievement{UserID: userID, Code: def.Code}
		}
		if state.Unlocked {
			updated = append(updated, state)
			continue
		}

		state.Progress = e.progress(def.Requirement, stats, history, now)
		target := def.Requirement.TargetValue()
		// A non-positive target cannot be earned progress against; treat it
		// as already satisfied instead of dividing by zero downstream.
		if target <= 0 || state.Progress >= target {
			state.Unlocked = true
			ts := now
			state.UnlockedAt = &ts
			newly = append(newly, UnlockedAchievement{Definition: def, State: state})
		}
		updated = append(updated, state)
	}

	return updated, newly
}

// ProgressPercent is the guarded display ratio in [0,1].
func ProgressPercent(progress, target int) float64 {
	if target <= 0 {
		return 1
	}
	p := float64(progress) / float64(target)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

func (e *AchievementEngine) progress(r Requirement, stats *models.CheckInStatistics, history []models.CheckInRecord, now time.Time) int {
	switch r.Kind {
	case ReqFirstCheckIn:
		if stats.TotalCheckIns > 0 {
			return 1
		}
		return 0
	case ReqConsecutiveDays:
		return stats.CurrentStreak
	case ReqTotalCheckIns:
		return stats.TotalCheckIns
	case ReqVisitTemples, ReqCheckInAllTemples:
		return len(stats.VisitedTemples)
	case ReqEarnPoints:
		best := 0
		for i := range history {
			if history[i].EarnedPoints > best {
				best = history[i].EarnedPoints
			}
		}
		if best > r.Value {
			return r.Value
		}
		return best
	case ReqTotalPoints:
		return stats.TotalPoints
	case ReqPrayerCount:
		n := 0
		for i := range history {
			if history[i].CheckInType == models.CheckInPrayer {
				n++
			}
		}
		return n
	case ReqVisitAllDeityTypes:
		seen := map[string]struct{}{}
		for i := range history {
			if d, ok := e.deityByTemple[history[i].TempleID]; ok && d != "" {
				seen[d] = struct{}{}
			}
		}
		return len(seen)
	case ReqPerfectWeek:
		if hasPerfectWeek(history, now) {
			return 7
		}
		return 0
	case ReqEarlyBird:
		return countByHour(history, 6, 9)
	case ReqNightOwl:
		return countByHour(history, 21, 24)
	case ReqInviteFriends, ReqShareCheckIns:
		// Social features are not wired into this core; progress stays zero.
		return 0
	default:
		return 0
	}
}

// hasPerfectWeek reports whether each of the trailing 7 calendar days
// (including today) has at least one check-in. All or nothing.
func hasPerfectWeek(history []models.CheckInRecord, now time.Time) bool {
	days := map[time.Time]struct{}{}
	for i := range history {
		days[startOfDay(history[i].CheckInTime)] = struct{}{}
	}
	for offset := 0; offset < 7; offset++ {
		day := startOfDay(now.AddDate(0, 0, -offset))
		if _, ok := days[day]; !ok {
			return false
		}
	}
	return true
}

// countByHour counts records whose local hour is in [from, to).
func countByHour(history []models.CheckInRecord, from, to int) int {
	n := 0
	for i := range history {
		if h := history[i].CheckInTime.Hour(); h >= from && h < to {
			n++
		}
	}
	return n
}

func buildCatalog(templeCount, deityCount int) []Definition {
	return []Definition{
		{Code: "first_steps", RewardPoints: 10, Name: "初来乍到", Description: "完成你的第一次寺庙打卡", Icon: "footprints", Category: "milestone", Rarity: "common",
			Requirement: Requirement{Kind: ReqFirstCheckIn}},
		{Code: "streak_3", RewardPoints: 15, Name: "三日之约", Description: "连续三天坚持打卡", Icon: "flame", Category: "streak", Rarity: "common",
			Requirement: Requirement{Kind: ReqConsecutiveDays, Value: 3}},
		{Code: "streak_7", RewardPoints: 30, Name: "七日精进", Description: "连续七天坚持打卡", Icon: "flame", Category: "streak", Rarity: "rare",
			Requirement: Requirement{Kind: ReqConsecutiveDays, Value: 7}},
		{Code: "streak_30", RewardPoints: 100, Name: "月满功德", Description: "连续三十天坚持打卡", Icon: "moon", Category: "streak", Rarity: "epic",
			Requirement: Requirement{Kind: ReqConsecutiveDays, Value: 30}},
		{Code: "streak_100", RewardPoints: 300, Name: "百日筑基", Description: "连续一百天坚持打卡", Icon: "mountain", Category: "streak", Rarity: "legendary",
			Requirement: Requirement{Kind: ReqConsecutiveDays, Value: 100}},
		{Code: "checkins_10", RewardPoints: 20, Name: "常客", Description: "累计打卡十次", Icon: "stamp", Category: "milestone", Rarity: "common",
			Requirement: Requirement{Kind: ReqTotalCheckIns, Value: 10}},
		{Code: "checkins_50", RewardPoints: 60, Name: "虔心向佛", Description: "累计打卡五十次", Icon: "stamp", Category: "milestone", Rarity: "rare",
			Requirement: Requirement{Kind: ReqTotalCheckIns, Value: 50}},
		{Code: "checkins_365", RewardPoints: 365, Name: "风雨无阻", Description: "累计打卡三百六十五次", Icon: "calendar", Category: "milestone", Rarity: "legendary",
			Requirement: Requirement{Kind: ReqTotalCheckIns, Value: 365}},
		{Code: "temples_5", RewardPoints: 25, Name: "云游四方", Description: "参拜五座不同的寺庙", Icon: "map", Category: "explore", Rarity: "common",
			Requirement: Requirement{Kind: ReqVisitTemples, Value: 5}},
		{Code: "temples_10", RewardPoints: 50, Name: "遍访名刹", Description: "参拜十座不同的寺庙", Icon: "map", Category: "explore", Rarity: "rare",
			Requirement: Requirement{Kind: ReqVisitTemples, Value: 10}},
		{Code: "big_blessing", RewardPoints: 30, Name: "鸿运当头", Description: "单次打卡获得五十点祈福值", Icon: "sparkles", Category: "milestone", Rarity: "rare",
			Requirement: Requirement{Kind: ReqEarnPoints, Value: 50}},
		{Code: "points_500", RewardPoints: 50, Name: "小有功德", Description: "累计五百点祈福值", Icon: "coins", Category: "milestone", Rarity: "common",
			Requirement: Requirement{Kind: ReqTotalPoints, Value: 500}},
		{Code: "points_2000", RewardPoints: 150, Name: "功德圆满", Description: "累计两千点祈福值", Icon: "coins", Category: "milestone", Rarity: "epic",
			Requirement: Requirement{Kind: ReqTotalPoints, Value: 2000}},
		{Code: "prayers_10", RewardPoints: 20, Name: "心诚则灵", Description: "完成十次祈愿打卡", Icon: "hands", Category: "devotion", Rarity: "common",
			Requirement: Requirement{Kind: ReqPrayerCount, Value: 10}},
		{Code: "prayers_100", RewardPoints: 120, Name: "念念不忘", Description: "完成一百次祈愿打卡", Icon: "hands", Category: "devotion", Rarity: "epic",
			Requirement: Requirement{Kind: ReqPrayerCount, Value: 100}},
		{Code: "all_deities", RewardPoints: 120, Name: "诸神护佑", Description: "参拜所有类别的神明", Icon: "shrine", Category: "explore", Rarity: "epic",
			Requirement: Requirement{Kind: ReqVisitAllDeityTypes, Value: deityCount}},
		{Code: "all_temples", RewardPoints: 200, Name: "功行圆成", Description: "在全部寺庙留下足迹", Icon: "globe", Category: "explore", Rarity: "legendary",
			Requirement: Requirement{Kind: ReqCheckInAllTemples, Value: templeCount}},
		{Code: "perfect_week", RewardPoints: 70, Name: "完美一周", Description: "最近七天每天都有打卡", Icon: "star", Category: "streak", Rarity: "rare",
			Requirement: Requirement{Kind: ReqPerfectWeek}},
		{Code: "early_bird", RewardPoints: 40, Name: "晨钟", Description: "在清晨六点到九点之间打卡十次", Icon: "sunrise", Category: "time", Rarity: "rare",
			Requirement: Requirement{Kind: ReqEarlyBird, Value: 10}},
		{Code: "night_owl", RewardPoints: 40, Name: "暮鼓", Description: "在晚间九点之后打卡十次", Icon: "sunset", Category: "time", Rarity: "rare",
			Requirement: Requirement{Kind: ReqNightOwl, Value: 10}},
		{Code: "invite_3", RewardPoints: 30, Name: "广结善缘", Description: "邀请三位好友一同祈福", Icon: "users", Category: "social", Rarity: "rare",
			Requirement: Requirement{Kind: ReqInviteFriends, Value: 3}},
		{Code: "share_10", RewardPoints: 20, Name: "法喜分享", Description: "分享十次打卡", Icon: "share", Category: "social", Rarity: "common",
			Requirement: Requirement{Kind: ReqShareCheckIns, Value: 10}},
	}
}
