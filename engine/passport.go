package engine

import (
	"time"

	"github.com/qifu-app/qifu/models"
)

// PointsNeededForLevel is the threshold to leave the given level. Linear on
// purpose — the product wants steady, predictable progression.
func PointsNeededForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return level * 100
}

// titleBrackets maps level ranges to display titles. Upper bound is
// inclusive; the last bracket is unbounded.
var titleBrackets = []struct {
	upTo  int
	title string
}{
	{5, "初诣者"},
	{10, "参拜客"},
	{20, "香客"},
	{30, "祈愿人"},
	{40, "修行者"},
	{50, "修行者"},
	{60, "居士"},
	{70, "护法"},
	{80, "法师"},
	{90, "长老"},
	{99, "方丈"},
}

// TitleForLevel derives the display title from the level. It is recomputed
// on every level change, never stored independently of Level.
func TitleForLevel(level int) string {
	for _, b := range titleBrackets {
		if level <= b.upTo {
			return b.title
		}
	}
	return "云游大师"
}

// AddPoints credits delta to the passport and consumes the entry level's
// threshold until the remainder fits. A single large delta can cross several
// levels in one call, which is why this loops instead of dividing once. A
// 250-point credit to a fresh level-1 passport lands on level 3 with 50
// points carried.
func AddPoints(p *models.CloudPassport, delta int) {
	if delta < 0 {
		delta = 0
	}
	if p.Level < 1 {
		p.Level = 1
	}
	p.CurrentPoints += delta
	p.TotalPoints += delta
	need := PointsNeededForLevel(p.Level)
	for p.CurrentPoints >= need {
		p.CurrentPoints -= need
		p.Level++
	}
	p.Title = TitleForLevel(p.Level)
}

// UpdateCheckInStreak maintains the passport's own streak counter on
// start-of-day granularity. It mirrors the statistics fold's streak branch;
// both counters are kept deliberately and tested for parity.
func UpdateCheckInStreak(p *models.CloudPassport, now time.Time) {
	today := startOfDay(now)
	switch {
	case p.LastCheckInDay == nil:
		p.CheckInStreak = 1
	case startOfDay(*p.LastCheckInDay).Equal(today):
		return
	case calendarDaysBetween(*p.LastCheckInDay, now) == 1:
		p.CheckInStreak++
	default:
		p.CheckInStreak = 1
	}
	p.LastCheckInDay = &today
}
