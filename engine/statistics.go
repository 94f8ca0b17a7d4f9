package engine

import (
	"time"

	"github.com/qifu-app/qifu/models"
)

// ApplyCheckIn folds one record into the per-user aggregate. Records must be
// applied in chronological arrival order: the streak branch compares against
// the previous LastCheckInAt, so the fold is not commutative. It never
// rejects input — validation happened before the record was created.
func ApplyCheckIn(stats *models.CheckInStatistics, rec *models.CheckInRecord) {
	stats.TotalCheckIns++
	stats.TotalPoints += rec.EarnedPoints
	stats.VisitedTemples.Add(rec.TempleID)

	switch {
	case stats.LastCheckInAt == nil:
		stats.CurrentStreak = 1
	case sameCalendarDay(*stats.LastCheckInAt, rec.CheckInTime):
		// Another temple on the same day neither advances nor resets.
	case calendarDaysBetween(*stats.LastCheckInAt, rec.CheckInTime) == 1:
		stats.CurrentStreak++
	default:
		// A gap of two or more days, or an out-of-order record.
		stats.CurrentStreak = 1
	}
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}

	t := rec.CheckInTime
	stats.LastCheckInAt = &t

	if stats.MonthlyCounts == nil {
		stats.MonthlyCounts = models.StringIntMap{}
	}
	stats.MonthlyCounts[t.Format("2006-01")]++

	if stats.TempleCounts == nil {
		stats.TempleCounts = models.UintIntMap{}
	}
	stats.TempleCounts[rec.TempleID]++
}

// ReplayHistory rebuilds the aggregate from scratch by folding every record
// in order. Used by tests and the admin rebuild path; records must already be
// sorted by check-in time.
func ReplayHistory(userID uint, history []models.CheckInRecord) models.CheckInStatistics {
	stats := models.CheckInStatistics{UserID: userID}
	for i := range history {
		ApplyCheckIn(&stats, &history[i])
	}
	return stats
}

// TodayCheckIns counts records on the same calendar day as now. Convenience
// for the status endpoint.
func TodayCheckIns(history []models.CheckInRecord, now time.Time) int {
	n := 0
	for i := range history {
		if sameCalendarDay(history[i].CheckInTime, now) {
			n++
		}
	}
	return n
}
