package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qifu-app/qifu/models"
)

// UserProgressionState bundles everything the pipeline reads and writes for
// one user. The caller loads it, hands it in by reference, and persists the
// mutated pieces afterwards. History is append-only and never mutated here.
type UserProgressionState struct {
	Statistics   *models.CheckInStatistics
	Passport     *models.CloudPassport
	Achievements []models.Achievement
	LastCheckIn  *models.CheckInRecord
	History      []models.CheckInRecord
}

// Attempt is one prospective check-in.
type Attempt struct {
	UserID     uint
	Temple     models.Temple
	UserCoord  Coordinate
	Prayer     bool
	PrayerNote string
	Now        time.Time
}

// CheckInResult is the consolidated outcome of a successful attempt.
type CheckInResult struct {
	Record        *models.CheckInRecord
	Statistics    *models.CheckInStatistics
	Passport      *models.CloudPassport
	Achievements  []models.Achievement
	NewlyUnlocked []UnlockedAchievement
}

// Orchestrator sequences validate → fold statistics → credit passport →
// recompute achievements for one attempt. It is the only component with
// ordering responsibility. Attempts for the same user are serialized with a
// per-user lock: the statistics fold is order-dependent and two interleaved
// attempts would corrupt streak and duplicate-day detection.
type Orchestrator struct {
	achievements *AchievementEngine

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewOrchestrator wires the pipeline over the given achievement engine.
func NewOrchestrator(achievements *AchievementEngine) *Orchestrator {
	return &Orchestrator{
		achievements: achievements,
		locks:        map[uint]*sync.Mutex{},
	}
}

// Achievements exposes the engine for catalog reads.
func (o *Orchestrator) Achievements() *AchievementEngine {
	return o.achievements
}

// ResolveCheckInAttempt runs the whole pipeline for one attempt. On a
// validation failure it returns the *ValidationError and mutates nothing:
// the attempt is all-or-nothing.
func (o *Orchestrator) ResolveCheckInAttempt(attempt Attempt, state *UserProgressionState) (*CheckInResult, error) {
	lock := o.userLock(attempt.UserID)
	lock.Lock()
	defer lock.Unlock()

	if verr := Validate(ValidationInput{
		Temple:      attempt.Temple,
		UserCoord:   attempt.UserCoord,
		LastCheckIn: state.LastCheckIn,
		Now:         attempt.Now,
	}); verr != nil {
		return nil, verr
	}

	c := DetermineCheckInType(state.Statistics, attempt.Temple, attempt.Now, attempt.Prayer)
	points := CalculatePoints(attempt.Temple.BlessPoints, c)

	record := &models.CheckInRecord{
		ID:              uuid.NewString(),
		UserID:          attempt.UserID,
		TempleID:        attempt.Temple.ID,
		CheckInTime:     attempt.Now,
		EarnedPoints:    points,
		CheckInType:     c.Type,
		IsConsecutive:   c.IsConsecutive,
		ConsecutiveDays: c.ConsecutiveDays,
		PrayerNote:      attempt.PrayerNote,
	}

	ApplyCheckIn(state.Statistics, record)
	AddPoints(state.Passport, points)
	UpdateCheckInStreak(state.Passport, attempt.Now)

	history := append(state.History, *record)
	updated, newly := o.achievements.Recompute(attempt.UserID, state.Achievements, state.Statistics, history, attempt.Now)
	state.Achievements = updated

	return &CheckInResult{
		Record:        record,
		Statistics:    state.Statistics,
		Passport:      state.Passport,
		Achievements:  updated,
		NewlyUnlocked: newly,
	}, nil
}

func (o *Orchestrator) userLock(userID uint) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[userID] = lock
	}
	return lock
}
