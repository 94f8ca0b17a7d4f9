package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qifu-app/qifu/engine"
	"github.com/qifu-app/qifu/models"
	"github.com/qifu-app/qifu/utils"
)

// CheckInController binds the check-in pipeline to HTTP. All rule decisions
// live in the engine; this layer loads state, runs the orchestrator inside a
// transaction, and persists the outcome.
type CheckInController struct {
	db   *gorm.DB
	orch *engine.Orchestrator
}

// NewCheckInController creates a new controller instance.
func NewCheckInController(db *gorm.DB, orch *engine.Orchestrator) *CheckInController {
	return &CheckInController{db: db, orch: orch}
}

type checkInRequest struct {
	TempleID   uint    `json:"temple_id"`
	TempleCode string  `json:"temple_code"` // scanned QR/NFC identifier
	Latitude   float64 `json:"latitude" binding:"required"`
	Longitude  float64 `json:"longitude" binding:"required"`
	Prayer     bool    `json:"prayer"`
	PrayerNote string  `json:"prayer_note"`
}

// Create handles a check-in attempt. Validation failure responds 400 with the
// reason and writes nothing; success persists the record, aggregates,
// passport, and achievement state atomically.
func (c *CheckInController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req checkInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}
	if req.TempleID == 0 && strings.TrimSpace(req.TempleCode) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "temple_id or temple_code required")
		return
	}

	temple, err := c.lookupTemple(req.TempleID, strings.TrimSpace(req.TempleCode))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "temple not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to load temple")
		return
	}

	note := utils.Sanitize(strings.TrimSpace(req.PrayerNote))
	if rs := []rune(note); len(rs) > 255 {
		note = string(rs[:255])
	}

	attempt := engine.Attempt{
		UserID:     userID,
		Temple:     *temple,
		UserCoord:  engine.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude},
		Prayer:     req.Prayer,
		PrayerNote: note,
		Now:        time.Now(),
	}

	var result *engine.CheckInResult
	err = c.db.Transaction(func(tx *gorm.DB) error {
		stats, err := loadOrCreateStatistics(tx, userID, true)
		if err != nil {
			return err
		}
		passport, err := loadOrCreatePassport(tx, userID, true)
		if err != nil {
			return err
		}

		var states []models.Achievement
		if err := tx.Where("user_id = ?", userID).Find(&states).Error; err != nil {
			return err
		}

		var history []models.CheckInRecord
		if err := tx.Where("user_id = ?", userID).Order("check_in_time ASC").Find(&history).Error; err != nil {
			return err
		}
		var last *models.CheckInRecord
		if n := len(history); n > 0 {
			last = &history[n-1]
		}

		state := &engine.UserProgressionState{
			Statistics:   stats,
			Passport:     passport,
			Achievements: states,
			LastCheckIn:  last,
			History:      history,
		}

		result, err = c.orch.ResolveCheckInAttempt(attempt, state)
		if err != nil {
			return err
		}

		if err := tx.Create(result.Record).Error; err != nil {
			return err
		}
		if err := tx.Save(stats).Error; err != nil {
			return err
		}
		if err := tx.Save(passport).Error; err != nil {
			return err
		}
		for i := range result.Achievements {
			a := &result.Achievements[i]
			if a.ID == 0 {
				if err := tx.Create(a).Error; err != nil {
					return err
				}
			} else if err := tx.Save(a).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			utils.CheckInRejectionsTotal.WithLabelValues(string(verr.Kind)).Inc()
			utils.Error(ctx, http.StatusBadRequest, 40022, verr.Message)
			return
		}
		utils.Sugar.Errorf("check-in failed user=%d temple=%d err=%v", userID, temple.ID, err)
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to record check-in")
		return
	}

	utils.CheckInsTotal.WithLabelValues(string(result.Record.CheckInType)).Inc()
	for _, u := range result.NewlyUnlocked {
		utils.AchievementUnlocksTotal.WithLabelValues(u.Definition.Code).Inc()
	}
	utils.LeaderboardAdd(userID, result.Record.EarnedPoints)

	utils.Success(ctx, gin.H{
		"record":         result.Record,
		"statistics":     result.Statistics,
		"passport":       result.Passport,
		"newly_unlocked": result.NewlyUnlocked,
	})
}

// List returns the user's own check-in history, newest first.
func (c *CheckInController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := 1, 20
	if v := strings.TrimSpace(ctx.Query("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(ctx.Query("page_size")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}

	var total int64
	if err := c.db.Model(&models.CheckInRecord{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to count check-ins")
		return
	}

	var records []models.CheckInRecord
	if err := c.db.Where("user_id = ?", userID).
		Order("check_in_time DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&records).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to retrieve check-ins")
		return
	}

	utils.Success(ctx, gin.H{
		"items": records,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
		},
	})
}

// Status returns the streak summary and whether the user checked in today.
func (c *CheckInController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	stats, err := loadOrCreateStatistics(c.db, userID, false)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load statistics")
		return
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var today int64
	if err := c.db.Model(&models.CheckInRecord{}).
		Where("user_id = ? AND check_in_time >= ?", userID, todayStart).
		Count(&today).Error; err != nil {
		today = 0
	}

	utils.Success(ctx, gin.H{
		"current_streak":   stats.CurrentStreak,
		"longest_streak":   stats.LongestStreak,
		"total_check_ins":  stats.TotalCheckIns,
		"total_points":     stats.TotalPoints,
		"checked_in_today": today > 0,
		"last_check_in_at": stats.LastCheckInAt,
	})
}

func (c *CheckInController) lookupTemple(id uint, code string) (*models.Temple, error) {
	var temple models.Temple
	q := c.db
	if id != 0 {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("code = ?", code)
	}
	if err := q.First(&temple).Error; err != nil {
		return nil, err
	}
	return &temple, nil
}

// loadOrCreateStatistics fetches the per-user aggregate, creating the row on
// first use. With forUpdate the row is locked so concurrent check-ins for the
// same user serialize at the database as well.
func loadOrCreateStatistics(db *gorm.DB, userID uint, forUpdate bool) (*models.CheckInStatistics, error) {
	q := db
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var stats models.CheckInStatistics
	err := q.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.CheckInStatistics{UserID: userID}
		if err := db.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func loadOrCreatePassport(db *gorm.DB, userID uint, forUpdate bool) (*models.CloudPassport, error) {
	q := db
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var passport models.CloudPassport
	err := q.Where("user_id = ?", userID).First(&passport).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		passport = models.CloudPassport{UserID: userID, Level: 1, Title: engine.TitleForLevel(1)}
		if err := db.Create(&passport).Error; err != nil {
			return nil, err
		}
		return &passport, nil
	}
	if err != nil {
		return nil, err
	}
	return &passport, nil
}
