package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qifu-app/qifu/engine"
	"github.com/qifu-app/qifu/models"
	"github.com/qifu-app/qifu/utils"
)

// PassportController serves the user's progression state: cloud passport,
// statistics, and achievement progress.
type PassportController struct {
	db   *gorm.DB
	orch *engine.Orchestrator
}

// NewPassportController creates a new controller instance.
func NewPassportController(db *gorm.DB, orch *engine.Orchestrator) *PassportController {
	return &PassportController{db: db, orch: orch}
}

// GetPassport returns the leveling ledger, creating it lazily.
func (p *PassportController) GetPassport(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	passport, err := loadOrCreatePassport(p.db, userID, false)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load passport")
		return
	}

	needed := engine.PointsNeededForLevel(passport.Level)
	utils.Success(ctx, gin.H{
		"passport":          passport,
		"points_to_next":    needed - passport.CurrentPoints,
		"level_threshold":   needed,
	})
}

// GetStatistics returns the per-user aggregate.
func (p *PassportController) GetStatistics(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	stats, err := loadOrCreateStatistics(p.db, userID, false)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load statistics")
		return
	}

	utils.Success(ctx, stats)
}

// RebuildStatistics re-derives the aggregate by replaying the user's full
// check-in history in order. Recovery path for an aggregate that drifted
// from the record log.
func (p *PassportController) RebuildStatistics(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var history []models.CheckInRecord
	if err := p.db.Where("user_id = ?", userID).Order("check_in_time ASC").Find(&history).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to load history")
		return
	}

	stats, err := loadOrCreateStatistics(p.db, userID, false)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load statistics")
		return
	}

	rebuilt := engine.ReplayHistory(userID, history)
	rebuilt.ID = stats.ID
	rebuilt.CreatedAt = stats.CreatedAt
	if err := p.db.Save(&rebuilt).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to save statistics")
		return
	}

	utils.Success(ctx, &rebuilt)
}

// ListAchievements merges the catalog with the user's progress rows.
func (p *PassportController) ListAchievements(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var states []models.Achievement
	if err := p.db.Where("user_id = ?", userID).Find(&states).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to load achievements")
		return
	}
	byCode := make(map[string]models.Achievement, len(states))
	for _, s := range states {
		byCode[s.Code] = s
	}

	defs := p.orch.Achievements().Definitions()
	type achievementView struct {
		engine.Definition
		Target     int     `json:"target"`
		Display    string  `json:"requirement_text"`
		Progress   int     `json:"progress"`
		Percent    float64 `json:"percent"`
		Unlocked   bool    `json:"unlocked"`
		UnlockedAt any     `json:"unlocked_at,omitempty"`
	}

	items := make([]achievementView, 0, len(defs))
	unlockedCount := 0
	for _, def := range defs {
		state := byCode[def.Code]
		if state.Unlocked {
			unlockedCount++
		}
		items = append(items, achievementView{
			Definition: def,
			Target:     def.Requirement.TargetValue(),
			Display:    def.Requirement.DisplayText(),
			Progress:   state.Progress,
			Percent:    engine.ProgressPercent(state.Progress, def.Requirement.TargetValue()),
			Unlocked:   state.Unlocked,
			UnlockedAt: state.UnlockedAt,
		})
	}

	utils.Success(ctx, gin.H{
		"items":          items,
		"unlocked_count": unlockedCount,
		"total":          len(defs),
	})
}
