package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qifu-app/qifu/config"
	"github.com/qifu-app/qifu/models"
	"github.com/qifu-app/qifu/utils"
)

// LeaderboardController serves the points ranking. The redis sorted set is
// the fast path; when it is empty (fresh redis) the board is rebuilt from the
// statistics table.
type LeaderboardController struct {
	db *gorm.DB
}

// NewLeaderboardController creates a new controller instance.
func NewLeaderboardController(db *gorm.DB) *LeaderboardController {
	return &LeaderboardController{db: db}
}

type leaderboardRow struct {
	Rank     int    `json:"rank"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar_url"`
	Points   int64  `json:"points"`
}

// Top returns the top-N users by total points.
func (l *LeaderboardController) Top(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:leaderboard:top"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	size := config.Get().LeaderboardSize
	entries, err := utils.LeaderboardTop(size)
	if err != nil || len(entries) == 0 {
		entries = l.rebuild(size)
	}

	ids := make([]uint, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	var users []models.User
	if len(ids) > 0 {
		if err := l.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load users")
			return
		}
	}
	byID := make(map[uint]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	rows := make([]leaderboardRow, 0, len(entries))
	for _, e := range entries {
		u, ok := byID[e.UserID]
		if !ok {
			continue
		}
		rows = append(rows, leaderboardRow{
			Rank:     len(rows) + 1,
			UserID:   e.UserID,
			Username: u.Username,
			Avatar:   u.AvatarURL,
			Points:   e.Points,
		})
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"items": rows}}
	utils.CacheSetJSON("cache:leaderboard:top", wrapper, 5*time.Minute)
	utils.Success(ctx, gin.H{"items": rows})
}

// rebuild restores the sorted set from CheckInStatistics and returns the top
// rows directly from the database.
func (l *LeaderboardController) rebuild(size int) []utils.LeaderboardEntry {
	var stats []models.CheckInStatistics
	if err := l.db.Order("total_points DESC").Limit(size).Find(&stats).Error; err != nil {
		return nil
	}
	entries := make([]utils.LeaderboardEntry, 0, len(stats))
	for i, s := range stats {
		utils.LeaderboardSet(s.UserID, s.TotalPoints)
		entries = append(entries, utils.LeaderboardEntry{
			Rank:   i + 1,
			UserID: s.UserID,
			Points: int64(s.TotalPoints),
		})
	}
	return entries
}
