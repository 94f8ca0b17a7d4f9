package utils

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CheckInsTotal counts successful check-ins by classification.
	CheckInsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qifu_check_ins_total",
		Help: "Successful check-ins by classification.",
	}, []string{"type"})

	// CheckInRejectionsTotal counts validation failures by reason.
	CheckInRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qifu_check_in_rejections_total",
		Help: "Rejected check-in attempts by failure kind.",
	}, []string{"reason"})

	// AchievementUnlocksTotal counts achievement unlock events.
	AchievementUnlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qifu_achievement_unlocks_total",
		Help: "Achievement unlocks by code.",
	}, []string{"code"})
)

// MetricsHandler exposes the prometheus registry for the /metrics route.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
