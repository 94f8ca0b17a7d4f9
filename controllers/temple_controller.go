package controllers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/qifu-app/qifu/engine"
	"github.com/qifu-app/qifu/models"
	"github.com/qifu-app/qifu/utils"
)

// TempleController serves the read-only temple catalog.
type TempleController struct {
	db *gorm.DB
}

// NewTempleController creates a new controller instance.
func NewTempleController(db *gorm.DB) *TempleController {
	return &TempleController{db: db}
}

// List returns the whole catalog. Cached: the catalog only changes on reseed.
func (t *TempleController) List(ctx *gin.Context) {
	if b, ok := utils.CacheGetBytes("cache:temples:all"); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var temples []models.Temple
	if err := t.db.Order("id ASC").Find(&temples).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load temples")
		return
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"items": temples}}
	utils.CacheSetJSON("cache:temples:all", wrapper, time.Hour)
	utils.Success(ctx, gin.H{"items": temples})
}

// Get returns one catalog entry by id.
func (t *TempleController) Get(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	if idStr == "" {
		utils.Error(ctx, http.StatusBadRequest, 40040, "missing temple id")
		return
	}

	var temple models.Temple
	if err := t.db.First(&temple, idStr).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40420, "temple not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load temple")
		return
	}

	utils.Success(ctx, temple)
}

// Nearby returns the catalog ordered by distance from the given coordinate,
// with the distance in meters attached to each entry.
func (t *TempleController) Nearby(ctx *gin.Context) {
	lat, err1 := strconv.ParseFloat(ctx.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(ctx.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "lat and lng query parameters required")
		return
	}

	limit := 10
	if v := strings.TrimSpace(ctx.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	var temples []models.Temple
	if err := t.db.Find(&temples).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load temples")
		return
	}

	user := engine.Coordinate{Latitude: lat, Longitude: lng}
	type nearbyTemple struct {
		models.Temple
		DistanceMeters int  `json:"distance_meters"`
		InRange        bool `json:"in_range"`
	}
	items := make([]nearbyTemple, 0, len(temples))
	for _, temple := range temples {
		d := engine.DistanceMeters(user, engine.Coordinate{Latitude: temple.Latitude, Longitude: temple.Longitude})
		items = append(items, nearbyTemple{
			Temple:         temple,
			DistanceMeters: int(d + 0.5),
			InRange:        d <= temple.CheckInRadius,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].DistanceMeters < items[j].DistanceMeters })
	if len(items) > limit {
		items = items[:limit]
	}

	utils.Success(ctx, gin.H{"items": items})
}
