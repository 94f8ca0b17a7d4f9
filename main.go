package main

import (
	"github.com/qifu-app/qifu/config"
	"github.com/qifu-app/qifu/engine"
	"github.com/qifu-app/qifu/models"
	"github.com/qifu-app/qifu/routes"
	"github.com/qifu-app/qifu/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Temple{},
		&models.CheckInRecord{},
		&models.CheckInStatistics{},
		&models.CloudPassport{},
		&models.Achievement{},
	)

	if n, err := config.SeedTemples(db); err != nil {
		utils.Sugar.Warnf("temple seed skipped: %v", err)
	} else if n > 0 {
		utils.Sugar.Infof("seeded %d temples", n)
		utils.InvalidateByPrefix("cache:temples:")
	}

	var temples []models.Temple
	if err := db.Find(&temples).Error; err != nil {
		utils.Sugar.Fatalf("failed to load temples: %v", err)
	}

	achievements := engine.NewAchievementEngine(temples)
	orch := engine.NewOrchestrator(achievements)

	r := routes.SetupRouter(db, orch)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
