package config

import (
	"encoding/json"
	"os"

	"gorm.io/gorm"

	"github.com/qifu-app/qifu/models"
)

// SeedTemples loads the temple catalog from the configured JSON file when the
// table is empty. The catalog is reference data: rows are inserted once and
// never modified by the application.
func SeedTemples(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.Temple{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	path := Get().TempleSeedPath
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	var temples []models.Temple
	if err := json.Unmarshal(raw, &temples); err != nil {
		return 0, err
	}

	valid := temples[:0]
	for _, t := range temples {
		if t.Valid() {
			valid = append(valid, t)
		}
	}
	if len(valid) == 0 {
		return 0, nil
	}

	if err := db.Create(&valid).Error; err != nil {
		return 0, err
	}
	return len(valid), nil
}
