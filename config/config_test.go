package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, "release", c.GinMode)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, "data/temples.json", c.TempleSeedPath)
	assert.Equal(t, 50, c.LeaderboardSize)
	assert.Equal(t, "qifu", c.DBName)
	assert.Equal(t, 6379, c.RedisPort)
	assert.Equal(t, "info", c.LogLevel)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	c := AppConfig{AppPort: "9000", RateLimitPerMinute: 10, DBName: "qifu_test"}
	applyDefaults(&c)

	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, 10, c.RateLimitPerMinute)
	assert.Equal(t, "qifu_test", c.DBName)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t,
		[]string{"https://a.example", "https://b.example"},
		splitAndTrim(" https://a.example , https://b.example ,, "))
	assert.Empty(t, splitAndTrim(" , "))
}
