package utils

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard:points"

// LeaderboardEntry is one ranked row resolved from the redis sorted set.
type LeaderboardEntry struct {
	Rank   int   `json:"rank"`
	UserID uint  `json:"user_id"`
	Points int64 `json:"points"`
}

// LeaderboardAdd credits points to a user's sorted-set score. Best effort:
// the leaderboard is a projection of CheckInStatistics.TotalPoints and can be
// rebuilt, so redis failures only log.
func LeaderboardAdd(userID uint, points int) {
	rc := GetRedis()
	if rc == nil || points <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.ZIncrBy(ctx, leaderboardKey, float64(points), strconv.Itoa(int(userID))).Err(); err != nil {
		if Sugar != nil {
			Sugar.Warnf("leaderboard update failed user=%d err=%v", userID, err)
		}
	}
}

// LeaderboardSet overwrites a user's score, used when rebuilding from the
// statistics table.
func LeaderboardSet(userID uint, points int) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = rc.ZAdd(ctx, leaderboardKey, redis.Z{
		Score:  float64(points),
		Member: strconv.Itoa(int(userID)),
	}).Err()
}

// LeaderboardTop returns the top-n entries, highest score first.
func LeaderboardTop(n int) ([]LeaderboardEntry, error) {
	rc := GetRedis()
	if rc == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	zs, err := rc.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		id, err := strconv.Atoi(z.Member.(string))
		if err != nil {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Rank:   i + 1,
			UserID: uint(id),
			Points: int64(z.Score),
		})
	}
	return entries, nil
}
