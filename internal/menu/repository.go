package menu

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
)

// --- Redis-specific Definitions ---
// 这些定义描述了排行榜缓存所管理的外部动态数据结构

const (
	// StatsKey 是一个Redis Hash，存储所有菜品的聚合统计数据
	// Field: 菜品ID的十进制字符串
	// Value: DishStats 结构体的JSON序列化字符串
	StatsKey = "menu:stats"

	// RankingKey 是一个Redis Sorted Set，按贝叶斯分实时排序菜品
	RankingKey = "menu:ranking"
)

// DishStats 定义了在Redis menu:stats Hash中存储的菜品动态数据
type DishStats struct {
	Name         string   `json:"name"`
	RestaurantID uint     `json:"restaurantId"`
	Bayesian     float64  `json:"bayesian"`
	Weighted     float64  `json:"weighted"`
	Count        int64    `json:"count"`
	Volatility   float64  `json:"volatility"`
	Confidence   float64  `json:"confidence"`
	Tags         []string `json:"tags"`
}

// UpdateLeaderboard 在一次评分提交成功后，把菜品最新的聚合统计写入Redis排行榜。
// 两个并发写入者可能短暂互相覆盖，但每次写入自身都是一致的，排行榜接受last-writer-wins。
// Redis不健康时静默跳过，排行榜读取方会走数据库降级路径。
func UpdateLeaderboard(item *MenuItem) error {
	if !database.IsRedisHealthy() {
		return nil
	}

	stats := DishStats{
		Name:         item.Name,
		RestaurantID: item.RestaurantID,
		Bayesian:     item.RatingBayesian,
		Weighted:     item.RatingWeighted,
		Count:        item.RatingCount,
		Volatility:   item.VolatilityStdDev,
		Confidence:   item.ConfidenceScore,
		Tags:         parseTags(item.EmojiTags),
	}
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("无法序列化菜品统计: %w", err)
	}

	member := strconv.FormatUint(uint64(item.ID), 10)

	// 用事务管道保证Hash和Sorted Set的联合更新原子生效
	pipe := database.RDB.TxPipeline()
	pipe.HSet(database.Ctx, StatsKey, member, statsJSON)
	pipe.ZAdd(database.Ctx, RankingKey, redis.Z{Score: item.RatingBayesian, Member: member})
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("无法更新菜品排行榜缓存: %w", err)
	}
	return nil
}

// rankedFromRedis 从Redis读取按贝叶斯分从高到低的前limit个菜品。
func rankedFromRedis(limit int64) ([]RankedDishDTO, error) {
	// 1. 从Sorted Set获取菜品ID，按分数从高到低排序
	members, err := database.RDB.ZRevRange(database.Ctx, RankingKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("无法从Redis获取排行榜ID: %w", err)
	}
	if len(members) == 0 {
		return []RankedDishDTO{}, nil
	}

	// 2. 一次性获取这些菜品的统计数据
	statsJSONs, err := database.RDB.HMGet(database.Ctx, StatsKey, members...).Result()
	if err != nil {
		return nil, fmt.Errorf("无法从Redis获取菜品统计数据: %w", err)
	}

	// 3. 组合成DTO列表
	ranked := make([]RankedDishDTO, 0, len(members))
	for i, member := range members {
		if statsJSONs[i] == nil {
			continue
		}
		id, parseErr := strconv.ParseUint(member, 10, 64)
		if parseErr != nil {
			continue
		}
		var stats DishStats
		_ = json.Unmarshal([]byte(statsJSONs[i].(string)), &stats)
		ranked = append(ranked, RankedDishDTO{
			ID:    uint(id),
			Stats: stats,
		})
	}
	return ranked, nil
}

// parseTags 把EmojiTags列中的JSON数组字符串还原为切片，解析失败时返回空集。
func parseTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return []string{}
	}
	return tags
}
