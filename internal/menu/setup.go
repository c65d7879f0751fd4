package menu

import (
	"fmt"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
)

// PrimeDB 负责初始化menu模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Restaurant{}, &MenuItem{}); err != nil {
		return fmt.Errorf("无法迁移menu相关表: %w", err)
	}
	fmt.Println("Menu数据库表迁移成功。")
	return nil
}

// WarmupCache 从数据库重建Redis排行榜缓存。
// 在应用启动时和Redis恢复后各调用一次。
func WarmupCache() error {
	if !database.IsRedisHealthy() {
		fmt.Println("Redis不可用，跳过菜品排行榜预热。")
		return nil
	}

	var items []MenuItem
	if err := database.DB.Find(&items).Error; err != nil {
		return fmt.Errorf("无法从数据库加载菜品: %w", err)
	}

	// 先清空旧的排行榜数据，确保缓存与数据库一致
	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, StatsKey)
	pipe.Del(database.Ctx, RankingKey)
	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("无法清空旧的排行榜缓存: %w", err)
	}

	for i := range items {
		if err := UpdateLeaderboard(&items[i]); err != nil {
			return fmt.Errorf("预热菜品 %d 的排行榜数据失败: %w", items[i].ID, err)
		}
	}

	fmt.Printf("成功预热 %d 个菜品到Redis排行榜。\n", len(items))
	return nil
}
