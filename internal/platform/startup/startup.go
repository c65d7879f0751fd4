package startup

import (
	"fmt"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/menu"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/metadata"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/rating"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/user"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := user.PrimeDB(); err != nil {
		return err
	}
	if err := menu.PrimeDB(); err != nil {
		return err
	}
	if err := rating.PrimeDB(); err != nil {
		return err
	}

	// 贝叶斯先验的全局均值缺失时在启动期现算一次，
	// 避免首个评分请求承担全库聚合的开销
	stats, err := metadata.FetchGlobalStats(database.DB)
	if err != nil {
		return err
	}
	if !stats.HasGlobalMean {
		if err := metadata.EnsureGlobalMean(database.DB, &stats, rating.GlobalWeightedMean); err != nil {
			return err
		}
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 在运行时热重建Redis中的排行榜缓存
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	if err := menu.WarmupCache(); err != nil {
		return err
	}

	fmt.Println("缓存热重建完成。")
	return nil
}
