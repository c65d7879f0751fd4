package rating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/metadata"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/lifecycle"
)

// StartGlobalMeanRefresher 启动后台Goroutine，定期用全库评分重算贝叶斯先验的全局均值。
// 评分提交路径只在缓存缺失时现算全局均值，并容忍并发请求间的短暂陈旧，
// 这个刷新器负责把陈旧度限制在一个刷新周期之内。
//
// gracefulHandle 控制"跑完当前周期再退出"；forcefulHandle 的上下文会
// 直接中止正在进行的数据库查询。
func StartGlobalMeanRefresher(gracefulHandle, forcefulHandle *lifecycle.Handle, interval time.Duration) {
	go runGlobalMeanRefresher(gracefulHandle, forcefulHandle, interval)
}

func runGlobalMeanRefresher(gracefulHandle, forcefulHandle *lifecycle.Handle, interval time.Duration) {
	defer gracefulHandle.Close()
	defer forcefulHandle.Close()
	fmt.Println("全局均值刷新器已启动。")

	for {
		if err := gracefulHandle.Sleep(interval); err != nil {
			fmt.Println("全局均值刷新器: 休眠被中断，正在关闭...")
			return
		}

		db := database.DB.WithContext(forcefulHandle.Ctx())
		if err := metadata.RefreshGlobalMean(db, GlobalWeightedMean); err != nil {
			// 停机导致的取消静默退出
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			fmt.Printf("全局均值刷新器错误: %v\n", err)
		}
	}
}
