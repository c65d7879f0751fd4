package health

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/startup"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

var runIDPattern = regexp.MustCompile(`run_id:([a-f0-9]+)`)

// lastKnownRunID 记录上次观测到的Redis实例标识。
// run_id变化意味着Redis重启过，内存中的排行榜缓存已经丢失，需要热重建。
var (
	runIDMu        sync.Mutex
	lastKnownRunID string
)

// getRedisRunID 从Redis服务器信息中提取run_id
func getRedisRunID() (string, error) {
	ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
	defer cancel()
	info, err := database.RDB.Info(ctx, "server").Result()
	if err != nil {
		return "", err
	}
	matches := runIDPattern.FindStringSubmatch(info)
	if len(matches) < 2 {
		return "", fmt.Errorf("无法在Redis INFO中找到run_id")
	}
	return matches[1], nil
}

// InitializeRunID 在应用启动时执行一次，记录初始的run_id。
// Redis不可用时不阻止启动，留给周期检查去恢复。
func InitializeRunID() {
	runID, err := getRedisRunID()
	if err != nil {
		fmt.Printf("警告: 无法获取初始Redis Run ID，缓存路径将降级: %v\n", err)
		database.UpdateStatus(false)
		return
	}
	runIDMu.Lock()
	lastKnownRunID = runID
	runIDMu.Unlock()
	fmt.Printf("获取初始Redis Run ID成功: %s\n", runID)
}

// PerformCheck 执行一次完整的健康检查和可能的修复操作。
func PerformCheck() {
	currentRunID, err := getRedisRunID()
	if err != nil {
		database.UpdateStatus(false)
		return
	}

	runIDMu.Lock()
	restarted := lastKnownRunID != "" && lastKnownRunID != currentRunID
	recovered := !database.IsRedisHealthy()
	runIDMu.Unlock()

	if restarted || recovered {
		// Redis重启或刚从故障中恢复，排行榜缓存不可信，先重建再放开流量
		fmt.Println("健康检查: 检测到Redis重启或恢复，正在热重建排行榜缓存...")
		database.UpdateStatus(true)
		if err := startup.RebuildCache(); err != nil {
			fmt.Printf("健康检查错误: 缓存热重建失败: %v\n", err)
			database.UpdateStatus(false)
			return
		}

		// 重建期间Redis可能再次重启，重建成功必须以run_id未变为前提
		idAfterRebuild, err := getRedisRunID()
		if err != nil || idAfterRebuild != currentRunID {
			fmt.Println("健康检查错误: 缓存重建期间Redis再次重启，重建无效。")
			database.UpdateStatus(false)
			return
		}
	}

	runIDMu.Lock()
	lastKnownRunID = currentRunID
	runIDMu.Unlock()
	database.UpdateStatus(true)
}

// StartRedisHealthCheck 启动后台Goroutine来定期执行健康检查。
func StartRedisHealthCheck(handle *lifecycle.Handle) {
	go func() {
		defer handle.Close()
		fmt.Println("Redis健康检查器已启动。")

		for {
			if err := handle.Sleep(checkInterval); err != nil {
				return
			}
			PerformCheck()
		}
	}()
}
