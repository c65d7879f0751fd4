package rating

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/user"
)

// ErrVelocityUnavailable 表示Redis速率窗口当前不可用，调用方应降级为数据库统计。
var ErrVelocityUnavailable = errors.New("评分速率窗口不可用")

// velocityKeyPrefix 后接用户ID，值是一个按提交时间评分的有序集合
const velocityKeyPrefix = "rating:velocity:"

// velocityKeyTTL 略长于统计窗口，保证过期清理不会截断在途的统计
const velocityKeyTTL = user.BurstWindow + time.Minute

func velocityKey(userID string) string {
	return velocityKeyPrefix + userID
}

// VelocityCompensator 提供"反悔"速率记录的能力。
// 评分提交先写入Redis窗口、再执行数据库事务；事务失败时调用
// RollbackUnlessCommitted 把这次记录从窗口中移除，避免失败的提交污染速率信号。
type VelocityCompensator struct {
	key       string
	member    string
	committed bool
}

// Commit 声明数据库事务已成功，速率记录正式生效。
func (c *VelocityCompensator) Commit() {
	if c == nil {
		return
	}
	c.committed = true
}

// RollbackUnlessCommitted 在未Commit的情况下移除本次速率记录。
// 设计为defer调用，且自身失败只影响信号精度，不影响主流程。
func (c *VelocityCompensator) RollbackUnlessCommitted() {
	if c == nil || c.committed {
		return
	}
	if err := database.RDB.ZRem(database.Ctx, c.key, c.member).Err(); err != nil {
		fmt.Printf("警告：回滚评分速率记录失败: %v\n", err)
	}
}

// RecordSubmission 把一次评分提交记入用户的速率窗口，并返回窗口内的提交总数
// （包含本次）。Redis不健康或操作失败时返回 ErrVelocityUnavailable，
// 由调用方降级为数据库统计。
func RecordSubmission(userID string, now time.Time) (int64, *VelocityCompensator, error) {
	if !database.IsRedisHealthy() {
		return 0, nil, ErrVelocityUnavailable
	}

	key := velocityKey(userID)
	member := uuid.NewString()
	windowStart := now.Add(-user.BurstWindow)

	// 1. 清理窗口外的旧记录 2. 写入本次记录 3. 统计窗口内总数
	pipe := database.RDB.TxPipeline()
	pipe.ZRemRangeByScore(database.Ctx, key, "-inf", fmt.Sprintf("%d", windowStart.UnixMilli()))
	pipe.ZAdd(database.Ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	countCmd := pipe.ZCard(database.Ctx, key)
	pipe.Expire(database.Ctx, key, velocityKeyTTL)
	if _, err := pipe.Exec(database.Ctx); err != nil {
		database.UpdateStatus(false)
		return 0, nil, fmt.Errorf("%w: %v", ErrVelocityUnavailable, err)
	}

	return countCmd.Val(), &VelocityCompensator{key: key, member: member}, nil
}
