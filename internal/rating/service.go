package rating

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/menu"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/metadata"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/user"
)

// recentRatingWindow 是"近期趋势"标签统计菜品近期均值的时间窗口
const recentRatingWindow = 7 * 24 * time.Hour

var (
	// ErrInvalidRating 表示评分不是1到5之间的整数
	ErrInvalidRating = errors.New("评分必须是1到5之间的整数")
	// ErrMissingUser 表示请求没有携带有效的用户身份
	ErrMissingUser = errors.New("缺少有效的用户身份")
	// ErrMissingMenuItem 表示请求没有指定菜品
	ErrMissingMenuItem = errors.New("缺少菜品ID")
)

// SubmitInput 是一次评分提交的全部输入。
type SubmitInput struct {
	MenuItemID uint
	UserID     string
	Rating     int
	Comment    string
}

// SubmitRating 执行一次完整的评分提交流水线：
// 校验 → 速率记录 → （事务内）写入评分、更新信任模型、重算菜品聚合、
// 打标签、更新可信度、整体落库 → （事务外）尽力刷新排行榜缓存。
// 事务内任何一步失败都会整体回滚，不留下部分更新。
func SubmitRating(input SubmitInput) (*DishRating, error) {
	// 1. 输入校验，任何存储操作之前完成
	if input.UserID == "" || !user.IsValidUUID(input.UserID) {
		return nil, ErrMissingUser
	}
	if input.MenuItemID == 0 {
		return nil, ErrMissingMenuItem
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, ErrInvalidRating
	}

	now := time.Now()

	// 2. 先写Redis速率窗口，拿到包含本次提交的近期计数。
	// 窗口不可用时降级为事务内的数据库统计；事务失败时补偿回滚这条记录。
	recentCount, comp, velErr := RecordSubmission(input.UserID, now)
	defer comp.RollbackUnlessCommitted()

	record := &DishRating{
		MenuItemID: input.MenuItemID,
		UserID:     input.UserID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	}
	var updatedItem *menu.MenuItem

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// 3. 锁定菜品行：确认菜品存在，并串行化同一菜品的聚合重算
		item, err := menu.GetItemForUpdate(tx, input.MenuItemID)
		if err != nil {
			return err
		}
		record.RestaurantID = item.RestaurantID

		// 4. 原子写入评分，inserted 决定是否递增用户的评分总数
		inserted, err := UpsertRating(tx, record, now)
		if err != nil {
			return err
		}

		// 5. 加载（必要时创建）评分用户的档案并加行锁
		u, err := user.GetOrCreateForUpdate(tx, input.UserID)
		if err != nil {
			return err
		}

		// 6. 采集信任信号并更新机器人分/信任系数
		if velErr != nil {
			recentCount, err = CountRecentByUser(tx, input.UserID, now.Add(-user.BurstWindow))
			if err != nil {
				return err
			}
		}
		streakValues, err := RecentRatingValues(tx, input.UserID, user.ExtremeStreakLength)
		if err != nil {
			return err
		}
		spreadValues, err := RecentRatingValues(tx, input.UserID, user.SpreadHistoryLength)
		if err != nil {
			return err
		}
		signals := user.BuildTrustSignals(now, u, recentCount, streakValues, spreadValues)
		newBot := user.ComputeBotScore(u.BotScore, signals)
		newTrust := user.ComputeTrustMultiplier(u.TrustMultiplier, newBot, u.RatingsCount, signals.SpreadNatural())

		// 7. 取全局先验，缺失时现算并回填
		global, err := metadata.FetchGlobalStats(tx)
		if err != nil {
			return err
		}
		if !global.HasGlobalMean {
			if err := metadata.EnsureGlobalMean(tx, &global, GlobalWeightedMean); err != nil {
				return err
			}
		}

		// 8. 重算菜品的有效统计与贝叶斯平滑分
		stats, err := EffectiveStats(tx, input.MenuItemID)
		if err != nil {
			return err
		}
		result, err := menu.ComputeAggregate(stats, global)
		if err != nil {
			return err
		}

		// 9. 结合近期趋势给菜品打标签，并整体落库聚合字段
		recentAvg, err := DishRecentAverage(tx, input.MenuItemID, now.Add(-recentRatingWindow))
		if err != nil {
			return err
		}
		tags := menu.ClassifyDish(result.RatingBayesian, result.RatingCount, result.VolatilityStdDev, recentAvg, stats.WeightedAverage)
		if err := menu.SaveAggregate(tx, item.ID, result, tags, now); err != nil {
			return err
		}

		// 10. 更新评分用户的可信度：优先用其口味聚类对这道菜的均值做参照
		var cluster *DishClusterStats
		if u.ClusterID != nil {
			cluster, err = ClusterStats(tx, *u.ClusterID, input.MenuItemID)
			if err != nil {
				return err
			}
		}
		reference := ResolveReferenceAverage(stats, cluster)
		newCred := UpdateCredibility(u.CredibilityScore, float64(input.Rating), reference, stats.RatingCount)

		// 11. 用户档案的全部信誉字段作为一个整体写入
		ratingsCount := u.RatingsCount
		if inserted {
			ratingsCount++
		}
		if err := user.SaveReputation(tx, u.ID, user.ReputationUpdate{
			CredibilityScore: newCred,
			TrustMultiplier:  newTrust,
			BotScore:         newBot,
			RatingsCount:     ratingsCount,
			LastRatingAt:     now,
		}); err != nil {
			return err
		}

		// 排行榜更新需要落库后的完整菜品行，在事务内先拼好
		refreshed := *item
		refreshed.RatingWeighted = result.RatingWeighted
		refreshed.RatingBayesian = result.RatingBayesian
		refreshed.RatingCount = result.RatingCount
		refreshed.VolatilityStdDev = result.VolatilityStdDev
		refreshed.ConfidenceScore = result.ConfidenceScore
		refreshed.EmojiTags = menu.EncodeTags(tags)
		refreshed.LastComputedAt = &now
		updatedItem = &refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	comp.Commit()

	// 12. 事务外尽力刷新排行榜缓存，失败只记录不报错
	if updatedItem != nil {
		if err := menu.UpdateLeaderboard(updatedItem); err != nil {
			fmt.Printf("警告：更新菜品排行榜缓存失败: %v\n", err)
		}
	}
	return record, nil
}
