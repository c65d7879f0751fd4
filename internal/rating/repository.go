package rating

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/menu"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/mathx"
)

// UpsertRating 以原子方式写入评分：不存在则插入，存在则覆盖。
// 返回值 inserted 表示本次是插入（true）还是覆盖（false），
// 调用方据此决定是否递增用户的评分总数。
func UpsertRating(tx *gorm.DB, r *DishRating, now time.Time) (bool, error) {
	r.CreatedAt = now
	r.UpdatedAt = now

	// 1. 先尝试插入，唯一索引冲突时什么都不做
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "menu_item_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(r)
	if result.Error != nil {
		return false, fmt.Errorf("插入评分失败: %w", result.Error)
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	// 2. 冲突说明已有记录，改为覆盖评分内容并刷新评分时间
	err := tx.Model(&DishRating{}).
		Where("menu_item_id = ? AND user_id = ?", r.MenuItemID, r.UserID).
		Updates(map[string]interface{}{
			"rating":     r.Rating,
			"comment":    r.Comment,
			"created_at": now,
			"updated_at": now,
		}).Error
	if err != nil {
		return false, fmt.Errorf("覆盖评分失败: %w", err)
	}

	// 3. 回读已存在行的主键，保证返回的记录完整
	var existing DishRating
	if err := tx.Where("menu_item_id = ? AND user_id = ?", r.MenuItemID, r.UserID).
		First(&existing).Error; err != nil {
		return false, fmt.Errorf("回读评分失败: %w", err)
	}
	*r = existing
	return false, nil
}

type weightedRow struct {
	Rating          float64
	TrustMultiplier float64
}

// EffectiveStats 汇总某道菜品的有效评分统计。
// 加权均值以评分用户当前的信任系数为权重；波动率是原始评分值的总体标准差。
// 没有评分时 RatingCount 为0，均值为 NaN，由上层决定回退策略。
func EffectiveStats(tx *gorm.DB, menuItemID uint) (menu.EffectiveStats, error) {
	var rows []weightedRow
	err := tx.Table("dish_ratings").
		Select("dish_ratings.rating AS rating, users.trust_multiplier AS trust_multiplier").
		Joins("JOIN users ON users.id = dish_ratings.user_id AND users.deleted_at IS NULL").
		Where("dish_ratings.menu_item_id = ?", menuItemID).
		Scan(&rows).Error
	if err != nil {
		return menu.EffectiveStats{}, fmt.Errorf("查询菜品评分失败: %w", err)
	}

	stats := menu.EffectiveStats{
		RatingCount:     int64(len(rows)),
		WeightedAverage: math.NaN(),
	}
	if len(rows) == 0 {
		return stats, nil
	}

	values := make([]float64, 0, len(rows))
	var weightedSum, weightSum float64
	for _, row := range rows {
		values = append(values, row.Rating)
		weightedSum += row.Rating * row.TrustMultiplier
		weightSum += row.TrustMultiplier
	}
	if weightSum > 0 {
		stats.WeightedAverage = weightedSum / weightSum
	}
	stats.VolatilityStdDev = mathx.StdDev(values)
	return stats, nil
}

// GlobalWeightedMean 计算全库所有评分的信任加权均值，
// 作为 metadata.MeanAggregator 注入全局均值刷新流程。
// 评分表为空时 ok 返回 false。
func GlobalWeightedMean(db *gorm.DB) (float64, bool, error) {
	var rows []weightedRow
	err := db.Table("dish_ratings").
		Select("dish_ratings.rating AS rating, users.trust_multiplier AS trust_multiplier").
		Joins("JOIN users ON users.id = dish_ratings.user_id AND users.deleted_at IS NULL").
		Scan(&rows).Error
	if err != nil {
		return 0, false, fmt.Errorf("查询全局评分失败: %w", err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}

	var weightedSum, weightSum float64
	for _, row := range rows {
		weightedSum += row.Rating * row.TrustMultiplier
		weightSum += row.TrustMultiplier
	}
	if weightSum <= 0 {
		return 0, false, nil
	}
	return weightedSum / weightSum, true, nil
}

// CountRecentByUser 统计某个用户自 since 以来的评分事件数，
// 是Redis速率窗口不可用时的数据库降级路径。
func CountRecentByUser(tx *gorm.DB, userID string, since time.Time) (int64, error) {
	var count int64
	err := tx.Model(&DishRating{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计近期评分数失败: %w", err)
	}
	return count, nil
}

// RecentRatingValues 返回某个用户最近的 limit 条评分值，按评分时间从新到旧排序。
func RecentRatingValues(tx *gorm.DB, userID string, limit int) ([]float64, error) {
	var values []float64
	err := tx.Model(&DishRating{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Pluck("rating", &values).Error
	if err != nil {
		return nil, fmt.Errorf("查询用户评分历史失败: %w", err)
	}
	return values, nil
}

// DishRecentAverage 计算某道菜品自 since 以来评分的简单均值，供近期趋势标签使用。
// 窗口内没有评分时返回 NaN。
func DishRecentAverage(tx *gorm.DB, menuItemID uint, since time.Time) (float64, error) {
	var values []float64
	err := tx.Model(&DishRating{}).
		Where("menu_item_id = ? AND created_at >= ?", menuItemID, since).
		Pluck("rating", &values).Error
	if err != nil {
		return 0, fmt.Errorf("查询菜品近期评分失败: %w", err)
	}
	return mathx.Mean(values), nil
}

// ClusterStats 查找某个聚类对某道菜品的聚合统计，不存在时返回 nil。
func ClusterStats(tx *gorm.DB, clusterID uint, menuItemID uint) (*DishClusterStats, error) {
	var stats DishClusterStats
	err := tx.Where("cluster_id = ? AND menu_item_id = ?", clusterID, menuItemID).
		First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询聚类统计失败: %w", err)
	}
	return &stats, nil
}
