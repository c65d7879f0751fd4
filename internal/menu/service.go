package menu

import (
	"fmt"
	"time"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Service-Level Data Transfer Objects (DTOs) ---

// RankedDishDTO 包含了排行榜API所需的单个菜品数据
type RankedDishDTO struct {
	ID    uint
	Stats DishStats
}

// MenuItemDTO 是餐厅菜单API返回的单个菜品视图
type MenuItemDTO struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	PriceCents       int64    `json:"price_cents"`
	RatingBayesian   float64  `json:"rating_bayesian"`
	RatingCount      int64    `json:"rating_count"`
	ConfidenceScore  float64  `json:"confidence_score"`
	VolatilityStdDev float64  `json:"volatility_stddev"`
	Tags             []string `json:"tags"`
}

// --- Service Functions ---

// GetItemForUpdate 在事务中按ID加载菜品并加行锁。
// 评分编排器用它确认菜品存在，并在聚合重算期间独占该行。
func GetItemForUpdate(tx *gorm.DB, itemID uint) (*MenuItem, error) {
	var item MenuItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, itemID).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveAggregate 把一次聚合重算的全部产物作为一个整体写入菜品行。
// 部分更新（例如写了标签没写贝叶斯分）被明确禁止。
func SaveAggregate(tx *gorm.DB, itemID uint, result AggregateResult, tags []string, computedAt time.Time) error {
	err := tx.Model(&MenuItem{}).Where("id = ?", itemID).Updates(map[string]interface{}{
		"rating_weighted":    result.RatingWeighted,
		"rating_bayesian":    result.RatingBayesian,
		"rating_count":       result.RatingCount,
		"volatility_std_dev": result.VolatilityStdDev,
		"confidence_score":   result.ConfidenceScore,
		"emoji_tags":         EncodeTags(tags),
		"last_computed_at":   computedAt,
	}).Error
	if err != nil {
		return fmt.Errorf("无法更新菜品聚合字段: %w", err)
	}
	return nil
}

// GetRestaurantMenu 返回一家餐厅的全部菜品及其聚合统计。
func GetRestaurantMenu(restaurantID uint) ([]MenuItemDTO, error) {
	var items []MenuItem
	err := database.DB.Where("restaurant_id = ?", restaurantID).Order("id asc").Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("无法加载餐厅菜单: %w", err)
	}

	menu := make([]MenuItemDTO, 0, len(items))
	for _, item := range items {
		menu = append(menu, MenuItemDTO{
			ID:               item.ID,
			Name:             item.Name,
			Description:      item.Description,
			PriceCents:       item.PriceCents,
			RatingBayesian:   item.RatingBayesian,
			RatingCount:      item.RatingCount,
			ConfidenceScore:  item.ConfidenceScore,
			VolatilityStdDev: item.VolatilityStdDev,
			Tags:             parseTags(item.EmojiTags),
		})
	}
	return menu, nil
}

// GetRankedDishes 返回按贝叶斯分从高到低的前limit个菜品。
// 正常走Redis排行榜，Redis不健康或读取失败时降级为数据库查询。
func GetRankedDishes(limit int64) ([]RankedDishDTO, error) {
	if limit <= 0 {
		limit = 50
	}

	if database.IsRedisHealthy() {
		ranked, err := rankedFromRedis(limit)
		if err == nil {
			return ranked, nil
		}
		fmt.Printf("警告: 从Redis读取排行榜失败，降级为数据库查询: %v\n", err)
	}

	return rankedFromDB(limit)
}

// rankedFromDB 是排行榜的数据库降级路径。
func rankedFromDB(limit int64) ([]RankedDishDTO, error) {
	var items []MenuItem
	err := database.DB.Order("rating_bayesian desc").Limit(int(limit)).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("无法从数据库读取排行榜: %w", err)
	}

	ranked := make([]RankedDishDTO, 0, len(items))
	for _, item := range items {
		ranked = append(ranked, RankedDishDTO{
			ID: item.ID,
			Stats: DishStats{
				Name:         item.Name,
				RestaurantID: item.RestaurantID,
				Bayesian:     item.RatingBayesian,
				Weighted:     item.RatingWeighted,
				Count:        item.RatingCount,
				Volatility:   item.VolatilityStdDev,
				Confidence:   item.ConfidenceScore,
				Tags:         parseTags(item.EmojiTags),
			},
		})
	}
	return ranked, nil
}
