package rating

import (
	"time"

	"gorm.io/gorm"
)

// DishRating 是用户对某道菜品的一条评分记录。
// (menu_item_id, user_id) 上的唯一索引保证同一用户对同一菜品只保留一条记录，
// 重复提交会覆盖原有评分而不是新增。
type DishRating struct {
	ID           uint   `gorm:"primarykey"`
	MenuItemID   uint   `gorm:"uniqueIndex:idx_rating_item_user;not null"`
	UserID       string `gorm:"uniqueIndex:idx_rating_item_user;type:varchar(36);not null"`
	RestaurantID uint   `gorm:"index"`
	Rating       int    `gorm:"not null"`
	Comment      string `gorm:"type:text"`
	// CreatedAt 记录最近一次评分事件的时间，覆盖评分时会被刷新
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DishClusterStats 保存某个用户聚类对某道菜品的聚合评分。
// 当评分用户属于某个聚类且该聚类对该菜品有足够样本时，
// 可信度更新会用聚类均值替代全体加权均值作为参照。
type DishClusterStats struct {
	gorm.Model
	ClusterID      uint `gorm:"uniqueIndex:idx_cluster_item;not null"`
	MenuItemID     uint `gorm:"uniqueIndex:idx_cluster_item;not null"`
	RatingWeighted float64
	RatingCount    int64
}
