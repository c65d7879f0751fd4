package menu

import (
	"time"

	"gorm.io/gorm"
)

// Restaurant 定义了数据库中餐厅的数据结构
type Restaurant struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// Name 是餐厅名称
	Name string `json:"name"`

	// Address 是餐厅地址
	Address string `json:"address"`

	// Cuisine 是菜系标签，例如 "korean"、"italian"
	Cuisine string `gorm:"index" json:"cuisine"`
}

// MenuItem 定义了菜品及其聚合评分统计。
// 聚合字段由评分引擎在每次评分提交后整体重算、整体写入，
// 绝不允许出现部分字段更新（例如标签更新了而贝叶斯分没更新）。
type MenuItem struct {
	gorm.Model

	// RestaurantID 是菜品所属餐厅
	RestaurantID uint `gorm:"index" json:"restaurant_id"`

	// Name 是菜品名称
	Name string `json:"name"`

	// Description 是菜品描述
	Description string `json:"description"`

	// PriceCents 是以分为单位的价格，避免浮点金额
	PriceCents int64 `json:"price_cents"`

	// --- 以下是评分引擎维护的聚合字段 ---

	// RatingWeighted 是未经贝叶斯平滑的原始加权平均分
	RatingWeighted float64 `json:"rating_weighted"`

	// RatingBayesian 是向用户展示的贝叶斯平滑分
	RatingBayesian float64 `json:"rating_bayesian"`

	// RatingCount 是计入当前聚合的评分数量
	RatingCount int64 `json:"rating_count"`

	// VolatilityStdDev 是评分的总体标准差，衡量口碑分歧程度
	VolatilityStdDev float64 `json:"volatility_stddev"`

	// ConfidenceScore 由波动度导出，范围 [0,1]，波动越大置信度越低
	ConfidenceScore float64 `json:"confidence_score"`

	// EmojiTags 是定性徽章集合的JSON数组字符串，例如 ["Elite Favorite","Safe Pick"]
	EmojiTags string `json:"emoji_tags"`

	// LastComputedAt 是最近一次聚合重算的时间
	LastComputedAt *time.Time `json:"last_computed_at"`
}
