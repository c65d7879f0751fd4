package user

import (
	"time"

	"gorm.io/gorm"
)

// User 定义了用户在数据库中的持久化模型。
// 除了身份信息外，它承载评分引擎维护的三个有界信誉分数。
type User struct {
	// ID 是用户的主键UUID，来自客户端Cookie。
	ID string `gorm:"primarykey;type:varchar(36)" json:"id"`

	// CredibilityScore 是用户长期评分可信度，取值范围 [0.2, 3.0]，默认1.0。
	CredibilityScore float64 `gorm:"default:1.0" json:"credibility_score"`

	// TrustMultiplier 是用户评分最终应被赋予的权重的平滑估计，
	// 取值范围 [0.5, 1.5]，默认1.0。聚合视图按它加权各条评分。
	TrustMultiplier float64 `gorm:"default:1.0" json:"trust_multiplier"`

	// BotScore 是账号为自动化/滥用账号的概率估计，取值范围 [0.0, 1.0]，默认0。
	BotScore float64 `gorm:"default:0" json:"bot_score"`

	// RatingsCount 记录用户评分过的不同菜品数量。
	// 对同一菜品的重复评分不会增加它。
	RatingsCount int `json:"ratings_count"`

	// LastRatingAt 是最近一次评分提交的时间，从未评分时为空。
	LastRatingAt *time.Time `json:"last_rating_at"`

	// ClusterID 标识口味相近的用户簇，由离线聚类流程维护，可为空。
	// 引擎只把它当作查询键使用。
	ClusterID *uint `gorm:"index" json:"cluster_id"`

	// 部分gorm.Model，由GORM自动管理
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
