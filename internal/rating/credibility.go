package rating

import (
	"math"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/menu"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/mathx"
)

// --- 可信度算法常量 ---
const (
	// CredibilityMin / CredibilityMax 是用户可信度分数的取值范围
	CredibilityMin = 0.2
	CredibilityMax = 3.0

	// referenceMinRatings 是参与可信度更新所需的菜品最小样本量，
	// 避免用统计意义不足的均值奖惩用户
	referenceMinRatings = 5

	// clusterMinRatings 是聚类均值替代全体均值所需的聚类最小样本量
	clusterMinRatings = 5

	// agreementBand 是判定"与参照一致"的评分偏差上限
	agreementBand = 0.5
	// agreementBonus 是评分与参照一致时的可信度奖励
	agreementBonus = 0.02
	// disagreementRate 是偏差过大时按偏差全额线性累进的惩罚系数
	disagreementRate = 0.03
)

// ResolveReferenceAverage 决定可信度更新所参照的均值。
// 默认使用菜品的全体信任加权均值；当评分用户所属聚类对该菜品
// 有足够样本时，改用聚类均值，让口味相近的群体互为参照。
func ResolveReferenceAverage(stats menu.EffectiveStats, cluster *DishClusterStats) float64 {
	if cluster != nil && cluster.RatingCount >= clusterMinRatings && mathx.IsFinite(cluster.RatingWeighted) {
		return cluster.RatingWeighted
	}
	return stats.WeightedAverage
}

// UpdateCredibility 根据本次评分与参照均值的偏差更新用户可信度。
// 样本量不足或参照均值不可用时原样返回，不做任何调整。
func UpdateCredibility(current float64, userRating float64, referenceAvg float64, ratingCount int64) float64 {
	if ratingCount < referenceMinRatings || !mathx.IsFinite(referenceAvg) {
		return current
	}

	diff := math.Abs(userRating - referenceAvg)
	var updated float64
	if diff < agreementBand {
		// 1. 与群体共识一致，小幅奖励
		updated = current + agreementBonus
	} else {
		// 2. 偏差越大惩罚越重，按偏差全额线性累进而不是固定扣分
		updated = current - diff*disagreementRate
	}
	return mathx.Clamp(updated, CredibilityMin, CredibilityMax)
}
