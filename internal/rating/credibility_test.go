package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/menu"
)

func TestUpdateCredibility_AgreementGainsFixedBonus(t *testing.T) {
	// 与参照完全一致时固定奖励0.02
	got := UpdateCredibility(1.0, 4.0, 4.0, 10)
	assert.InDelta(t, 1.02, got, 1e-9)

	// 偏差只要小于0.5都算一致
	got = UpdateCredibility(1.0, 4.4, 4.0, 10)
	assert.InDelta(t, 1.02, got, 1e-9)
}

func TestUpdateCredibility_PenaltyScalesWithDifference(t *testing.T) {
	// 偏差2.0 → 扣 2.0×0.03 = 0.06
	got := UpdateCredibility(1.0, 5.0, 3.0, 10)
	assert.InDelta(t, 0.94, got, 1e-9)

	// 偏差恰好0.5落在惩罚分支
	got = UpdateCredibility(1.0, 4.5, 4.0, 10)
	assert.InDelta(t, 1.0-0.5*0.03, got, 1e-9)
}

func TestUpdateCredibility_Clamped(t *testing.T) {
	assert.InDelta(t, 3.0, UpdateCredibility(2.995, 4.0, 4.0, 10), 1e-9)
	assert.InDelta(t, 0.2, UpdateCredibility(0.21, 1.0, 5.0, 10), 1e-9)
}

func TestUpdateCredibility_SkippedOnThinOrBrokenReference(t *testing.T) {
	// 样本量不足，不做任何调整
	assert.Equal(t, 1.3, UpdateCredibility(1.3, 5.0, 3.0, 4))
	// 参照均值不可用，不做任何调整
	assert.Equal(t, 1.3, UpdateCredibility(1.3, 5.0, math.NaN(), 10))
	assert.Equal(t, 1.3, UpdateCredibility(1.3, 5.0, math.Inf(1), 10))
}

func TestResolveReferenceAverage_ClusterOverride(t *testing.T) {
	stats := menu.EffectiveStats{RatingCount: 30, WeightedAverage: 3.6}

	// 聚类样本足够时用聚类均值
	cluster := &DishClusterStats{RatingWeighted: 4.4, RatingCount: 5}
	assert.Equal(t, 4.4, ResolveReferenceAverage(stats, cluster))

	// 聚类样本不足时回退全体均值
	thin := &DishClusterStats{RatingWeighted: 4.4, RatingCount: 4}
	assert.Equal(t, 3.6, ResolveReferenceAverage(stats, thin))

	// 没有聚类时使用全体均值
	assert.Equal(t, 3.6, ResolveReferenceAverage(stats, nil))

	// 聚类均值损坏时也回退全体均值
	broken := &DishClusterStats{RatingWeighted: math.NaN(), RatingCount: 9}
	assert.Equal(t, 3.6, ResolveReferenceAverage(stats, broken))
}
