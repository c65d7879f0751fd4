package menu

import (
	"errors"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/metadata"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/mathx"
)

// ErrCorruptEffectiveStats 表示有效统计源返回了自相矛盾的数据
// （评分数大于0但加权平均分不是有限数值）。
// 这类错误说明聚合视图本身坏了，而不是暂时不可用，必须让本次提交失败，
// 并与可重试的瞬时失败区分开来。
var ErrCorruptEffectiveStats = errors.New("菜品有效统计数据损坏: 评分数大于0但加权平均分非有限值")

// EffectiveStats 是有效统计源对单个菜品的聚合输出。
// 约定：RatingCount > 0 时 WeightedAverage 必须是有限数值。
type EffectiveStats struct {
	RatingCount      int64
	WeightedAverage  float64
	VolatilityStdDev float64
}

// AggregateResult 是一次聚合重算的完整产物，对应MenuItem上要整体写入的聚合字段。
type AggregateResult struct {
	RatingWeighted   float64
	RatingBayesian   float64
	RatingCount      int64
	VolatilityStdDev float64
	ConfidenceScore  float64
}

// ComputeAggregate 根据菜品的有效原始统计和全局先验计算贝叶斯平滑分与置信度。
//
// bayesian = (n/(n+m))·加权平均 + (m/(n+m))·全局均值，n为评分数，m为先验等效样本量。
// n = 0 时贝叶斯分就是全局均值；n ≫ m 时贝叶斯分趋近原始加权平均。
func ComputeAggregate(stats EffectiveStats, global metadata.GlobalStats) (AggregateResult, error) {
	// 评分数大于0而平均分非有限值是硬错误，绝不静默替换
	if stats.RatingCount > 0 && !mathx.IsFinite(stats.WeightedAverage) {
		return AggregateResult{}, ErrCorruptEffectiveStats
	}

	// 全局均值兜底链：缓存值 → 菜品自身的加权平均 → 0。
	// 兜底只为保证流水线不会单纯因为全局状态缺失而失败。
	globalMean := 0.0
	switch {
	case global.HasGlobalMean && mathx.IsFinite(global.GlobalMean):
		globalMean = global.GlobalMean
	case stats.RatingCount > 0:
		globalMean = stats.WeightedAverage
	}

	var bayesian float64
	if stats.RatingCount > 0 {
		n := float64(stats.RatingCount)
		m := global.BayesM
		bayesian = (n/(n+m))*stats.WeightedAverage + (m/(n+m))*globalMean
	} else {
		bayesian = globalMean
	}

	result := AggregateResult{
		RatingBayesian:   bayesian,
		RatingCount:      stats.RatingCount,
		VolatilityStdDev: stats.VolatilityStdDev,
		ConfidenceScore:  mathx.Clamp(1-stats.VolatilityStdDev/2, 0, 1),
	}
	if stats.RatingCount > 0 {
		result.RatingWeighted = stats.WeightedAverage
	}
	return result, nil
}
