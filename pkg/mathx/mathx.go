package mathx

import "math"

// Clamp 将一个值限制在[lo, hi]区间内。
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// StdDev 计算一组数值的总体标准差（除以N，而非N-1）。
// 空切片返回0，这是一个被正常使用的边界情况（例如尚无评分的新菜品）。
func StdDev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sqDiff float64
	for _, v := range values {
		d := v - mean
		sqDiff += d * d
	}
	return math.Sqrt(sqDiff / float64(n))
}

// Mean 计算一组数值的算术平均值。空切片返回NaN，由调用方负责有限性检查。
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// IsFinite 判断一个float64是否是有限数值（非NaN、非±Inf）。
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
