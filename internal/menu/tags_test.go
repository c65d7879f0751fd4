package menu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyDishTagsAreIndependent(t *testing.T) {
	// 徽章互不排斥：高分、样本充足、低波动的菜品同时拿到两个徽章
	tags := ClassifyDish(4.7, 45, 0.5, math.NaN(), math.NaN())
	assert.Contains(t, tags, TagEliteFavorite)
	assert.Contains(t, tags, TagSafePick)
}

func TestClassifyDishPolarizing(t *testing.T) {
	tags := ClassifyDish(3.5, 12, 1.3, math.NaN(), math.NaN())
	assert.Contains(t, tags, TagPolarizing)
	assert.NotContains(t, tags, TagSafePick)
}

func TestClassifyDishRisky(t *testing.T) {
	tags := ClassifyDish(2.5, 8, 1.1, math.NaN(), math.NaN())
	assert.Contains(t, tags, TagRisky)
}

func TestClassifyDishNewAndRising(t *testing.T) {
	assert.Contains(t, ClassifyDish(4.3, 5, 0.4, math.NaN(), math.NaN()), TagNewAndRising)
	assert.Contains(t, ClassifyDish(4.3, 15, 0.7, math.NaN(), math.NaN()), TagNewAndRising)
	assert.NotContains(t, ClassifyDish(4.3, 16, 0.7, math.NaN(), math.NaN()), TagNewAndRising)
	assert.NotContains(t, ClassifyDish(4.3, 4, 0.7, math.NaN(), math.NaN()), TagNewAndRising)
}

func TestClassifyDishHot(t *testing.T) {
	// 近7天均分高于生命周期均分且样本充足
	assert.Contains(t, ClassifyDish(4.0, 20, 0.8, 4.5, 4.0), TagHot)
	assert.NotContains(t, ClassifyDish(4.0, 20, 0.8, 3.8, 4.0), TagHot)
	// 样本不足
	assert.NotContains(t, ClassifyDish(4.0, 9, 0.8, 4.5, 4.0), TagHot)
}

func TestClassifyDishNonFiniteInputsNeverMatch(t *testing.T) {
	// 非有限输入一律按条件不成立处理，绝不panic也绝不误判
	assert.Empty(t, ClassifyDish(math.NaN(), 50, math.NaN(), math.NaN(), math.NaN()))
	assert.NotContains(t, ClassifyDish(math.NaN(), 8, 1.1, math.NaN(), math.NaN()), TagRisky)
	assert.NotContains(t, ClassifyDish(4.0, 20, 0.8, math.Inf(1), 4.0), TagHot)
}

func TestClassifyDishEmptyProfile(t *testing.T) {
	assert.Empty(t, ClassifyDish(0, 0, 0, math.NaN(), math.NaN()))
}
