package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeBotScoreAllSignals(t *testing.T) {
	// 四个信号同时触发，原始分 0.25+0.30+0.20+0.15 = 0.90，
	// 平滑后 newBot = 0.7*0 + 0.3*0.90 = 0.27
	s := TrustSignals{
		HasPriorRating:   true,
		SecondsSinceLast: 3,
		RecentCount:      9,
		HasExtremeStreak: true,
		IsNewAccount:     true,
	}
	assert.InDelta(t, 0.27, ComputeBotScore(0, s), 1e-9)
}

func TestComputeBotScoreNoSignals(t *testing.T) {
	s := TrustSignals{HasPriorRating: true, SecondsSinceLast: 3600}
	// 无信号时分数向0衰减
	assert.InDelta(t, 0.35, ComputeBotScore(0.5, s), 1e-9)
}

func TestComputeBotScoreNoPriorRating(t *testing.T) {
	// 没有历史评分时，SecondsSinceLast信号不参与计算
	s := TrustSignals{HasPriorRating: false, SecondsSinceLast: 0}
	assert.InDelta(t, 0.0, ComputeBotScore(0, s), 1e-9)
}

func TestComputeBotScoreStaysBounded(t *testing.T) {
	// 当前分已在上限时，全信号请求也不会把分数推出[0,1]：
	// newBot = 0.7*1.0 + 0.3*0.90 = 0.97
	s := TrustSignals{
		HasPriorRating:   true,
		SecondsSinceLast: 1,
		RecentCount:      20,
		HasExtremeStreak: true,
		IsNewAccount:     true,
	}
	got := ComputeBotScore(1.0, s)
	assert.LessOrEqual(t, got, 1.0)
	assert.InDelta(t, 0.97, got, 1e-9)
}

func TestTrustTargetHardCutoffWins(t *testing.T) {
	// newBot ≥ 0.6 必须把目标压到0.6，即使上调条件在数值上也可构造成立。
	// 直接用精心构造的newBot值调用函数验证守卫顺序。
	got := ComputeTrustMultiplier(1.0, 0.65, 50, true)
	// target = 0.6 → newTrust = 0.8*1.0 + 0.2*0.6 = 0.92
	assert.InDelta(t, 0.92, got, 1e-9)
}

func TestTrustTargetSuspectBranch(t *testing.T) {
	got := ComputeTrustMultiplier(1.0, 0.4, 50, true)
	// target = 0.8 → newTrust = 0.8 + 0.2*0.8 = 0.96
	assert.InDelta(t, 0.96, got, 1e-9)
}

func TestTrustTargetElevated(t *testing.T) {
	got := ComputeTrustMultiplier(1.0, 0.1, 25, true)
	// target = 1.2 → newTrust = 0.8 + 0.24 = 1.04
	assert.InDelta(t, 1.04, got, 1e-9)
}

func TestTrustTargetDefaultWhenSpreadUnnatural(t *testing.T) {
	got := ComputeTrustMultiplier(1.0, 0.1, 25, false)
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestTrustMultiplierClamped(t *testing.T) {
	assert.GreaterOrEqual(t, ComputeTrustMultiplier(0.2, 0.9, 0, false), 0.5)
	assert.LessOrEqual(t, ComputeTrustMultiplier(2.0, 0.0, 100, true), 1.5)
}

func TestBuildTrustSignalsExtremeStreak(t *testing.T) {
	now := time.Now()
	u := &User{CreatedAt: now.AddDate(-1, 0, 0)}

	// 恰好6条且全部极端 → 触发
	extreme := []float64{5, 5, 1, 5, 1, 5}
	s := BuildTrustSignals(now, u, 0, extreme, nil)
	assert.True(t, s.HasExtremeStreak)

	// 5条全部极端 → 不触发（数量不足）
	s = BuildTrustSignals(now, u, 0, extreme[:5], nil)
	assert.False(t, s.HasExtremeStreak)

	// 6条中有一条温和评分 → 不触发
	mixed := []float64{5, 5, 3, 5, 1, 5}
	s = BuildTrustSignals(now, u, 0, mixed, nil)
	assert.False(t, s.HasExtremeStreak)
}

func TestBuildTrustSignalsAccountAge(t *testing.T) {
	now := time.Now()

	young := &User{CreatedAt: now.Add(-48 * time.Hour)}
	assert.True(t, BuildTrustSignals(now, young, 0, nil, nil).IsNewAccount)

	old := &User{CreatedAt: now.AddDate(0, -2, 0)}
	assert.False(t, BuildTrustSignals(now, old, 0, nil, nil).IsNewAccount)
}

func TestBuildTrustSignalsLastRating(t *testing.T) {
	now := time.Now()
	last := now.Add(-5 * time.Second)
	u := &User{CreatedAt: now.AddDate(-1, 0, 0), LastRatingAt: &last}

	s := BuildTrustSignals(now, u, 0, nil, nil)
	assert.True(t, s.HasPriorRating)
	assert.InDelta(t, 5.0, s.SecondsSinceLast, 0.01)

	s = BuildTrustSignals(now, &User{CreatedAt: u.CreatedAt}, 0, nil, nil)
	assert.False(t, s.HasPriorRating)
}

func TestSpreadNatural(t *testing.T) {
	assert.True(t, TrustSignals{RatingSpread: 1.0}.SpreadNatural())
	assert.True(t, TrustSignals{RatingSpread: 0.5}.SpreadNatural())
	assert.True(t, TrustSignals{RatingSpread: 1.5}.SpreadNatural())
	assert.False(t, TrustSignals{RatingSpread: 0.2}.SpreadNatural())
	assert.False(t, TrustSignals{RatingSpread: 1.8}.SpreadNatural())
}
