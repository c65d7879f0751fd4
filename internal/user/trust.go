package user

import (
	"time"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/mathx"
)

// --- 算法常量 ---

const (
	// 机器人信号的各分项加分，各子句相互独立、可叠加
	botPointsRapidFire    = 0.25 // 距上次评分不足rapidFireSeconds秒
	botPointsBurst        = 0.30 // 近burstWindow内评分数达到burstCountThreshold
	botPointsExtremeRun   = 0.20 // 最近ExtremeStreakLength条评分全部为极端值
	botPointsYoungAccount = 0.15 // 新账号且短时间内高频评分

	rapidFireSeconds    = 10.0
	burstCountThreshold = 8
	youngBurstThreshold = 5
	newAccountMaxDays   = 7.0

	// ExtremeStreakLength 要求恰好有这么多条历史评分才可能触发极端连击信号。
	// 不足该数量的年轻账号不会被此信号惩罚。
	ExtremeStreakLength = 6
	extremeLowCutoff    = 1.5
	extremeHighCutoff   = 4.5

	// BotScoreAlpha 是bot分数指数平滑的新观测权重
	BotScoreAlpha = 0.3

	// TrustAlpha 是信任乘数指数平滑的新目标权重
	TrustAlpha = 0.2

	// 信任目标档位
	trustTargetDefault  = 1.0
	trustTargetElevated = 1.2
	trustTargetSuspect  = 0.8
	trustTargetBot      = 0.6

	// 目标上调所需的最小评分数，以及评分离散度的"自然"区间
	elevatedMinRatings = 20
	elevatedMaxBot     = 0.2
	suspectBotCutoff   = 0.3
	hardBotCutoff      = 0.6
	spreadNaturalMin   = 0.5
	spreadNaturalMax   = 1.5

	// BurstWindow 是"近期评分数"信号的统计时间窗口
	BurstWindow = 5 * time.Minute

	// SpreadHistoryLength 是评分离散度信号使用的历史评分条数
	SpreadHistoryLength = 20
)

// TrustSignals 汇总了每次请求从评分历史中新鲜计算出的行为信号。
// 所有字段都是请求时刻的点查询结果，不做任何缓存。
type TrustSignals struct {
	// HasPriorRating 表示用户是否有过评分记录；没有时SecondsSinceLast无意义
	HasPriorRating   bool
	SecondsSinceLast float64

	// RecentCount 是BurstWindow时间窗口内的评分提交数
	RecentCount int64

	// HasExtremeStreak 表示最近ExtremeStreakLength条评分是否全部为极端值
	HasExtremeStreak bool

	// IsNewAccount 表示账号年龄是否不超过newAccountMaxDays天
	IsNewAccount bool

	// RatingSpread 是最近SpreadHistoryLength条评分的总体标准差
	RatingSpread float64
}

// BuildTrustSignals 根据用户档案和新查询到的评分历史构造信号集。
// recentValues 是按时间倒序的最近几条评分值（用于极端连击判断），
// spreadValues 是最近SpreadHistoryLength条评分值（顺序无关）。
func BuildTrustSignals(now time.Time, u *User, recentCount int64, recentValues, spreadValues []float64) TrustSignals {
	s := TrustSignals{
		RecentCount:  recentCount,
		RatingSpread: mathx.StdDev(spreadValues),
	}

	if u.LastRatingAt != nil {
		s.HasPriorRating = true
		s.SecondsSinceLast = now.Sub(*u.LastRatingAt).Seconds()
	}

	accountAgeDays := now.Sub(u.CreatedAt).Hours() / 24
	s.IsNewAccount = accountAgeDays <= newAccountMaxDays

	// 极端连击要求恰好有ExtremeStreakLength条历史评分，少于该数量不触发
	if len(recentValues) == ExtremeStreakLength {
		s.HasExtremeStreak = true
		for _, v := range recentValues {
			if v > extremeLowCutoff && v < extremeHighCutoff {
				s.HasExtremeStreak = false
				break
			}
		}
	}

	return s
}

// SpreadNatural 返回评分离散度是否落在真人用户的典型区间内。
func (s TrustSignals) SpreadNatural() bool {
	return s.RatingSpread >= spreadNaturalMin && s.RatingSpread <= spreadNaturalMax
}

// ComputeBotScore 根据当前bot分数和本次请求的信号计算平滑后的新bot分数。
// 各信号子句独立累加，单次请求的观测值经过指数平滑后才进入档案，
// 避免一次异常行为让信誉大幅摆动。
func ComputeBotScore(currentBot float64, s TrustSignals) float64 {
	computed := 0.0

	if s.HasPriorRating && s.SecondsSinceLast < rapidFireSeconds {
		computed += botPointsRapidFire
	}
	if s.RecentCount >= burstCountThreshold {
		computed += botPointsBurst
	}
	if s.HasExtremeStreak {
		computed += botPointsExtremeRun
	}
	if s.IsNewAccount && s.RecentCount >= youngBurstThreshold {
		computed += botPointsYoungAccount
	}

	computed = mathx.Clamp(computed, 0, 1)
	return mathx.Clamp((1-BotScoreAlpha)*currentBot+BotScoreAlpha*computed, 0, 1)
}

// ComputeTrustMultiplier 根据平滑后的新bot分数确定信任目标档位，
// 再对当前信任乘数做指数平滑。
//
// 下面的守卫子句是有序的，后面的子句允许覆盖前面的结果：
// 1. 资深、低bot、离散度自然的用户目标上调到1.2；
// 2. bot分数达到hardBotCutoff时无条件压到0.6，覆盖一切上调；
// 3. 否则bot分数达到suspectBotCutoff时压到0.8。
// 这个求值顺序是行为的一部分，不要改写成查表。
func ComputeTrustMultiplier(currentTrust, newBot float64, ratingsCount int, spreadNatural bool) float64 {
	target := trustTargetDefault

	if ratingsCount >= elevatedMinRatings && newBot < elevatedMaxBot && spreadNatural {
		target = trustTargetElevated
	}
	if newBot >= hardBotCutoff {
		target = trustTargetBot
	} else if newBot >= suspectBotCutoff {
		target = trustTargetSuspect
	}

	return mathx.Clamp((1-TrustAlpha)*currentTrust+TrustAlpha*target, 0.5, 1.5)
}
