package menu

import (
	"encoding/json"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/mathx"
)

// --- 徽章常量 ---

const (
	TagEliteFavorite = "Elite Favorite"
	TagSafePick      = "Safe Pick"
	TagPolarizing    = "Polarizing"
	TagRisky         = "Risky"
	TagNewAndRising  = "New & Rising"
	TagHot           = "Hot"
)

// ClassifyDish 把菜品当前的统计画像映射为一组定性徽章。
//
// 每条规则独立判定，互不排斥，一个菜品可以同时持有多个徽章。
// recentAvg 是过去7天内评分的平均值（由编排器从原始评分行现算，不落库），
// lifetimeAvg 是贝叶斯平滑前的原始加权平均。
// 任何非有限的输入只会让对应条件不成立，绝不报错。
func ClassifyDish(bayesian float64, ratingCount int64, volatility, recentAvg, lifetimeAvg float64) []string {
	tags := []string{}

	// 非有限输入只令相关条件不成立
	bayesOK := mathx.IsFinite(bayesian)
	volOK := mathx.IsFinite(volatility)

	if bayesOK && volOK && bayesian >= 4.6 && ratingCount >= 40 && volatility < 0.7 {
		tags = append(tags, TagEliteFavorite)
	}
	if bayesOK && volOK && bayesian >= 4.3 && volatility < 0.6 && ratingCount >= 15 {
		tags = append(tags, TagSafePick)
	}
	if volOK && volatility >= 1.2 && ratingCount >= 10 {
		tags = append(tags, TagPolarizing)
	}
	if bayesOK && volOK && bayesian < 3.0 && volatility > 1.0 {
		tags = append(tags, TagRisky)
	}
	if bayesOK && ratingCount >= 5 && ratingCount <= 15 && bayesian >= 4.2 {
		tags = append(tags, TagNewAndRising)
	}
	if mathx.IsFinite(recentAvg) && mathx.IsFinite(lifetimeAvg) && recentAvg > lifetimeAvg && ratingCount >= 10 {
		tags = append(tags, TagHot)
	}

	return tags
}

// EncodeTags 把徽章集合序列化为落库用的JSON字符串。
// 字符串集合的序列化不会失败，空集合编码为"[]"。
func EncodeTags(tags []string) string {
	if tags == nil {
		tags = []string{}
	}
	encoded, _ := json.Marshal(tags)
	return string(encoded)
}
