package metadata

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/mathx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// If the key doesn't exist, return an empty string, which is a valid default.
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key within a transaction.
func SetValue(db *gorm.DB, key, value string) error {
	// Use GORM's OnConflict clause for an efficient and atomic "upsert" operation.
	// It will update the 'value' column if a record with the same 'key' already exists.
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- Global rating statistics ---

// GlobalStats carries the two cached prior values used by the dish aggregator.
type GlobalStats struct {
	// GlobalMean is the corpus-wide weighted mean rating. Only meaningful
	// when HasGlobalMean is true.
	GlobalMean    float64
	HasGlobalMean bool

	// BayesM is the effective sample size of the Bayesian prior.
	BayesM float64
}

// MeanAggregator computes the corpus-wide weighted mean rating from the raw
// ratings store. ok is false when there are no ratings at all. The concrete
// aggregation lives in the rating module; it is injected here so the cache
// stays an explicit read-through abstraction instead of ambient shared state.
type MeanAggregator func(db *gorm.DB) (mean float64, ok bool, err error)

// FetchGlobalStats reads both singleton rows in one query and parses them.
func FetchGlobalStats(db *gorm.DB) (GlobalStats, error) {
	var rows []Metadata
	err := db.Where("key IN ?", []string{GlobalMeanRatingKey, BayesMKey}).Find(&rows).Error
	if err != nil {
		return GlobalStats{}, fmt.Errorf("无法读取全局统计元数据: %w", err)
	}

	stats := GlobalStats{BayesM: DefaultBayesM}
	for _, row := range rows {
		value, parseErr := strconv.ParseFloat(row.Value, 64)
		switch row.Key {
		case GlobalMeanRatingKey:
			if parseErr == nil && mathx.IsFinite(value) {
				stats.GlobalMean = value
				stats.HasGlobalMean = true
			}
		case BayesMKey:
			if parseErr == nil && mathx.IsFinite(value) {
				stats.BayesM = value
			}
		}
	}
	return stats, nil
}

// EnsureGlobalMean recomputes and caches the corpus-wide mean when the cached
// value is missing or not finite. Concurrent requests may recompute it
// redundantly; the upsert is idempotent so that is accepted.
func EnsureGlobalMean(db *gorm.DB, stats *GlobalStats, aggregate MeanAggregator) error {
	if stats.HasGlobalMean {
		return nil
	}

	mean, ok, err := aggregate(db)
	if err != nil {
		return fmt.Errorf("无法计算全局加权平均分: %w", err)
	}
	if !ok || !mathx.IsFinite(mean) {
		// 评分语料为空，保持未缓存状态，由调用方走降级路径
		return nil
	}

	if err := SetValue(db, GlobalMeanRatingKey, strconv.FormatFloat(mean, 'f', -1, 64)); err != nil {
		return fmt.Errorf("无法缓存全局加权平均分: %w", err)
	}

	stats.GlobalMean = mean
	stats.HasGlobalMean = true
	return nil
}

// RefreshGlobalMean unconditionally recomputes and caches the corpus mean.
// Used by the background refresher so the prior tracks new ratings over time.
func RefreshGlobalMean(db *gorm.DB, aggregate MeanAggregator) error {
	mean, ok, err := aggregate(db)
	if err != nil {
		return fmt.Errorf("无法计算全局加权平均分: %w", err)
	}
	if !ok || !mathx.IsFinite(mean) {
		return nil
	}
	return SetValue(db, GlobalMeanRatingKey, strconv.FormatFloat(mean, 'f', -1, 64))
}
