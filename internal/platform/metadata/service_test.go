package metadata

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// 每个测试使用独立命名的共享内存库，避免连接池拿到空库
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Metadata{}))
	return db
}

func TestSetValueUpserts(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, SetValue(db, GlobalMeanRatingKey, "3.8"))
	require.NoError(t, SetValue(db, GlobalMeanRatingKey, "4.1"))

	value, err := GetValue(db, GlobalMeanRatingKey)
	require.NoError(t, err)
	assert.Equal(t, "4.1", value)

	var count int64
	db.Model(&Metadata{}).Where("key = ?", GlobalMeanRatingKey).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestFetchGlobalStatsDefaults(t *testing.T) {
	db := newTestDB(t)

	stats, err := FetchGlobalStats(db)
	require.NoError(t, err)
	assert.False(t, stats.HasGlobalMean)
	assert.Equal(t, DefaultBayesM, stats.BayesM)
}

func TestFetchGlobalStatsParsesRows(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SetValue(db, GlobalMeanRatingKey, "3.8"))
	require.NoError(t, SetValue(db, BayesMKey, "15"))

	stats, err := FetchGlobalStats(db)
	require.NoError(t, err)
	assert.True(t, stats.HasGlobalMean)
	assert.InDelta(t, 3.8, stats.GlobalMean, 1e-9)
	assert.InDelta(t, 15.0, stats.BayesM, 1e-9)
}

func TestFetchGlobalStatsIgnoresGarbage(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SetValue(db, GlobalMeanRatingKey, "NaN"))
	require.NoError(t, SetValue(db, BayesMKey, "abc"))

	stats, err := FetchGlobalStats(db)
	require.NoError(t, err)
	assert.False(t, stats.HasGlobalMean)
	assert.Equal(t, DefaultBayesM, stats.BayesM)
}

func TestEnsureGlobalMeanComputesAndCaches(t *testing.T) {
	db := newTestDB(t)

	calls := 0
	aggregate := func(*gorm.DB) (float64, bool, error) {
		calls++
		return 3.75, true, nil
	}

	stats := GlobalStats{BayesM: DefaultBayesM}
	require.NoError(t, EnsureGlobalMean(db, &stats, aggregate))
	assert.True(t, stats.HasGlobalMean)
	assert.InDelta(t, 3.75, stats.GlobalMean, 1e-9)
	assert.Equal(t, 1, calls)

	// 已有缓存时不再触发重算
	require.NoError(t, EnsureGlobalMean(db, &stats, aggregate))
	assert.Equal(t, 1, calls)

	// 缓存已落库，下次Fetch直接可用
	fetched, err := FetchGlobalStats(db)
	require.NoError(t, err)
	assert.True(t, fetched.HasGlobalMean)
	assert.InDelta(t, 3.75, fetched.GlobalMean, 1e-9)
}

func TestEnsureGlobalMeanEmptyCorpus(t *testing.T) {
	db := newTestDB(t)

	aggregate := func(*gorm.DB) (float64, bool, error) {
		return 0, false, nil
	}

	stats := GlobalStats{BayesM: DefaultBayesM}
	require.NoError(t, EnsureGlobalMean(db, &stats, aggregate))
	assert.False(t, stats.HasGlobalMean)
}
