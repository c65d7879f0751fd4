package rating

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/menu"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/metadata"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/user"
)

// newRatingTestDB 建起一个迁移完整的内存库并注入全局连接。
// Redis标记为不健康，让速率信号和排行榜都走数据库降级路径。
func newRatingTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// 每个测试使用独立命名的共享内存库，避免连接池拿到空库
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{}, &metadata.Metadata{},
		&menu.Restaurant{}, &menu.MenuItem{},
		&DishRating{}, &DishClusterStats{},
	))
	database.UseDB(db)
	database.UpdateStatus(false)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, trust float64) string {
	t.Helper()
	u := user.User{
		ID:               uuid.NewString(),
		CredibilityScore: 1.0,
		TrustMultiplier:  trust,
	}
	require.NoError(t, db.Create(&u).Error)
	return u.ID
}

func TestUpsertRating_InsertThenOverwrite(t *testing.T) {
	db := newRatingTestDB(t)
	uid := seedUser(t, db, 1.0)
	now := time.Now()

	first := &DishRating{MenuItemID: 1, UserID: uid, Rating: 4}
	inserted, err := UpsertRating(db, first, now)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, first.ID)

	// 同一用户再评同一菜品：覆盖而不是新增
	second := &DishRating{MenuItemID: 1, UserID: uid, Rating: 2, Comment: "回锅之后变味了"}
	inserted, err = UpsertRating(db, second, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&DishRating{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	var stored DishRating
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.Equal(t, 2, stored.Rating)
	assert.Equal(t, "回锅之后变味了", stored.Comment)
}

func TestEffectiveStats_TrustWeighted(t *testing.T) {
	db := newRatingTestDB(t)
	heavy := seedUser(t, db, 1.5)
	light := seedUser(t, db, 0.5)
	require.NoError(t, db.Create(&DishRating{MenuItemID: 1, UserID: heavy, Rating: 5}).Error)
	require.NoError(t, db.Create(&DishRating{MenuItemID: 1, UserID: light, Rating: 1}).Error)

	stats, err := EffectiveStats(db, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.RatingCount)
	// (5×1.5 + 1×0.5) / (1.5+0.5) = 4.0
	assert.InDelta(t, 4.0, stats.WeightedAverage, 1e-9)
	// 波动率基于原始评分值，不加权
	assert.InDelta(t, 2.0, stats.VolatilityStdDev, 1e-9)
}

func TestEffectiveStats_EmptyDish(t *testing.T) {
	db := newRatingTestDB(t)

	stats, err := EffectiveStats(db, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.RatingCount)
	assert.True(t, math.IsNaN(stats.WeightedAverage))
	assert.Equal(t, 0.0, stats.VolatilityStdDev)
}

func TestGlobalWeightedMean(t *testing.T) {
	db := newRatingTestDB(t)

	_, ok, err := GlobalWeightedMean(db)
	require.NoError(t, err)
	assert.False(t, ok, "空评分库不应产出全局均值")

	uid := seedUser(t, db, 1.0)
	require.NoError(t, db.Create(&DishRating{MenuItemID: 1, UserID: uid, Rating: 4}).Error)
	require.NoError(t, db.Create(&DishRating{MenuItemID: 2, UserID: uid, Rating: 2}).Error)

	mean, ok, err := GlobalWeightedMean(db)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 3.0, mean, 1e-9)
}

func TestRecentRatingValues_OrderAndLimit(t *testing.T) {
	db := newRatingTestDB(t)
	uid := seedUser(t, db, 1.0)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		require.NoError(t, db.Create(&DishRating{
			MenuItemID: uint(i + 1),
			UserID:     uid,
			Rating:     i + 1,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	values, err := RecentRatingValues(db, uid, 3)
	require.NoError(t, err)
	// 从新到旧
	assert.Equal(t, []float64{4, 3, 2}, values)
}

func TestDishRecentAverage_WindowFilter(t *testing.T) {
	db := newRatingTestDB(t)
	uid := seedUser(t, db, 1.0)
	other := seedUser(t, db, 1.0)
	now := time.Now()

	require.NoError(t, db.Create(&DishRating{MenuItemID: 1, UserID: uid, Rating: 5, CreatedAt: now.Add(-time.Hour)}).Error)
	// 窗口之外的旧评分不参与近期均值
	require.NoError(t, db.Create(&DishRating{MenuItemID: 1, UserID: other, Rating: 1, CreatedAt: now.Add(-10 * 24 * time.Hour)}).Error)

	avg, err := DishRecentAverage(db, 1, now.Add(-recentRatingWindow))
	require.NoError(t, err)
	assert.InDelta(t, 5.0, avg, 1e-9)

	empty, err := DishRecentAverage(db, 99, now.Add(-recentRatingWindow))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(empty), "没有近期评分时应返回NaN让标签条件不成立")
}

func TestClusterStats_Lookup(t *testing.T) {
	db := newRatingTestDB(t)
	require.NoError(t, db.Create(&DishClusterStats{ClusterID: 7, MenuItemID: 3, RatingWeighted: 4.5, RatingCount: 6}).Error)

	stats, err := ClusterStats(db, 7, 3)
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.InDelta(t, 4.5, stats.RatingWeighted, 1e-9)

	missing, err := ClusterStats(db, 7, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
