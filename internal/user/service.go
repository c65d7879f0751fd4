package user

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
)

// CreateProvisionalUser 生成一个临时的、尚未持久化的新用户UUID。
// 这个UUID将被签名后设置到cookie中。
func CreateProvisionalUser() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// IsValidUUID 检查一个字符串是否是格式正确的UUID。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// GetForUpdate 在事务中按ID加载用户档案并加行锁。
// 用户不存在时返回gorm.ErrRecordNotFound。
func GetForUpdate(tx *gorm.DB, userID string) (*User, error) {
	var u User
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreateForUpdate 在事务中加载用户档案，档案不存在时先创建再加锁。
// 新档案的三个信誉分数使用默认值（1.0 / 1.0 / 0.0）。
func GetOrCreateForUpdate(tx *gorm.DB, userID string) (*User, error) {
	u, err := GetForUpdate(tx, userID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("无法加载用户档案: %w", err)
	}

	fresh := User{
		ID:               userID,
		CredibilityScore: 1.0,
		TrustMultiplier:  1.0,
		BotScore:         0.0,
	}
	if err := tx.Create(&fresh).Error; err != nil {
		// 并发请求可能已经创建了同一个用户，冲突后重新加载即可
		if database.IsDuplicateKeyError(err) {
			return GetForUpdate(tx, userID)
		}
		return nil, fmt.Errorf("无法创建用户档案: %w", err)
	}
	return GetForUpdate(tx, userID)
}

// ReputationUpdate 汇总了一次评分提交后，用户档案需要一起落库的全部字段。
type ReputationUpdate struct {
	CredibilityScore float64
	TrustMultiplier  float64
	BotScore         float64
	RatingsCount     int
	LastRatingAt     time.Time
}

// SaveReputation 将一次信誉更新的全部字段作为一个整体写入用户行。
// 绝不允许只写入部分字段。
func SaveReputation(tx *gorm.DB, userID string, update ReputationUpdate) error {
	err := tx.Model(&User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"credibility_score": update.CredibilityScore,
		"trust_multiplier":  update.TrustMultiplier,
		"bot_score":         update.BotScore,
		"ratings_count":     update.RatingsCount,
		"last_rating_at":    update.LastRatingAt,
	}).Error
	if err != nil {
		return fmt.Errorf("无法更新用户信誉字段: %w", err)
	}
	return nil
}
