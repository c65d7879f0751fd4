package rating

import (
	"fmt"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
)

// PrimeDB 确保评分相关的表结构存在。
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&DishRating{}, &DishClusterStats{}); err != nil {
		return fmt.Errorf("迁移评分表失败: %w", err)
	}
	return nil
}
