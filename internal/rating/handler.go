package rating

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/menu"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/user"
)

// SubmitRequest 是评分提交的请求体。
// Rating 使用指针以区分"缺失"和"显式传0"，两者都会被校验拒绝。
type SubmitRequest struct {
	Rating  *int   `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// Submit 处理评分提交请求 POST /api/menu/:id/rate
func Submit(c *gin.Context) {
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "菜品ID无效"})
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体无效: " + err.Error()})
		return
	}

	userID := c.GetString(user.UserIDKey)

	record, err := SubmitRating(SubmitInput{
		MenuItemID: uint(itemID),
		UserID:     userID,
		Rating:     *req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRating), errors.Is(err, ErrMissingMenuItem):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrMissingUser):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "菜品不存在"})
		case errors.Is(err, menu.ErrCorruptEffectiveStats):
			// 数据完整性错误与普通存储故障区分开，重试不会修复它
			c.JSON(http.StatusInternalServerError, gin.H{"error": "菜品统计数据损坏", "code": "data_integrity"})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "评分提交暂时失败，请稍后重试", "code": "transient"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           record.ID,
		"menu_item_id": record.MenuItemID,
		"rating":       record.Rating,
		"comment":      record.Comment,
		"created_at":   record.CreatedAt,
	})
}
