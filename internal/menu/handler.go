package menu

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetRanking 处理菜品排行榜请求 GET /api/menu/ranking?limit=N
func GetRanking(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit参数必须是正整数"})
		return
	}

	ranked, err := GetRankedDishes(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取排行榜失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"dishes": ranked})
}

// GetRestaurantMenuHandler 处理餐厅菜单请求 GET /api/restaurants/:id/menu
func GetRestaurantMenuHandler(c *gin.Context) {
	restaurantID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "餐厅ID无效"})
		return
	}

	items, err := GetRestaurantMenu(uint(restaurantID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取菜单失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"menu": items})
}
