package api

import (
	"github.com/gin-gonic/gin"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/menu"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/rating"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/user"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 菜品相关的路由组 /api/menu
		menuRoutes := api.Group("/menu")
		{
			// 浏览排行榜时顺带为新访客签发身份cookie，
			// 这样等到提交评分时身份已经就位
			menuRoutes.GET("/ranking", user.EnsureUserCookieMiddleware(), menu.GetRanking)
			menuRoutes.POST("/:id/rate", user.LoadUserMiddleware(), rating.Submit)
		}

		// 餐厅相关的路由 /api/restaurants
		restaurantRoutes := api.Group("/restaurants")
		{
			restaurantRoutes.GET("/:id/menu", user.EnsureUserCookieMiddleware(), menu.GetRestaurantMenuHandler)
		}
	}
}
