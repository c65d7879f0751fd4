package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/api"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/config"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/database"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/health"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/shutdown"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/startup"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/rating"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/lifecycle"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/pkg/token"
)

func main() {
	// 1. 加载 .env 文件（不存在也没关系，环境变量可能由部署环境直接提供）
	if err := godotenv.Load(); err != nil {
		fmt.Println("未找到 .env 文件，将依赖环境变量和config.yaml。")
	}

	// 2. 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}

	// 3. 初始化签名密钥和数据连接
	token.GenerateSecretKey()
	database.InitDB(cfg.Database.Postgres)
	database.InitRedis(cfg.Database.Redis)
	health.InitializeRunID()

	// 4. 执行应用首次启动初始化流程（迁移、全局均值预热）
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 5. 预热排行榜缓存
	if err := startup.RebuildCache(); err != nil {
		fmt.Printf("警告: 排行榜缓存预热失败，将降级为数据库查询: %v\n", err)
	}

	// 6. 组装生命周期管理器并启动后台服务
	gracefulManager := lifecycle.NewManager()
	forcefulManager := lifecycle.NewManager()

	healthHandle, err := gracefulManager.NewServiceHandle("redis-health-checker")
	if err != nil {
		panic(err)
	}
	health.StartRedisHealthCheck(healthHandle)

	refresherGraceful, err := gracefulManager.NewServiceHandle("global-mean-refresher")
	if err != nil {
		panic(err)
	}
	refresherForceful, err := forcefulManager.NewServiceHandle("global-mean-refresher")
	if err != nil {
		panic(err)
	}
	refreshInterval := time.Duration(cfg.Rating.GlobalMeanRefreshMinutes) * time.Minute
	rating.StartGlobalMeanRefresher(refresherGraceful, refresherForceful, refreshInterval)

	// 7. 组装HTTP服务
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("服务器启动失败: " + err.Error())
		}
	}()

	// 8. 阻塞等待停机信号
	coordinator := shutdown.NewCoordinator(gracefulManager, forcefulManager)
	coordinator.ListenForSignalsAndShutdown(server)
}
