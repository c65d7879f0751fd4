package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/config"
)

// RDB 是一个全局的Redis客户端实例，供项目其他部分使用
var RDB *redis.Client

// Ctx 是一个全局的上下文，用于Redis操作
var Ctx = context.Background()

// InitRedis 初始化与Redis数据库的连接
func InitRedis(cfg config.RedisConfig) {
	// 创建一个新的Redis客户端
	// 使用从配置文件加载的参数
	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 使用Ping命令来测试连接是否成功
	_, err := RDB.Ping(Ctx).Result()
	if err != nil {
		// Redis在本系统中只承担缓存职责（排行榜、频率窗口），连不上不应阻止启动，
		// 只标记为不健康，由健康检查器在恢复后重新启用。
		fmt.Println("警告: 无法连接到Redis，缓存路径将降级:", err)
		UpdateStatus(false)
		return
	}

	UpdateStatus(true)
	fmt.Println("Redis 连接成功！")
}

// UseRedis 允许测试注入一个已经打开的Redis客户端（例如miniredis）。
func UseRedis(client *redis.Client) {
	RDB = client
}
