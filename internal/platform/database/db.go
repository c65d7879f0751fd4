package database

import (
	"fmt"
	"log"
	"os"

	"github.com/tylerdemarco2022-hash/tastetrail-backend/internal/platform/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是全局的GORM数据库实例，供项目其他部分使用
var DB *gorm.DB

// InitDB 初始化与Postgres数据库的连接
func InitDB(cfg config.PostgresConfig) {
	var err error

	// GORM日志配置
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 0,
			LogLevel:      logger.Silent, // 在生产环境中可以设为Silent
			Colorful:      true,
		},
	)

	DB, err = gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true, // 将驱动错误翻译为gorm.ErrDuplicatedKey等通用错误
	})

	if err != nil {
		fmt.Println("连接数据库失败", err)
		panic(err)
	}

	fmt.Println("数据库连接成功！")
}

// UseDB 将一个外部构造的GORM实例注入为全局实例。
// 供测试使用（例如注入内存SQLite），生产代码只应使用InitDB。
func UseDB(db *gorm.DB) {
	DB = db
}
