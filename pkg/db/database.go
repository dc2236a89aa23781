package db

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var gormEdgeDB *gorm.DB
var databaseOnce sync.Once

// InitDB 初始化边缘库连接（支持 mysql/postgres）
func InitDB(cfg *Config) error {
	var err error
	databaseOnce.Do(func() {
		driver := strings.ToLower(cfg.Driver)
		var dial gorm.Dialector
		if driver == "postgres" {
			dial = postgres.Open(cfg.DSN())
		} else {
			dial = mysql.New(mysql.Config{DSN: cfg.DSN()})
		}
		gormEdgeDB, err = gorm.Open(dial, &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return
		}
		if cfg.Debug {
			gormEdgeDB = gormEdgeDB.Debug()
		}
		sqlDB, derr := gormEdgeDB.DB()
		if derr == nil {
			if cfg.MaxIdleConns > 0 {
				sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
			}
			if cfg.MaxOpenConns > 0 {
				sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
			}
			if cfg.ConnMaxLifetime > 0 {
				sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
			}
		}
		zap.S().Debug("*** 数据库初始化完成 ***")
	})
	return err
}

func GetDB() *gorm.DB {
	return gormEdgeDB
}
