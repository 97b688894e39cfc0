/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// DatabaseType 数据库类型常量
const (
	DatabaseTypeSQLite   = "sqlite"
	DatabaseTypeMySQL    = "mysql"
	DatabaseTypePostgres = "postgres"
)

// ErrUnsupportedDatabase is returned for a database.type outside sqlite, mysql and postgres.
var ErrUnsupportedDatabase = errors.New("unsupported database type")

// sqlitePragmas let the api and worker processes share one database file:
// WAL keeps readers off the writer and busy_timeout waits out short locks.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"

// globalDB 全局数据库实例
var globalDB *gorm.DB

// InitDatabase opens the configured database. A disabled database is not an
// error; callers check IsDatabaseInitialized.
// InitDatabase 根据配置初始化数据库连接，数据库禁用时直接返回。
func InitDatabase() error {
	ctx := context.Background()
	cfg := config.Config.Database
	if !cfg.Enabled {
		logger.InfoF(ctx, "[Database] database disabled, skip init / 数据库已禁用")
		return nil
	}

	dbType := cfg.Type
	if dbType == "" {
		dbType = DatabaseTypeSQLite
	}
	dialector, err := openDialector(dbType, cfg)
	if err != nil {
		return fmt.Errorf("[Database] %s: %w", dbType, err)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   newGormLogger(cfg.LogLevel, time.Duration(cfg.SlowThresholdMs)*time.Millisecond),
		// periods and audit timestamps are compared as UTC month boundaries
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return fmt.Errorf("[Database] connect %s failed: %w", dbType, err)
	}
	if err := gdb.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		logger.WarnF(ctx, "[Database] tracing plugin not installed: %v", err)
	}
	if dbType != DatabaseTypeSQLite {
		if err := configurePool(gdb, cfg); err != nil {
			return fmt.Errorf("[Database] configure pool: %w", err)
		}
	}

	globalDB = gdb
	logger.InfoF(ctx, "[Database] connected type=%s", dbType)
	return nil
}

func openDialector(dbType string, cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch dbType {
	case DatabaseTypeSQLite:
		return sqliteDialector(cfg.SQLitePath)
	case DatabaseTypeMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
		logger.InfoF(context.Background(), "[Database] mysql %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
		return mysql.Open(dsn), nil
	case DatabaseTypePostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)
		logger.InfoF(context.Background(), "[Database] postgres %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("%w: %q (want sqlite, mysql or postgres)", ErrUnsupportedDatabase, dbType)
	}
}

// sqliteDialector 创建 SQLite 数据目录并附加共享访问所需的 pragma
func sqliteDialector(path string) (gorm.Dialector, error) {
	if path == "" {
		path = "./data/keldris.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite data dir: %w", err)
	}
	logger.InfoF(context.Background(), "[Database] sqlite %s", path)
	return sqlite.Open(path + "?" + sqlitePragmas), nil
}

func configurePool(gdb *gorm.DB, cfg config.DatabaseConfig) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	if cfg.MaxIdleConn > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConn)
	}
	if cfg.MaxOpenConn > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConn)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	return nil
}

// GetDB 获取带上下文的数据库实例
func GetDB(ctx context.Context) *gorm.DB {
	if globalDB == nil {
		return nil
	}
	return globalDB.WithContext(ctx)
}

// GetGlobalDB 获取全局数据库实例（不带上下文）
func GetGlobalDB() *gorm.DB {
	return globalDB
}

// CloseDatabase releases the connection and clears the global handle.
func CloseDatabase() error {
	if globalDB == nil {
		return nil
	}
	sqlDB, err := globalDB.DB()
	globalDB = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsDatabaseInitialized 检查数据库是否已初始化
func IsDatabaseInitialized() bool {
	return globalDB != nil
}
