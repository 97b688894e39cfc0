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
	"path/filepath"
	"testing"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

// withDatabaseConfig swaps the database section for the duration of a test.
func withDatabaseConfig(t *testing.T) {
	old := config.Config.Database
	t.Cleanup(func() {
		_ = CloseDatabase()
		globalDB = nil
		config.Config.Database = old
	})
}

// TestProperty_DatabaseInitConsistency 对于任意合法的 SQLite 文件名，初始化应成功且可用
func TestProperty_DatabaseInitConsistency(t *testing.T) {
	withDatabaseConfig(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(42)

	properties := gopter.NewProperties(parameters)

	properties.Property("SQLite 初始化一致性", prop.ForAll(
		func(filename string) bool {
			config.Config.Database = config.DatabaseConfig{
				Enabled:    true,
				Type:       DatabaseTypeSQLite,
				SQLitePath: filepath.Join(t.TempDir(), "nested", filename+".db"),
				LogLevel:   "silent",
			}
			globalDB = nil

			if err := InitDatabase(); err != nil {
				t.Logf("初始化数据库失败: %v", err)
				return false
			}
			defer CloseDatabase()

			if !IsDatabaseInitialized() || GetGlobalDB() == nil {
				return false
			}
			if GetDB(context.Background()) == nil {
				return false
			}
			return config.GetDatabaseType() == DatabaseTypeSQLite
		},
		gen.RegexMatch("[a-zA-Z][a-zA-Z0-9]{0,19}"),
	))

	properties.TestingRun(t)
}

// TestProperty_UnsupportedDatabaseType 不支持的数据库类型应返回错误
func TestProperty_UnsupportedDatabaseType(t *testing.T) {
	withDatabaseConfig(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	parameters.Rng.Seed(42)

	properties := gopter.NewProperties(parameters)

	properties.Property("不支持的数据库类型应返回错误", prop.ForAll(
		func(dbType string) bool {
			config.Config.Database = config.DatabaseConfig{Enabled: true, Type: dbType, LogLevel: "silent"}
			globalDB = nil
			return errors.Is(InitDatabase(), ErrUnsupportedDatabase)
		},
		gen.Identifier().SuchThat(func(s string) bool {
			return s != DatabaseTypeSQLite && s != DatabaseTypeMySQL && s != DatabaseTypePostgres && s != ""
		}),
	))

	properties.TestingRun(t)
}

func TestInitDatabase_DefaultsToSQLite(t *testing.T) {
	withDatabaseConfig(t)
	config.Config.Database = config.DatabaseConfig{
		Enabled:    true,
		SQLitePath: filepath.Join(t.TempDir(), "default.db"),
		LogLevel:   "silent",
	}
	globalDB = nil

	if err := InitDatabase(); err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	if !IsDatabaseInitialized() {
		t.Fatal("expected database to be initialized")
	}
}

func TestInitDatabase_Disabled(t *testing.T) {
	withDatabaseConfig(t)
	config.Config.Database = config.DatabaseConfig{Enabled: false}
	globalDB = nil

	if err := InitDatabase(); err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	if IsDatabaseInitialized() {
		t.Fatal("disabled database must not open a connection")
	}
}

func TestInitDatabase_SQLiteSharedAccess(t *testing.T) {
	withDatabaseConfig(t)
	config.Config.Database = config.DatabaseConfig{
		Enabled:    true,
		Type:       DatabaseTypeSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "data", "keldris.db"),
		LogLevel:   "silent",
	}
	globalDB = nil
	require.NoError(t, InitDatabase())

	var mode string
	require.NoError(t, GetDB(context.Background()).Raw("PRAGMA journal_mode").Scan(&mode).Error)
	assert.Equal(t, "wal", mode)
	var timeout int
	require.NoError(t, GetDB(context.Background()).Raw("PRAGMA busy_timeout").Scan(&timeout).Error)
	assert.Equal(t, 5000, timeout)

	require.NoError(t, CloseDatabase())
	assert.False(t, IsDatabaseInitialized())
	assert.NoError(t, CloseDatabase())
}

func TestGormLogger_Levels(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, parseGormLevel("silent"))
	assert.Equal(t, gormlogger.Error, parseGormLevel("error"))
	assert.Equal(t, gormlogger.Info, parseGormLevel("info"))
	assert.Equal(t, gormlogger.Warn, parseGormLevel("warn"))
	assert.Equal(t, gormlogger.Warn, parseGormLevel("verbose"))

	l := newGormLogger("warn", 0)
	quiet := l.LogMode(gormlogger.Silent).(*gormZapLogger)
	assert.Equal(t, gormlogger.Silent, quiet.level)
	assert.Equal(t, gormlogger.Warn, l.level, "LogMode returns a copy")
}

func TestGormLogger_Classify(t *testing.T) {
	l := newGormLogger("info", 100*time.Millisecond)

	assert.Equal(t, gormlogger.Error, l.classify(time.Millisecond, errors.New("syntax error")))
	assert.Equal(t, gormlogger.Info, l.classify(time.Millisecond, gormlogger.ErrRecordNotFound))
	assert.Equal(t, gormlogger.Warn, l.classify(time.Second, nil))
	assert.Equal(t, gormlogger.Info, l.classify(time.Millisecond, nil))

	off := newGormLogger("info", 0)
	assert.Equal(t, gormlogger.Info, off.classify(time.Hour, nil))

	// before logger.Init the process logger is a no-op
	off.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
}
