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

// Package migrator creates and upgrades the schema of every page's records.
package migrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/MacJediWizard/keldris-sub001/internal/apps/agent"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/backup"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/cost"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/drtest"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/notification"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/ratelimit"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/snapshot"
	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/db"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"gorm.io/gorm"
)

// ErrDatabaseDisabled is returned when database.enabled is false.
var ErrDatabaseDisabled = errors.New("migrator: database is disabled")

// Models lists every table owned by the application, in creation order.
func Models() []any {
	return []any{
		&agent.Agent{},              // Agent 表
		&agent.AgentCommand{},       // Agent 命令表
		&backup.StorageRepository{}, // 存储仓库表
		&backup.Schedule{},
		&backup.ScheduleRepository{},
		&backup.Backup{},
		&backup.Tag{},
		&backup.BackupTag{},
		&snapshot.Snapshot{},     // 快照表
		&snapshot.SnapshotFile{}, // 快照文件清单表
		&cost.CostSample{},       // 月度成本样本表
		&cost.CostAlert{},
		&drtest.DRTest{}, // 灾备演练表
		&ratelimit.RateLimitConfig{},
		&ratelimit.IPBan{},
		&ratelimit.BlockedRequest{},
		&notification.NotificationChannel{},
	}
}

// AutoMigrate runs gorm AutoMigrate for every model on database.
func AutoMigrate(ctx context.Context, database *gorm.DB) error {
	if err := database.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// Migrate opens the configured database and migrates it.
func Migrate(ctx context.Context) error {
	// 先初始化数据库连接
	if !db.IsDatabaseInitialized() {
		if err := db.InitDatabase(); err != nil {
			return fmt.Errorf("init database: %w", err)
		}
	}
	if !db.IsDatabaseInitialized() {
		return ErrDatabaseDisabled
	}

	if err := AutoMigrate(ctx, db.GetDB(ctx)); err != nil {
		return err
	}
	logger.InfoF(ctx, "[Database] auto migrate success, type=%s tables=%d", config.GetDatabaseType(), len(Models()))
	return nil
}
