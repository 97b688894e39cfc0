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

package backup

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides data access for backups, storage repositories,
// schedules and tags.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ==================== Backups 备份 ====================

// CreateBackup 创建备份记录
func (r *Repository) CreateBackup(ctx context.Context, b *Backup) error {
	if b.AgentID == "" {
		return ErrBackupAgentMissing
	}
	return r.db.WithContext(ctx).Create(b).Error
}

// GetBackup retrieves a backup by ID.
// Returns ErrBackupNotFound if the backup does not exist.
func (r *Repository) GetBackup(ctx context.Context, id string) (*Backup, error) {
	var b Backup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBackupNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListBackups returns every backup, newest first.
func (r *Repository) ListBackups(ctx context.Context) ([]*Backup, error) {
	var backups []*Backup
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&backups).Error; err != nil {
		return nil, err
	}
	return backups, nil
}

// ListBackupsSince returns backups created at or after since.
func (r *Repository) ListBackupsSince(ctx context.Context, since time.Time) ([]*Backup, error) {
	var backups []*Backup
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Find(&backups).Error
	if err != nil {
		return nil, err
	}
	return backups, nil
}

// ==================== Storage repositories 存储仓库 ====================

// CreateRepository 创建存储仓库
func (r *Repository) CreateRepository(ctx context.Context, repo *StorageRepository) error {
	if repo.Name == "" {
		return ErrRepositoryNameEmpty
	}
	return r.db.WithContext(ctx).Create(repo).Error
}

// ListRepositories returns every storage repository ordered by name.
func (r *Repository) ListRepositories(ctx context.Context) ([]*StorageRepository, error) {
	var repos []*StorageRepository
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&repos).Error; err != nil {
		return nil, err
	}
	return repos, nil
}

// ==================== Schedules 备份计划 ====================

// CreateSchedule 创建备份计划
func (r *Repository) CreateSchedule(ctx context.Context, s *Schedule) error {
	if s.Name == "" {
		return ErrScheduleNameEmpty
	}
	return r.db.WithContext(ctx).Create(s).Error
}

// ListSchedules returns every schedule ordered by name.
func (r *Repository) ListSchedules(ctx context.Context) ([]*Schedule, error) {
	var schedules []*Schedule
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// SetScheduleRepository inserts or updates the link between a schedule and a repository.
// SetScheduleRepository 写入或更新计划与仓库的关联（优先级、启用状态）。
func (r *Repository) SetScheduleRepository(ctx context.Context, link *ScheduleRepository) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "schedule_id"}, {Name: "repository_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"priority", "enabled"}),
	}).Create(link).Error
}

// ListScheduleRepositories returns every schedule-repository link.
func (r *Repository) ListScheduleRepositories(ctx context.Context) ([]*ScheduleRepository, error) {
	var links []*ScheduleRepository
	if err := r.db.WithContext(ctx).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// ==================== Tags 标签 ====================

// CreateTag 创建标签
func (r *Repository) CreateTag(ctx context.Context, t *Tag) error {
	if t.Name == "" {
		return ErrTagNameEmpty
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&Tag{}).Where("name = ?", t.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrTagNameDuplicate
	}
	return r.db.WithContext(ctx).Create(t).Error
}

// ListTags returns every tag ordered by name.
func (r *Repository) ListTags(ctx context.Context) ([]*Tag, error) {
	var tags []*Tag
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// AttachTag tags a backup; attaching twice is a no-op.
func (r *Repository) AttachTag(ctx context.Context, backupID, tagID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&BackupTag{BackupID: backupID, TagID: tagID}).Error
}

// ListBackupTags returns every backup-tag link.
func (r *Repository) ListBackupTags(ctx context.Context) ([]*BackupTag, error) {
	var links []*BackupTag
	if err := r.db.WithContext(ctx).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}
