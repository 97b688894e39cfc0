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

// Package backup serves the backups, schedules and tags pages.
// backup 包提供备份、计划与标签页面的视图模型。
package backup

import (
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/badge"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BackupStatus is the lifecycle state of a backup run.
type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusRunning   BackupStatus = "running"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
	BackupStatusCanceled  BackupStatus = "canceled"
)

// Backup is one backup run of a schedule on an agent.
type Backup struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36"`
	AgentID      string       `json:"agent_id" gorm:"size:36;index;not null"`
	ScheduleID   string       `json:"schedule_id" gorm:"size:36;index"`
	RepositoryID string       `json:"repository_id" gorm:"size:36;index"`
	SnapshotID   string       `json:"snapshot_id" gorm:"size:64"`
	Status       BackupStatus `json:"status" gorm:"size:20;default:pending;index"`
	SizeBytes    *int64       `json:"size_bytes"`
	FilesNew     *int         `json:"files_new"`
	FilesChanged *int         `json:"files_changed"`
	ErrorMessage string       `json:"error_message" gorm:"type:text"`
	StartedAt    time.Time    `json:"started_at"`
	CompletedAt  *time.Time   `json:"completed_at"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for the Backup model.
func (Backup) TableName() string {
	return "backups"
}

// BeforeCreate assigns a UUID when the caller did not.
func (b *Backup) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// RepositoryType is the storage backend of a backup repository.
type RepositoryType string

const (
	RepositoryLocal RepositoryType = "local"
	RepositoryS3    RepositoryType = "s3"
	RepositoryB2    RepositoryType = "b2"
	RepositorySFTP  RepositoryType = "sftp"
	RepositoryREST  RepositoryType = "rest"
)

// StorageRepository is a backup destination.
// StorageRepository 备份存储仓库
type StorageRepository struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	Name      string         `json:"name" gorm:"size:100;not null"`
	Type      RepositoryType `json:"type" gorm:"size:20"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the StorageRepository model.
func (StorageRepository) TableName() string {
	return "repositories"
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *StorageRepository) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Schedule is a cron-driven backup plan of an agent.
type Schedule struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	AgentID        string    `json:"agent_id" gorm:"size:36;index"`
	Name           string    `json:"name" gorm:"size:100;not null"`
	CronExpression string    `json:"cron_expression" gorm:"size:100"`
	Paths          []string  `json:"paths" gorm:"serializer:json;type:text"`
	Enabled        bool      `json:"enabled"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Schedule model.
func (Schedule) TableName() string {
	return "schedules"
}

// BeforeCreate assigns a UUID when the caller did not.
func (s *Schedule) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ScheduleRepository links a schedule to one of its destinations. The
// lowest priority value among enabled links is the primary repository.
type ScheduleRepository struct {
	ScheduleID   string `json:"schedule_id" gorm:"primaryKey;size:36"`
	RepositoryID string `json:"repository_id" gorm:"primaryKey;size:36"`
	Priority     int    `json:"priority"`
	Enabled      bool   `json:"enabled"`
}

// TableName specifies the table name for the ScheduleRepository model.
func (ScheduleRepository) TableName() string {
	return "schedule_repositories"
}

// Tag labels backups.
type Tag struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Name      string    `json:"name" gorm:"size:50;uniqueIndex;not null"`
	Color     string    `json:"color" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the Tag model.
func (Tag) TableName() string {
	return "tags"
}

// BeforeCreate assigns a UUID when the caller did not.
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// BackupTag 备份与标签的关联
type BackupTag struct {
	BackupID string `json:"backup_id" gorm:"primaryKey;size:36"`
	TagID    string `json:"tag_id" gorm:"primaryKey;size:36;index"`
}

// TableName specifies the table name for the BackupTag model.
func (BackupTag) TableName() string {
	return "backup_tags"
}

// TagInfo is a tag as rendered on a backup row or in the tag list.
type TagInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	UsageCount int    `json:"usage_count,omitempty"`
}

// BackupInfo is the render-ready row of the backups table.
type BackupInfo struct {
	ID              string     `json:"id"`
	AgentID         string     `json:"agent_id"`
	AgentHostname   string     `json:"agent_hostname"`
	ScheduleID      string     `json:"schedule_id"`
	RepositoryID    string     `json:"repository_id"`
	RepositoryName  string     `json:"repository_name"`
	SnapshotID      string     `json:"snapshot_id"`
	Status          badge.View `json:"status"`
	SizeBytes       *int64     `json:"size_bytes"`
	FilesNew        *int       `json:"files_new"`
	FilesChanged    *int       `json:"files_changed"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	DurationSeconds *float64   `json:"duration_seconds"`
	Tags            []TagInfo  `json:"tags"`
	CreatedAt       time.Time  `json:"created_at"`
}

// BackupListView is the backups page payload.
type BackupListView struct {
	Total   int            `json:"total"`
	Counts  map[string]int `json:"counts"`
	Backups []*BackupInfo  `json:"backups"`
}

// RepositoryRef names a resolved repository.
type RepositoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScheduleInfo is the render-ready row of the schedules table.
type ScheduleInfo struct {
	ID                string         `json:"id"`
	Name              string         `json:"name"`
	AgentID           string         `json:"agent_id"`
	AgentHostname     string         `json:"agent_hostname"`
	CronExpression    string         `json:"cron_expression"`
	Paths             []string       `json:"paths"`
	Enabled           bool           `json:"enabled"`
	PrimaryRepository *RepositoryRef `json:"primary_repository"`
	RepositoryCount   int            `json:"repository_count"`
	NextRun           *time.Time     `json:"next_run"`
	CronError         string         `json:"cron_error,omitempty"`
}
