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

// Package snapshot serves the snapshots page and the snapshot compare view.
// snapshot 包提供快照列表与快照对比视图。
package snapshot

import (
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/badge"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/snapshotdiff"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Snapshot is an immutable point-in-time copy produced by a backup.
type Snapshot struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	ShortID      string    `json:"short_id" gorm:"size:16;index"`
	AgentID      string    `json:"agent_id" gorm:"size:36;index"`
	RepositoryID string    `json:"repository_id" gorm:"size:36;index"`
	BackupID     string    `json:"backup_id" gorm:"size:36"`
	Hostname     string    `json:"hostname" gorm:"size:255"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for the Snapshot model.
func (Snapshot) TableName() string {
	return "snapshots"
}

// BeforeCreate assigns a UUID and a short id when the caller did not.
func (s *Snapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.ShortID == "" && len(s.ID) >= 8 {
		s.ShortID = s.ID[:8]
	}
	return nil
}

// SnapshotFile is one manifest entry of a snapshot.
// SnapshotFile 快照文件清单中的一项
type SnapshotFile struct {
	ID         uint                   `json:"id" gorm:"primaryKey;autoIncrement"`
	SnapshotID string                 `json:"snapshot_id" gorm:"size:36;index;not null"`
	Path       string                 `json:"path" gorm:"size:4096;not null"`
	Type       snapshotdiff.EntryType `json:"type" gorm:"size:10;not null"`
	Size       int64                  `json:"size"`
	Hash       string                 `json:"hash" gorm:"size:128"`
}

// TableName specifies the table name for the SnapshotFile model.
func (SnapshotFile) TableName() string {
	return "snapshot_files"
}

// ToEntry converts the row into a manifest entry.
func (f *SnapshotFile) ToEntry() snapshotdiff.Entry {
	return snapshotdiff.Entry{Path: f.Path, Type: f.Type, Size: f.Size, Hash: f.Hash}
}

// SnapshotInfo is the render-ready snapshot header.
type SnapshotInfo struct {
	ID           string    `json:"id"`
	ShortID      string    `json:"short_id"`
	AgentID      string    `json:"agent_id"`
	RepositoryID string    `json:"repository_id"`
	Hostname     string    `json:"hostname"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToSnapshotInfo converts a Snapshot to its header view.
func (s *Snapshot) ToSnapshotInfo() *SnapshotInfo {
	return &SnapshotInfo{
		ID:           s.ID,
		ShortID:      s.ShortID,
		AgentID:      s.AgentID,
		RepositoryID: s.RepositoryID,
		Hostname:     s.Hostname,
		SizeBytes:    s.SizeBytes,
		CreatedAt:    s.CreatedAt,
	}
}

// SnapshotListView is the snapshots page payload.
type SnapshotListView struct {
	Total     int             `json:"total"`
	Snapshots []*SnapshotInfo `json:"snapshots"`
}

// ChangeInfo is a diff row with its change-type badge.
type ChangeInfo struct {
	snapshotdiff.Change
	Badge badge.View `json:"badge"`
}

// CompareView is the snapshot compare page payload. Stats always describe
// the full diff; Changes honour the change-type and path filters.
type CompareView struct {
	Snapshot1 *SnapshotInfo      `json:"snapshot1"`
	Snapshot2 *SnapshotInfo      `json:"snapshot2"`
	Identical bool               `json:"identical"`
	Stats     snapshotdiff.Stats `json:"stats"`
	Total     int                `json:"total"`
	Changes   []ChangeInfo       `json:"changes"`
}
