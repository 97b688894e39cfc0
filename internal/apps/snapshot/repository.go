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

package snapshot

import (
	"context"
	"errors"

	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/snapshotdiff"
	"gorm.io/gorm"
)

// Repository provides data access for snapshots and their manifests.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a snapshot with its manifest in one transaction.
// Create 在同一事务中写入快照及其文件清单。
func (r *Repository) Create(ctx context.Context, s *Snapshot, files []*SnapshotFile) error {
	for _, f := range files {
		if f.Type != snapshotdiff.EntryFile && f.Type != snapshotdiff.EntryDir {
			return ErrInvalidEntryType
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(s).Error; err != nil {
			return err
		}
		if len(files) == 0 {
			return nil
		}
		for _, f := range files {
			f.SnapshotID = s.ID
		}
		return tx.CreateInBatches(files, 500).Error
	})
}

// GetByID retrieves a snapshot by ID.
// Returns ErrSnapshotNotFound if the snapshot does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*Snapshot, error) {
	var s Snapshot
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns every snapshot, newest first.
func (r *Repository) List(ctx context.Context) ([]*Snapshot, error) {
	var snapshots []*Snapshot
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// ListFiles returns the manifest of a snapshot in insertion order.
func (r *Repository) ListFiles(ctx context.Context, snapshotID string) ([]*SnapshotFile, error) {
	var files []*SnapshotFile
	if err := r.db.WithContext(ctx).Where("snapshot_id = ?", snapshotID).Order("id ASC").Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}
