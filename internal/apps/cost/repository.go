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

package cost

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides data access for cost samples and alerts.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertSample stores a sample, replacing the cost and size of an existing
// sample for the same repository and month.
// UpsertSample 写入月度样本，同一仓库同一月份覆盖更新。
func (r *Repository) UpsertSample(ctx context.Context, s *CostSample) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "repository_id"}, {Name: "period"}},
		DoUpdates: clause.AssignmentColumns([]string{"cost", "size_gb", "updated_at"}),
	}).Create(s).Error
}

// ListSamples returns samples ordered by period. An empty repositoryID
// returns the samples of every repository.
func (r *Repository) ListSamples(ctx context.Context, repositoryID string) ([]*CostSample, error) {
	query := r.db.WithContext(ctx).Model(&CostSample{})
	if repositoryID != "" {
		query = query.Where("repository_id = ?", repositoryID)
	}
	var samples []*CostSample
	if err := query.Order("period ASC").Find(&samples).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

// ListRepositoryIDs returns the distinct repositories that have samples.
func (r *Repository) ListRepositoryIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&CostSample{}).
		Distinct("repository_id").
		Order("repository_id ASC").
		Pluck("repository_id", &ids).Error
	return ids, err
}

// CreateAlert 创建成本告警
func (r *Repository) CreateAlert(ctx context.Context, a *CostAlert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

// ListAlerts returns every cost alert ordered by name.
func (r *Repository) ListAlerts(ctx context.Context) ([]*CostAlert, error) {
	var alerts []*CostAlert
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}
