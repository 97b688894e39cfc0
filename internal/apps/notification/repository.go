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

package notification

import (
	"context"

	"gorm.io/gorm"
)

// Repository provides data access for notification channels.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 创建通知渠道（不校验配置）
func (r *Repository) Create(ctx context.Context, c *NotificationChannel) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// List returns every channel ordered by name.
func (r *Repository) List(ctx context.Context) ([]*NotificationChannel, error) {
	var channels []*NotificationChannel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}
