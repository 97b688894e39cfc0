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

package ratelimit

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Repository provides data access for rate-limit configs, bans and blocked requests.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateConfig 创建限流配置
func (r *Repository) CreateConfig(ctx context.Context, c *RateLimitConfig) error {
	if strings.TrimSpace(c.Endpoint) == "" || c.RequestsPerPeriod <= 0 || c.PeriodSeconds <= 0 {
		return ErrInvalidConfig
	}
	return r.db.WithContext(ctx).Create(c).Error
}

// ListConfigs returns every config ordered by endpoint.
func (r *Repository) ListConfigs(ctx context.Context) ([]*RateLimitConfig, error) {
	var configs []*RateLimitConfig
	if err := r.db.WithContext(ctx).Order("endpoint ASC").Find(&configs).Error; err != nil {
		return nil, err
	}
	return configs, nil
}

// CreateBan 创建 IP 封禁
func (r *Repository) CreateBan(ctx context.Context, b *IPBan) error {
	if strings.TrimSpace(b.IPAddress) == "" {
		return ErrInvalidIP
	}
	return r.db.WithContext(ctx).Create(b).Error
}

// ListActiveBans returns bans that have not expired at now.
func (r *Repository) ListActiveBans(ctx context.Context, now time.Time) ([]*IPBan, error) {
	var bans []*IPBan
	err := r.db.WithContext(ctx).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		Find(&bans).Error
	if err != nil {
		return nil, err
	}
	return bans, nil
}

// RecordBlocked 记录被拦截的请求
func (r *Repository) RecordBlocked(ctx context.Context, b *BlockedRequest) error {
	return r.db.WithContext(ctx).Create(b).Error
}

// ListBlocked returns the most recent blocked requests.
func (r *Repository) ListBlocked(ctx context.Context, limit int) ([]*BlockedRequest, error) {
	var blocked []*BlockedRequest
	err := r.db.WithContext(ctx).Order("blocked_at DESC").Limit(limit).Find(&blocked).Error
	if err != nil {
		return nil, err
	}
	return blocked, nil
}

// ListBlockedSince returns blocked requests at or after since.
func (r *Repository) ListBlockedSince(ctx context.Context, since time.Time) ([]*BlockedRequest, error) {
	var blocked []*BlockedRequest
	err := r.db.WithContext(ctx).Where("blocked_at >= ?", since).Find(&blocked).Error
	if err != nil {
		return nil, err
	}
	return blocked, nil
}
