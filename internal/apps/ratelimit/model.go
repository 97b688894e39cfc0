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

// Package ratelimit serves the rate limits page and enforces the configured
// limits on the API with token buckets.
// ratelimit 包提供限流配置页面，并以令牌桶对 API 进行限流。
package ratelimit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RateLimitConfig limits requests to endpoints under a path prefix.
type RateLimitConfig struct {
	ID                string    `json:"id" gorm:"primaryKey;size:36"`
	Endpoint          string    `json:"endpoint" gorm:"size:255;not null"`
	RequestsPerPeriod int       `json:"requests_per_period"`
	PeriodSeconds     int       `json:"period_seconds"`
	Enabled           bool      `json:"enabled"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the RateLimitConfig model.
func (RateLimitConfig) TableName() string {
	return "rate_limit_configs"
}

// BeforeCreate assigns a UUID when the caller did not.
func (c *RateLimitConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// IPBan blocks an address until ExpiresAt; a nil ExpiresAt never expires.
type IPBan struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	IPAddress string     `json:"ip_address" gorm:"size:45;index;not null"`
	Reason    string     `json:"reason" gorm:"size:255"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the IPBan model.
func (IPBan) TableName() string {
	return "ip_bans"
}

// BeforeCreate assigns a UUID when the caller did not.
func (b *IPBan) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// IsActive reports whether the ban applies at now.
func (b *IPBan) IsActive(now time.Time) bool {
	return b.ExpiresAt == nil || b.ExpiresAt.After(now)
}

// BlockedRequest records a request refused by the limiter.
type BlockedRequest struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	IPAddress string    `json:"ip_address" gorm:"size:45;index"`
	Endpoint  string    `json:"endpoint" gorm:"size:255"`
	Reason    string    `json:"reason" gorm:"size:30"`
	BlockedAt time.Time `json:"blocked_at" gorm:"index"`
}

// TableName specifies the table name for the BlockedRequest model.
func (BlockedRequest) TableName() string {
	return "blocked_requests"
}

// Stats summarises the rate limits page.
type Stats struct {
	BlockedToday  int `json:"blocked_today"`
	ActiveConfigs int `json:"active_configs"`
	ActiveBans    int `json:"active_bans"`
}

// RateLimitView is the rate limits page payload.
type RateLimitView struct {
	Stats          Stats              `json:"stats"`
	Configs        []*RateLimitConfig `json:"configs"`
	ActiveBans     []*IPBan           `json:"active_bans"`
	RecentBlocked  []*BlockedRequest  `json:"recent_blocked"`
	BlockedReasons map[string]int     `json:"blocked_reasons"`
}
