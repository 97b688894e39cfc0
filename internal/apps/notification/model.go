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

// Package notification serves the notification channels page. Each channel
// stores a type-specific config as JSON which is decoded and validated on read.
// notification 包提供通知渠道页面，按渠道类型解析并校验配置。
package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChannelType names the config variant stored on a channel.
type ChannelType string

const (
	TypeEmail     ChannelType = "email"
	TypeSlack     ChannelType = "slack"
	TypeWebhook   ChannelType = "webhook"
	TypePagerDuty ChannelType = "pagerduty"
	TypeTeams     ChannelType = "teams"
	TypeDiscord   ChannelType = "discord"
)

// NotificationChannel is a configured destination for alerts.
type NotificationChannel struct {
	ID         string      `json:"id" gorm:"primaryKey;size:36"`
	Name       string      `json:"name" gorm:"size:255;not null"`
	Type       ChannelType `json:"type" gorm:"size:20;index;not null"`
	Enabled    bool        `json:"enabled"`
	ConfigJSON string      `json:"-" gorm:"column:config_json;type:text"`
	CreatedAt  time.Time   `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the NotificationChannel model.
func (NotificationChannel) TableName() string {
	return "notification_channels"
}

// BeforeCreate assigns a UUID when the caller did not.
func (c *NotificationChannel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ChannelInfo is a channel row with its decoded, masked config.
// ConfigError is set instead of Config when the stored config is unusable.
type ChannelInfo struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Type        ChannelType   `json:"type"`
	Enabled     bool          `json:"enabled"`
	Config      ChannelConfig `json:"config,omitempty"`
	Summary     string        `json:"summary"`
	ConfigError string        `json:"config_error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ChannelListView is the channels page payload. Counts cover every channel.
type ChannelListView struct {
	Total    int            `json:"total"`
	Counts   map[string]int `json:"counts"`
	Invalid  int            `json:"invalid"`
	Channels []*ChannelInfo `json:"channels"`
}

// CreateChannelRequest is the body of POST /api/v1/notifications/channels.
type CreateChannelRequest struct {
	Name    string          `json:"name" binding:"required"`
	Type    ChannelType     `json:"type" binding:"required"`
	Enabled bool            `json:"enabled"`
	Config  json.RawMessage `json:"config" binding:"required"`
}
