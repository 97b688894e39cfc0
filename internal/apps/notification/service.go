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
	"strconv"
	"strings"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
)

var channelSchema = collection.Schema[*ChannelInfo]{
	Search: func(c *ChannelInfo) string { return c.Name + "\n" + c.Summary },
	Enums: map[string]func(*ChannelInfo) string{
		"type":    func(c *ChannelInfo) string { return string(c.Type) },
		"enabled": func(c *ChannelInfo) string { return strconv.FormatBool(c.Enabled) },
	},
	CreatedAt: func(c *ChannelInfo) time.Time { return c.CreatedAt },
}

// Service derives the notification channels page.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a new Service instance.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ToInfo decodes the stored config. A config that fails to decode or
// validate yields ConfigError and no Config.
func (c *NotificationChannel) ToInfo() *ChannelInfo {
	info := &ChannelInfo{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		Enabled:   c.Enabled,
		CreatedAt: c.CreatedAt,
	}
	cfg, err := DecodeConfig(c.Type, []byte(c.ConfigJSON))
	if err != nil {
		info.ConfigError = err.Error()
		return info
	}
	info.Config = cfg.Masked()
	info.Summary = cfg.Summary()
	return info
}

// List decodes every channel and filters by state.
func (s *Service) List(ctx context.Context, state collection.FilterState) (*ChannelListView, error) {
	start := time.Now()
	channels, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]*ChannelInfo, 0, len(channels))
	for _, c := range channels {
		info := c.ToInfo()
		if info.ConfigError != "" {
			logger.WarnF(ctx, "[Notification] channel %s has unusable config: %s", c.ID, info.ConfigError)
		}
		infos = append(infos, info)
	}

	filtered, err := collection.Apply(infos, channelSchema, state, s.now())
	if err != nil {
		return nil, err
	}
	view := &ChannelListView{
		Total:    len(filtered),
		Counts:   collection.CountBy(infos, func(c *ChannelInfo) string { return string(c.Type) }),
		Invalid:  collection.CountIf(infos, func(c *ChannelInfo) bool { return c.ConfigError != "" }),
		Channels: filtered,
	}
	metrics.ObserveView("notification_channels", start, len(filtered))
	return view, nil
}

// CreateChannel validates the config before storing the channel.
func (s *Service) CreateChannel(ctx context.Context, req *CreateChannelRequest) (*ChannelInfo, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrChannelNameEmpty
	}
	if _, err := DecodeConfig(req.Type, req.Config); err != nil {
		return nil, err
	}

	ch := &NotificationChannel{
		Name:       name,
		Type:       req.Type,
		Enabled:    req.Enabled,
		ConfigJSON: string(req.Config),
	}
	if err := s.repo.Create(ctx, ch); err != nil {
		return nil, err
	}
	logger.InfoF(ctx, "[Notification] created %s channel %q", ch.Type, ch.Name)
	return ch.ToInfo(), nil
}
