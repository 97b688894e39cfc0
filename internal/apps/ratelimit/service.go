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
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
)

var configSchema = collection.Schema[*RateLimitConfig]{
	Search: func(c *RateLimitConfig) string { return c.Endpoint },
	Enums: map[string]func(*RateLimitConfig) string{
		"enabled": func(c *RateLimitConfig) string {
			if c.Enabled {
				return "true"
			}
			return "false"
		},
	},
}

// Service derives the rate limits page.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a new Service instance.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Repo exposes the repository to the limiter.
func (s *Service) Repo() *Repository {
	return s.repo
}

// View builds the page. Stats cover every config, not only the filtered ones.
func (s *Service) View(ctx context.Context, state collection.FilterState) (*RateLimitView, error) {
	start := time.Now()
	now := s.now()

	configs, err := s.repo.ListConfigs(ctx)
	if err != nil {
		return nil, err
	}
	filtered, err := collection.Apply(configs, configSchema, state, now)
	if err != nil {
		return nil, err
	}
	bans, err := s.repo.ListActiveBans(ctx, now)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.ListBlocked(ctx, config.Config.View.RecentBlockedLimit)
	if err != nil {
		return nil, err
	}
	stats, today, err := s.stats(ctx, configs, bans, now)
	if err != nil {
		return nil, err
	}

	view := &RateLimitView{
		Stats:          stats,
		Configs:        filtered,
		ActiveBans:     bans,
		RecentBlocked:  recent,
		BlockedReasons: collection.CountBy(today, func(b *BlockedRequest) string { return b.Reason }),
	}
	metrics.ObserveView("rate_limits", start, len(filtered))
	return view, nil
}

// GetStats returns the page stats for the dashboard.
func (s *Service) GetStats(ctx context.Context) (Stats, error) {
	now := s.now()
	configs, err := s.repo.ListConfigs(ctx)
	if err != nil {
		return Stats{}, err
	}
	bans, err := s.repo.ListActiveBans(ctx, now)
	if err != nil {
		return Stats{}, err
	}
	stats, _, err := s.stats(ctx, configs, bans, now)
	return stats, err
}

func (s *Service) stats(ctx context.Context, configs []*RateLimitConfig, bans []*IPBan, now time.Time) (Stats, []*BlockedRequest, error) {
	today, err := s.repo.ListBlockedSince(ctx, collection.StartOfDay(now))
	if err != nil {
		return Stats{}, nil, err
	}
	return Stats{
		BlockedToday:  len(today),
		ActiveConfigs: collection.CountIf(configs, func(c *RateLimitConfig) bool { return c.Enabled }),
		ActiveBans:    len(bans),
	}, today, nil
}
