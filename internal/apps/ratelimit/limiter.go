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
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// defaultRule is the bucket key for requests no config matches.
const defaultRule = "*"

// Limiter enforces rate-limit configs and IP bans with one token bucket per
// client IP and matched config. Rules are reloaded from the database at most
// once per refresh interval.
// Limiter 按客户端 IP + 匹配的配置维护令牌桶。
type Limiter struct {
	repo    *Repository
	refresh time.Duration
	now     func() time.Time

	mu       sync.Mutex
	loadedAt time.Time
	rules    []*RateLimitConfig
	bans     map[string]*IPBan
	buckets  map[string]*ratelimit.Bucket
}

// NewLimiter creates a Limiter reading rules through repo.
func NewLimiter(repo *Repository) *Limiter {
	return &Limiter{
		repo:    repo,
		refresh: time.Duration(config.Config.RateLimit.RefreshSeconds) * time.Second,
		now:     time.Now,
		bans:    map[string]*IPBan{},
		buckets: map[string]*ratelimit.Bucket{},
	}
}

// Reload reads configs and active bans. Idle buckets are dropped.
func (l *Limiter) Reload(ctx context.Context) error {
	now := l.now()
	configs, err := l.repo.ListConfigs(ctx)
	if err != nil {
		return err
	}
	bans, err := l.repo.ListActiveBans(ctx, now)
	if err != nil {
		return err
	}

	rules := make([]*RateLimitConfig, 0, len(configs))
	for _, c := range configs {
		if c.Enabled && c.RequestsPerPeriod > 0 && c.PeriodSeconds > 0 {
			rules = append(rules, c)
		}
	}
	banned := make(map[string]*IPBan, len(bans))
	for _, b := range bans {
		banned[b.IPAddress] = b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.rules = rules
	l.bans = banned
	l.loadedAt = now
	for key, bucket := range l.buckets {
		if bucket.Available() >= bucket.Capacity() {
			delete(l.buckets, key)
		}
	}
	return nil
}

// coversPath reports whether endpoint is path or one of its segment prefixes:
// "/api/v1/backup" covers "/api/v1/backup/1" but not "/api/v1/backups".
func coversPath(endpoint, path string) bool {
	base := strings.TrimSuffix(endpoint, "/")
	return path == base || strings.HasPrefix(path, base+"/")
}

// match returns the enabled rule with the longest endpoint covering path.
func (l *Limiter) match(path string) *RateLimitConfig {
	var best *RateLimitConfig
	for _, r := range l.rules {
		if !coversPath(r.Endpoint, path) {
			continue
		}
		if best == nil || len(r.Endpoint) > len(best.Endpoint) {
			best = r
		}
	}
	return best
}

// bucket returns the bucket for ip under rule, creating it on first use.
// The key carries the quota so an edited rule starts a fresh bucket.
func (l *Limiter) bucket(ip string, rule *RateLimitConfig) *ratelimit.Bucket {
	var key string
	if rule == nil {
		key = ip + "|" + defaultRule
	} else {
		key = fmt.Sprintf("%s|%s|%d/%d", ip, rule.ID, rule.RequestsPerPeriod, rule.PeriodSeconds)
	}
	if b, ok := l.buckets[key]; ok {
		return b
	}

	var b *ratelimit.Bucket
	if rule == nil {
		rl := config.Config.RateLimit
		b = ratelimit.NewBucketWithRate(float64(rl.DefaultPerSecond), max(int64(rl.DefaultBurst), 1))
	} else {
		period := time.Duration(rule.PeriodSeconds) * time.Second
		n := int64(rule.RequestsPerPeriod)
		b = ratelimit.NewBucketWithQuantum(period, n, n)
	}
	l.buckets[key] = b
	return b
}

// check returns the block reason for the request, or "" when it may pass.
func (l *Limiter) check(ctx context.Context, ip, path string) string {
	now := l.now()
	l.mu.Lock()
	stale := l.loadedAt.IsZero() || now.Sub(l.loadedAt) >= l.refresh
	l.mu.Unlock()
	if stale {
		if err := l.Reload(ctx); err != nil {
			logger.WarnF(ctx, "[RateLimit] reload rules failed, keeping previous rules: %v", err)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if ban, ok := l.bans[ip]; ok && ban.IsActive(now) {
		return ReasonIPBanned
	}
	rule := l.match(path)
	if rule == nil && config.Config.RateLimit.DefaultPerSecond <= 0 {
		return ""
	}
	if l.bucket(ip, rule).TakeAvailable(1) == 0 {
		return ReasonRateLimited
	}
	return ""
}

// Middleware rejects banned clients with 403 and over-quota clients with 429.
// Every rejection is stored as a BlockedRequest.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ip := c.ClientIP()
		path := c.Request.URL.Path

		reason := l.check(ctx, ip, path)
		if reason == "" {
			c.Next()
			return
		}

		metrics.RateLimitBlocked.WithLabelValues(reason).Inc()
		blocked := &BlockedRequest{IPAddress: ip, Endpoint: path, Reason: reason, BlockedAt: l.now()}
		if err := l.repo.RecordBlocked(ctx, blocked); err != nil {
			logger.ErrorF(ctx, "[RateLimit] record blocked request failed: %v", err)
		}

		status, err := http.StatusTooManyRequests, ErrTooManyRequests
		if reason == ReasonIPBanned {
			status, err = http.StatusForbidden, ErrIPBanned
		}
		c.AbortWithStatusJSON(status, gin.H{"error_msg": err.Error(), "data": nil})
	}
}
