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

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/apps/backup"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/cost"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/drtest"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/ratelimit"
	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
)

// AgentCounter reports agent counts by status and health.
type AgentCounter interface {
	StatusCounts(ctx context.Context) (status, health map[string]int, err error)
}

// BackupCounter reports backup counts by status since a point in time.
type BackupCounter interface {
	StatusCountsSince(ctx context.Context, since time.Time) (map[string]int, error)
}

// DRSummarizer reports the DR test summary.
type DRSummarizer interface {
	GetSummary(ctx context.Context) (drtest.Summary, error)
}

// RateLimitReporter reports rate limit stats.
type RateLimitReporter interface {
	GetStats(ctx context.Context) (ratelimit.Stats, error)
}

// CostForecaster produces the cost forecast; "" covers every repository.
type CostForecaster interface {
	Forecast(ctx context.Context, repositoryID string, months int) (*cost.ForecastView, error)
}

// Sources groups the page services the overview reads from.
type Sources struct {
	Agents     AgentCounter
	Backups    BackupCounter
	DRTests    DRSummarizer
	RateLimits RateLimitReporter
	Cost       CostForecaster
}

// OverviewService provides dashboard overview statistics.
type OverviewService struct {
	src Sources
	now func() time.Time
}

// NewOverviewService creates a new dashboard overview service.
func NewOverviewService(src Sources) *OverviewService {
	return &OverviewService{src: src, now: time.Now}
}

// GetOverviewData returns complete dashboard overview data.
func (s *OverviewService) GetOverviewData(ctx context.Context) (*OverviewData, error) {
	start := time.Now()
	now := s.now()
	data := &OverviewData{GeneratedAt: now}

	status, health, err := s.src.Agents.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("agent counts: %w", err)
	}
	data.Agents = AgentStats{Total: sum(status), ByStatus: status, ByHealth: health}

	backups, err := s.src.Backups.StatusCountsSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("backup counts: %w", err)
	}
	data.Backups24h = backupStats(backups)

	if data.DRTests, err = s.src.DRTests.GetSummary(ctx); err != nil {
		return nil, fmt.Errorf("dr test summary: %w", err)
	}
	if data.RateLimits, err = s.src.RateLimits.GetStats(ctx); err != nil {
		return nil, fmt.Errorf("rate limit stats: %w", err)
	}

	forecast, err := s.src.Cost.Forecast(ctx, "", 0)
	if err != nil {
		return nil, fmt.Errorf("cost forecast: %w", err)
	}
	data.Cost = CostStats{Status: forecast.Status, CurrentMonthlyCost: forecast.CurrentMonthlyCost}
	if forecast.Sufficient() {
		rate := forecast.MonthlyGrowthRate
		data.Cost.MonthlyGrowthRate = &rate
	}

	metrics.ObserveView("dashboard", start, 1)
	return data, nil
}

// backupStats derives the success rate over finished runs only.
func backupStats(counts map[string]int) BackupStats {
	stats := BackupStats{Total: sum(counts), ByStatus: counts}
	completed := counts[string(backup.BackupStatusCompleted)]
	finished := completed + counts[string(backup.BackupStatusFailed)]
	if finished > 0 {
		rate := float64(completed) / float64(finished) * 100
		stats.SuccessRate = &rate
	}
	return stats
}

func sum(counts map[string]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
