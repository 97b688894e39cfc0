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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/cache"
	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
	"github.com/MacJediWizard/keldris-sub001/internal/otel_trace"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/costforecast"
	"github.com/MacJediWizard/keldris-sub001/internal/worker"
	"github.com/hibiken/asynq"
)

const forecastKeyPrefix = "forecast:"

// Enqueuer hands forecast refreshes to the background worker.
type Enqueuer interface {
	EnqueueForecastRefresh(ctx context.Context, p worker.ForecastRefreshPayload) error
}

// Service derives cost page view-models.
// Service 负责成本预测与告警视图的计算，预测结果经缓存读取。
type Service struct {
	repo     *Repository
	cache    cache.Store
	enqueuer Enqueuer // nil when the worker is disabled
}

// NewService creates a new Service instance. enqueuer may be nil, in which
// case ingesting a sample invalidates cached forecasts synchronously.
func NewService(repo *Repository, store cache.Store, enqueuer Enqueuer) *Service {
	return &Service{repo: repo, cache: store, enqueuer: enqueuer}
}

func forecastKey(repositoryID string, months int) string {
	scope := repositoryID
	if scope == "" {
		scope = collection.All
	}
	return fmt.Sprintf("%s%s:%d", forecastKeyPrefix, scope, months)
}

// Forecast projects monthly cost for repositoryID (empty means every
// repository) over months. months <= 0 selects the configured horizon.
// Results are read through the cache.
func (s *Service) Forecast(ctx context.Context, repositoryID string, months int) (*ForecastView, error) {
	if months <= 0 {
		months = config.Config.View.ForecastHorizonMonths
	}
	if months < 1 || months > MaxHorizonMonths {
		return nil, ErrInvalidHorizon
	}

	key := forecastKey(repositoryID, months)
	var cached ForecastView
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return &cached, nil
	case errors.Is(err, cache.ErrKeyNotFound), errors.Is(err, cache.ErrExpired):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.WarnF(ctx, "[Cost] read forecast cache failed: %v", err)
	}

	view, err := s.computeForecast(ctx, repositoryID, months)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, view, config.ForecastCacheTTL()); err != nil {
		logger.WarnF(ctx, "[Cost] write forecast cache failed: %v", err)
	}
	return view, nil
}

func (s *Service) computeForecast(ctx context.Context, repositoryID string, months int) (*ForecastView, error) {
	ctx, span := otel_trace.Start(ctx, "cost.computeForecast")
	defer span.End()
	start := time.Now()
	rows, err := s.repo.ListSamples(ctx, repositoryID)
	if err != nil {
		return nil, err
	}
	result := costforecast.Project(costforecast.MonthlyTotals(samplesByRepository(rows)), months)
	metrics.ForecastStatus.WithLabelValues(string(result.Status)).Inc()
	metrics.ObserveView("cost_forecast", start, len(result.Forecasts))
	return &ForecastView{RepositoryID: repositoryID, HorizonMonths: months, Result: result}, nil
}

// IngestSample records a monthly sample and schedules a forecast refresh.
// IngestSample 写入成本样本并触发预测刷新（worker 未启用时同步失效缓存）。
func (s *Service) IngestSample(ctx context.Context, req *CreateSampleRequest) (*CostSample, error) {
	repositoryID := strings.TrimSpace(req.RepositoryID)
	if repositoryID == "" {
		return nil, ErrRepositoryRequired
	}
	if req.Cost < 0 || req.SizeGB < 0 {
		return nil, ErrNegativeAmount
	}
	period, err := ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}

	sample := &CostSample{RepositoryID: repositoryID, Period: period, Cost: req.Cost, SizeGB: req.SizeGB}
	if err := s.repo.UpsertSample(ctx, sample); err != nil {
		return nil, err
	}

	if s.enqueuer != nil {
		err := s.enqueuer.EnqueueForecastRefresh(ctx, worker.ForecastRefreshPayload{
			RepositoryID: repositoryID,
			Reason:       "sample_ingested",
		})
		if err == nil {
			return sample, nil
		}
		logger.WarnF(ctx, "[Cost] enqueue forecast refresh failed, invalidating inline: %v", err)
	}
	if err := s.InvalidateForecasts(ctx); err != nil {
		return nil, err
	}
	return sample, nil
}

// ParsePeriod accepts "2024-05" or an RFC 3339 timestamp and returns the
// first instant of that month in UTC.
func ParsePeriod(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, ErrInvalidPeriod
		}
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

// InvalidateForecasts drops every cached forecast.
func (s *Service) InvalidateForecasts(ctx context.Context) error {
	return s.cache.DeletePrefix(ctx, forecastKeyPrefix)
}

// RefreshForecasts invalidates cached forecasts and warms the default
// horizon for the whole fleet and, when given, one repository.
func (s *Service) RefreshForecasts(ctx context.Context, repositoryID string) error {
	if err := s.InvalidateForecasts(ctx); err != nil {
		return err
	}
	scopes := []string{""}
	if repositoryID != "" {
		scopes = append(scopes, repositoryID)
	}
	for _, scope := range scopes {
		if _, err := s.Forecast(ctx, scope, 0); err != nil {
			return err
		}
	}
	return nil
}

// HandleRefreshTask processes worker.TypeForecastRefresh tasks.
func (s *Service) HandleRefreshTask(ctx context.Context, t *asynq.Task) error {
	p, err := worker.ParseForecastRefresh(t)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	logger.InfoF(ctx, "[Cost] refreshing forecasts repository=%q reason=%s", p.RepositoryID, p.Reason)
	return s.RefreshForecasts(ctx, p.RepositoryID)
}

// ListAlerts evaluates every cost alert against the current monthly cost of
// all repositories. An alert triggers when the cost strictly exceeds its threshold.
func (s *Service) ListAlerts(ctx context.Context) (*AlertListView, error) {
	rows, err := s.repo.ListSamples(ctx, "")
	if err != nil {
		return nil, err
	}
	var current float64
	if totals := costforecast.MonthlyTotals(samplesByRepository(rows)); len(totals) > 0 {
		current = totals[len(totals)-1].Cost
	}

	alerts, err := s.repo.ListAlerts(ctx)
	if err != nil {
		return nil, err
	}
	view := &AlertListView{CurrentMonthlyCost: current, Alerts: make([]*AlertInfo, 0, len(alerts))}
	for _, a := range alerts {
		view.Alerts = append(view.Alerts, evaluateAlert(a, current))
	}
	view.Counts = collection.CountBy(view.Alerts, func(a *AlertInfo) string { return string(a.State) })
	return view, nil
}

func evaluateAlert(a *CostAlert, current float64) *AlertInfo {
	info := &AlertInfo{
		ID:               a.ID,
		Name:             a.Name,
		MonthlyThreshold: a.MonthlyThreshold,
		Enabled:          a.Enabled,
		NotifyOnExceed:   a.NotifyOnExceed,
	}
	if a.MonthlyThreshold > 0 {
		pct := current / a.MonthlyThreshold * 100
		info.PercentOfThreshold = &pct
	}
	switch {
	case !a.Enabled:
		info.State = AlertDisabled
	case current > a.MonthlyThreshold:
		info.State = AlertTriggered
	default:
		info.State = AlertOK
	}
	return info
}
