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

// Package metrics holds the prometheus collectors for view-model derivation
// and the /metrics handler.
// metrics 包定义视图模型计算相关的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "keldris"

var (
	// HTTPRequests counts API requests.
	// Labels: method, route, status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total API requests",
	}, []string{"method", "route", "status"})

	// HTTPLatency measures API request latency.
	// Labels: method, route
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "API request latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ViewBuildDuration measures how long a page view-model takes to derive.
	// Labels: view (backups, agents, snapshot_compare, cost_forecast, ...)
	ViewBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "view",
		Name:      "build_duration_seconds",
		Help:      "View-model derivation latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"view"})

	// ViewRecords observes how many records a view processed after filtering.
	// Labels: view
	ViewRecords = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "view",
		Name:      "records",
		Help:      "Records returned by a view after filtering",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"view"})

	// CacheLookups counts forecast cache lookups.
	// Labels: result (hit, miss, error)
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "View-model cache lookups by result",
	}, []string{"result"})

	// ForecastStatus counts forecast outcomes.
	// Labels: status (ok, insufficient_data)
	ForecastStatus = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "forecast",
		Name:      "computations_total",
		Help:      "Cost forecast computations by result status",
	}, []string{"status"})

	// RateLimitBlocked counts requests refused by the API limiter.
	// Labels: reason (rate_limited, ip_banned)
	RateLimitBlocked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "blocked_total",
		Help:      "Requests refused by the API limiter",
	}, []string{"reason"})

	// WorkerTasks counts processed background tasks.
	// Labels: type, result (success, error)
	WorkerTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "tasks_total",
		Help:      "Background tasks processed",
	}, []string{"type", "result"})
)

// ObserveView records a view build started at start with n resulting records.
func ObserveView(view string, start time.Time, n int) {
	ViewBuildDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
	ViewRecords.WithLabelValues(view).Observe(float64(n))
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
