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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates a temporary SQLite database for testing
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	tempDir, err := os.MkdirTemp("", "ratelimit_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(filepath.Join(tempDir, "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&RateLimitConfig{}, &IPBan{}, &BlockedRequest{}); err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to migrate: %v", err)
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		os.RemoveAll(tempDir)
	}
	return db, cleanup
}

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *Repository) {
	ctx := context.Background()
	expired := testNow.Add(-time.Hour)
	later := testNow.Add(time.Hour)

	require.NoError(t, repo.CreateConfig(ctx, &RateLimitConfig{Endpoint: "/api/v1/auth", RequestsPerPeriod: 10, PeriodSeconds: 60, Enabled: true}))
	require.NoError(t, repo.CreateConfig(ctx, &RateLimitConfig{Endpoint: "/api/v1/backups", RequestsPerPeriod: 100, PeriodSeconds: 60, Enabled: true}))
	require.NoError(t, repo.CreateConfig(ctx, &RateLimitConfig{Endpoint: "/api/v1/reports", RequestsPerPeriod: 5, PeriodSeconds: 60}))

	require.NoError(t, repo.CreateBan(ctx, &IPBan{IPAddress: "10.0.0.1", Reason: "brute force"}))
	require.NoError(t, repo.CreateBan(ctx, &IPBan{IPAddress: "10.0.0.2", Reason: "scanner", ExpiresAt: &later}))
	require.NoError(t, repo.CreateBan(ctx, &IPBan{IPAddress: "10.0.0.3", Reason: "old", ExpiresAt: &expired}))

	for _, b := range []*BlockedRequest{
		{IPAddress: "10.0.0.9", Endpoint: "/api/v1/auth", Reason: ReasonRateLimited, BlockedAt: testNow.Add(-time.Hour)},
		{IPAddress: "10.0.0.1", Endpoint: "/api/v1/auth", Reason: ReasonIPBanned, BlockedAt: testNow.Add(-2 * time.Hour)},
		{IPAddress: "10.0.0.9", Endpoint: "/api/v1/auth", Reason: ReasonRateLimited, BlockedAt: testNow.Add(-30 * time.Hour)},
	} {
		require.NoError(t, repo.RecordBlocked(ctx, b))
	}
}

func TestRepository_Validation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	ctx := context.Background()

	assert.ErrorIs(t, repo.CreateConfig(ctx, &RateLimitConfig{Endpoint: " ", RequestsPerPeriod: 1, PeriodSeconds: 1}), ErrInvalidConfig)
	assert.ErrorIs(t, repo.CreateConfig(ctx, &RateLimitConfig{Endpoint: "/x", PeriodSeconds: 1}), ErrInvalidConfig)
	assert.ErrorIs(t, repo.CreateBan(ctx, &IPBan{}), ErrInvalidIP)
}

func TestService_View(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	seed(t, repo)
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }

	view, err := svc.View(context.Background(), collection.FilterState{})
	require.NoError(t, err)
	assert.Equal(t, Stats{BlockedToday: 2, ActiveConfigs: 2, ActiveBans: 2}, view.Stats)
	assert.Len(t, view.Configs, 3)
	assert.Len(t, view.ActiveBans, 2)
	require.Len(t, view.RecentBlocked, 3)
	assert.Equal(t, testNow.Add(-time.Hour).Unix(), view.RecentBlocked[0].BlockedAt.Unix())
	assert.Equal(t, map[string]int{ReasonRateLimited: 1, ReasonIPBanned: 1}, view.BlockedReasons)

	view, err = svc.View(context.Background(), collection.FilterState{Search: "AUTH"})
	require.NoError(t, err)
	require.Len(t, view.Configs, 1)
	assert.Equal(t, "/api/v1/auth", view.Configs[0].Endpoint)
	assert.Equal(t, 2, view.Stats.ActiveConfigs)

	view, err = svc.View(context.Background(), collection.FilterState{Enums: map[string]string{"enabled": "false"}})
	require.NoError(t, err)
	require.Len(t, view.Configs, 1)
	assert.Equal(t, "/api/v1/reports", view.Configs[0].Endpoint)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, view.Stats, stats)
}

func TestService_RecentBlockedLimit(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	seed(t, repo)
	old := config.Config.View.RecentBlockedLimit
	config.Config.View.RecentBlockedLimit = 2
	t.Cleanup(func() { config.Config.View.RecentBlockedLimit = old })

	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }
	view, err := svc.View(context.Background(), collection.FilterState{})
	require.NoError(t, err)
	assert.Len(t, view.RecentBlocked, 2)
	assert.Equal(t, 2, view.Stats.BlockedToday)
}

func newLimiterRouter(l *Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(l.Middleware())
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "ok"}) }
	r.GET("/api/v1/auth/login", ok)
	r.GET("/api/v1/backups", ok)
	r.GET("/api/v1/health", ok)
	return r
}

func do(r *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func withDefaultRate(t *testing.T, perSecond, burst int) {
	old := config.Config.RateLimit
	config.Config.RateLimit.DefaultPerSecond = perSecond
	config.Config.RateLimit.DefaultBurst = burst
	t.Cleanup(func() { config.Config.RateLimit = old })
}

func TestLimiter_RateLimitsPerIPAndRule(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	withDefaultRate(t, 0, 0)
	repo := NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.CreateConfig(ctx, &RateLimitConfig{Endpoint: "/api/v1/auth", RequestsPerPeriod: 2, PeriodSeconds: 3600, Enabled: true}))

	l := NewLimiter(repo)
	l.refresh = time.Hour
	r := newLimiterRouter(l)

	assert.Equal(t, http.StatusOK, do(r, "/api/v1/auth/login", "192.0.2.1").Code)
	assert.Equal(t, http.StatusOK, do(r, "/api/v1/auth/login", "192.0.2.1").Code)
	w := do(r, "/api/v1/auth/login", "192.0.2.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrTooManyRequests.Error(), body["error_msg"])

	// Other clients and unmatched paths are unaffected.
	assert.Equal(t, http.StatusOK, do(r, "/api/v1/auth/login", "192.0.2.2").Code)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, do(r, "/api/v1/backups", "192.0.2.1").Code)
	}

	blocked, err := repo.ListBlocked(ctx, 10)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, "192.0.2.1", blocked[0].IPAddress)
	assert.Equal(t, "/api/v1/auth/login", blocked[0].Endpoint)
	assert.Equal(t, ReasonRateLimited, blocked[0].Reason)
}

func TestLimiter_LongestPrefixWins(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	withDefaultRate(t, 0, 0)
	repo := NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.CreateConfig(ctx, &RateLimitConfig{Endpoint: "/api", RequestsPerPeriod: 100, PeriodSeconds: 60, Enabled: true}))
	require.NoError(t, repo.CreateConfig(ctx, &RateLimitConfig{Endpoint: "/api/v1/auth", RequestsPerPeriod: 1, PeriodSeconds: 60, Enabled: true}))

	l := NewLimiter(repo)
	require.NoError(t, l.Reload(ctx))
	assert.Equal(t, "/api/v1/auth", l.match("/api/v1/auth/login").Endpoint)
	assert.Equal(t, "/api", l.match("/api/v1/backups").Endpoint)
	assert.Nil(t, l.match("/metrics"))
}

func TestLimiter_MatchesWholeSegments(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	withDefaultRate(t, 0, 0)
	repo := NewRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.CreateConfig(ctx, &RateLimitConfig{Endpoint: "/api/v1/backup", RequestsPerPeriod: 1, PeriodSeconds: 60, Enabled: true}))
	require.NoError(t, repo.CreateConfig(ctx, &RateLimitConfig{Endpoint: "/api/v1/auth/", RequestsPerPeriod: 1, PeriodSeconds: 60, Enabled: true}))

	l := NewLimiter(repo)
	require.NoError(t, l.Reload(ctx))
	assert.Nil(t, l.match("/api/v1/backups"))
	assert.Equal(t, "/api/v1/backup", l.match("/api/v1/backup").Endpoint)
	assert.Equal(t, "/api/v1/backup", l.match("/api/v1/backup/42").Endpoint)
	assert.Equal(t, "/api/v1/auth/", l.match("/api/v1/auth/login").Endpoint)
	assert.Equal(t, "/api/v1/auth/", l.match("/api/v1/auth").Endpoint)
	assert.Nil(t, l.match("/api/v1/authz"))

	l.refresh = time.Hour
	r := newLimiterRouter(l)
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, "/api/v1/backups", "192.0.2.9").Code)
	}
}

func TestLimiter_BannedIP(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	withDefaultRate(t, 0, 0)
	repo := NewRepository(db)
	ctx := context.Background()
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, repo.CreateBan(ctx, &IPBan{IPAddress: "198.51.100.7", Reason: "abuse"}))
	require.NoError(t, repo.CreateBan(ctx, &IPBan{IPAddress: "198.51.100.8", Reason: "old", ExpiresAt: &expired}))

	r := newLimiterRouter(NewLimiter(repo))
	w := do(r, "/api/v1/health", "198.51.100.7")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, http.StatusOK, do(r, "/api/v1/health", "198.51.100.8").Code)

	blocked, err := repo.ListBlocked(ctx, 10)
	require.NoError(t, err)
	require.Len(t, blocked, 1)
	assert.Equal(t, ReasonIPBanned, blocked[0].Reason)
}

func TestLimiter_DefaultBucket(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	withDefaultRate(t, 1, 1)

	r := newLimiterRouter(NewLimiter(NewRepository(db)))
	assert.Equal(t, http.StatusOK, do(r, "/api/v1/health", "203.0.113.5").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "/api/v1/health", "203.0.113.5").Code)
}

func TestHandler_GetRateLimits(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)
	seed(t, repo)
	svc := NewService(repo)
	svc.now = func() time.Time { return testNow }

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/rate-limits", NewHandler(svc).GetRateLimits)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rate-limits?search=backups", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp RateLimitViewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Configs, 1)
	assert.Equal(t, 2, resp.Data.Stats.ActiveBans)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rate-limits?window=7d", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
