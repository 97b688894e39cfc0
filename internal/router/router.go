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

// Package router 提供 HTTP 路由配置
// Package router provides HTTP routing configuration
package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/apps/agent"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/backup"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/cost"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/dashboard"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/drtest"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/notification"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/ratelimit"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/snapshot"
	"github.com/MacJediWizard/keldris-sub001/internal/cache"
	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/db"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
	"github.com/MacJediWizard/keldris-sub001/internal/otel_trace"
	"github.com/MacJediWizard/keldris-sub001/internal/worker"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
)

// Services holds every page service wired to one database and cache.
type Services struct {
	DB           *gorm.DB
	Agent        *agent.Service
	Backup       *backup.Service
	Snapshot     *snapshot.Service
	Cost         *cost.Service
	DRTest       *drtest.Service
	RateLimit    *ratelimit.Service
	Notification *notification.Service
	Dashboard    *dashboard.OverviewService
	Limiter      *ratelimit.Limiter
}

// NewServices builds the page services. enqueuer may be nil, in which case
// cost forecasts are invalidated inline instead of refreshed by the worker.
func NewServices(database *gorm.DB, store cache.Store, enqueuer cost.Enqueuer) *Services {
	agentSvc := agent.NewService(agent.NewRepository(database))
	backupSvc := backup.NewService(backup.NewRepository(database), agentSvc)
	costSvc := cost.NewService(cost.NewRepository(database), store, enqueuer)
	drSvc := drtest.NewService(drtest.NewRepository(database))
	rlRepo := ratelimit.NewRepository(database)
	rlSvc := ratelimit.NewService(rlRepo)

	return &Services{
		DB:           database,
		Agent:        agentSvc,
		Backup:       backupSvc,
		Snapshot:     snapshot.NewService(snapshot.NewRepository(database), store),
		Cost:         costSvc,
		DRTest:       drSvc,
		RateLimit:    rlSvc,
		Notification: notification.NewService(notification.NewRepository(database)),
		Dashboard: dashboard.NewOverviewService(dashboard.Sources{
			Agents:     agentSvc,
			Backups:    backupSvc,
			DRTests:    drSvc,
			RateLimits: rlSvc,
			Cost:       costSvc,
		}),
		Limiter: ratelimit.NewLimiter(rlRepo),
	}
}

// NewEngine registers every route on a new gin engine.
func NewEngine(s *Services) *gin.Engine {
	r := gin.New()
	// Client IPs feed IP bans and rate-limit buckets; forwarded headers are
	// honored only from configured proxies.
	if err := r.SetTrustedProxies(config.Config.App.TrustedProxies); err != nil {
		logger.WarnF(context.Background(), "[Router] invalid trusted_proxies %v, trusting none: %v", config.Config.App.TrustedProxies, err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())

	// 补充中间件
	// Add middleware
	r.Use(otelgin.Middleware(config.Config.App.AppName), loggerMiddleware())

	r.GET("/metrics", metrics.Handler())

	apiGroup := r.Group(config.Config.App.APIPrefix)
	{
		if config.Config.App.Env == "development" {
			// Swagger
			apiGroup.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		}

		// API V1
		apiV1Router := apiGroup.Group("/v1")
		{
			// Health
			apiV1Router.GET("/health", healthHandler(s.DB))

			if config.Config.RateLimit.Enabled {
				apiV1Router.Use(s.Limiter.Middleware())
			}

			// Agent
			agentHandler := agent.NewHandler(s.Agent)
			apiV1Router.GET("/agents", agentHandler.ListAgents)
			apiV1Router.GET("/agents/:id/commands", agentHandler.ListCommands)

			// Backup
			backupHandler := backup.NewHandler(s.Backup)
			apiV1Router.GET("/backups", backupHandler.ListBackups)
			apiV1Router.GET("/schedules", backupHandler.ListSchedules)
			apiV1Router.GET("/tags", backupHandler.ListTags)

			// Snapshot
			snapshotHandler := snapshot.NewHandler(s.Snapshot)
			apiV1Router.GET("/snapshots", snapshotHandler.ListSnapshots)
			apiV1Router.GET("/snapshots/compare", snapshotHandler.CompareSnapshots)

			// Cost
			costRouter := apiV1Router.Group("/costs")
			{
				costHandler := cost.NewHandler(s.Cost)
				costRouter.GET("/forecast", costHandler.GetForecast)
				costRouter.POST("/samples", costHandler.CreateSample)
				costRouter.GET("/alerts", costHandler.ListAlerts)
			}

			// DR tests
			apiV1Router.GET("/dr-tests", drtest.NewHandler(s.DRTest).ListDRTests)

			// Rate limits
			apiV1Router.GET("/rate-limits", ratelimit.NewHandler(s.RateLimit).GetRateLimits)

			// Notifications
			notificationRouter := apiV1Router.Group("/notifications")
			{
				notificationHandler := notification.NewHandler(s.Notification)
				notificationRouter.GET("/channels", notificationHandler.ListChannels)
				notificationRouter.POST("/channels", notificationHandler.CreateChannel)
			}

			// Dashboard
			apiV1Router.GET("/dashboard/overview", dashboard.NewOverviewHandler(s.Dashboard).GetOverviewData)
		}
	}
	return r
}

// shutdownTimeout bounds graceful HTTP shutdown and the final trace flush.
const shutdownTimeout = 10 * time.Second

// Serve runs the API until ctx is cancelled.
func Serve(ctx context.Context) error {
	// Initialize OpenTelemetry tracing (based on config)
	// 初始化 OpenTelemetry 追踪（根据配置）
	otel_trace.Init()
	defer otel_trace.ShutdownWithTimeout(shutdownTimeout)

	// 运行模式
	// Set run mode
	if config.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库（根据配置自动选择 SQLite、MySQL 或 PostgreSQL）
	// Initialize database (auto-select SQLite, MySQL or PostgreSQL based on config)
	if err := db.InitDatabase(); err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	if !db.IsDatabaseInitialized() {
		return errors.New("database is disabled, the API needs one")
	}
	defer db.CloseDatabase()

	// 初始化缓存（根据配置自动选择内存或 Redis）
	// Initialize view cache (auto-select memory or Redis based on config)
	if err := cache.InitStore(ctx); err != nil {
		return fmt.Errorf("init cache store: %w", err)
	}

	var enqueuer cost.Enqueuer
	if config.IsWorkerEnabled() {
		client := worker.NewClient()
		defer client.Close()
		enqueuer = client
	} else {
		logger.InfoF(ctx, "[API] worker disabled, forecasts are invalidated inline")
	}

	srv := &http.Server{
		Addr:              config.Config.App.Addr,
		Handler:           NewEngine(NewServices(db.GetGlobalDB(), cache.Default, enqueuer)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoF(ctx, "[API] listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.InfoF(shutdownCtx, "[API] shutting down")
	return srv.Shutdown(shutdownCtx)
}
