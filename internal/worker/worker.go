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

package worker

import (
	"context"
	"fmt"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// redisOpt builds the asynq connection from the redis config section.
func redisOpt() asynq.RedisClientOpt {
	rc := config.Config.Redis
	return asynq.RedisClientOpt{
		Addr:     config.RedisAddr(),
		Username: rc.Username,
		Password: rc.Password,
		DB:       rc.DB,
		PoolSize: rc.PoolSize,
	}
}

// Client 任务投递客户端
type Client struct {
	client *asynq.Client
}

// NewClient 创建任务投递客户端
func NewClient() *Client {
	return &Client{client: asynq.NewClient(redisOpt())}
}

// EnqueueForecastRefresh 投递成本预测刷新任务
func (c *Client) EnqueueForecastRefresh(ctx context.Context, p ForecastRefreshPayload) error {
	task, err := NewForecastRefreshTask(p)
	if err != nil {
		return err
	}
	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue %s failed: %w", TypeForecastRefresh, err)
	}
	logger.InfoF(ctx, "[Worker] enqueued %s id=%s repository=%q", TypeForecastRefresh, info.ID, p.RepositoryID)
	return nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	return c.client.Close()
}

// Handlers maps task types to their processors.
type Handlers map[string]asynq.HandlerFunc

// newMux wraps every handler with task metrics.
func newMux(handlers Handlers) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	for taskType, h := range handlers {
		taskType, h := taskType, h
		mux.HandleFunc(taskType, func(ctx context.Context, t *asynq.Task) error {
			err := h(ctx, t)
			result := "success"
			if err != nil {
				result = "error"
				logger.ErrorF(ctx, "[Worker] task %s failed: %v", taskType, err)
			}
			metrics.WorkerTasks.WithLabelValues(taskType, result).Inc()
			return err
		})
	}
	return mux
}

// ValidateCron 校验周期任务的 cron 表达式（标准五段式）
func ValidateCron(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron %q: %w", spec, err)
	}
	return nil
}

// Run starts the asynq server and the periodic forecast refresh scheduler,
// blocking until ctx is cancelled.
// Run 启动 asynq 服务与周期调度器，直到 ctx 取消
func Run(ctx context.Context, handlers Handlers) error {
	wc := config.Config.Worker
	if err := ValidateCron(wc.ForecastRefreshCron); err != nil {
		return err
	}

	srv := asynq.NewServer(redisOpt(), asynq.Config{
		Concurrency: wc.Concurrency,
		Queues:      map[string]int{QueueDefault: 1},
	})
	if err := srv.Start(newMux(handlers)); err != nil {
		return fmt.Errorf("start worker server failed: %w", err)
	}
	defer srv.Shutdown()

	scheduler := asynq.NewScheduler(redisOpt(), nil)
	task, err := NewForecastRefreshTask(ForecastRefreshPayload{Reason: "scheduled"})
	if err != nil {
		return err
	}
	entryID, err := scheduler.Register(wc.ForecastRefreshCron, task)
	if err != nil {
		return fmt.Errorf("register periodic refresh failed: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler failed: %w", err)
	}
	defer scheduler.Shutdown()

	logger.InfoF(ctx, "[Worker] running, concurrency=%d refresh=%q entry=%s", wc.Concurrency, wc.ForecastRefreshCron, entryID)
	<-ctx.Done()
	logger.InfoF(context.Background(), "[Worker] shutting down")
	return nil
}
