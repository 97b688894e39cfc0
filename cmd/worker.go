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

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/apps/cost"
	"github.com/MacJediWizard/keldris-sub001/internal/cache"
	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/db"
	"github.com/MacJediWizard/keldris-sub001/internal/otel_trace"
	"github.com/MacJediWizard/keldris-sub001/internal/worker"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background jobs (forecast refresh) // 运行后台任务",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !config.IsWorkerEnabled() {
			return errors.New("worker needs worker.enabled and redis.enabled")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		otel_trace.Init()
		defer otel_trace.ShutdownWithTimeout(5 * time.Second)

		if err := db.InitDatabase(); err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer db.CloseDatabase()
		if err := cache.InitStore(ctx); err != nil {
			return fmt.Errorf("init cache store: %w", err)
		}

		// The worker refreshes caches itself, so it never enqueues.
		costSvc := cost.NewService(cost.NewRepository(db.GetGlobalDB()), cache.Default, nil)
		return worker.Run(ctx, worker.Handlers{
			worker.TypeForecastRefresh: costSvc.HandleRefreshTask,
		})
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
