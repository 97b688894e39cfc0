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

// Package dashboard aggregates the summary cards of the other pages.
// dashboard 包汇总各页面的统计卡片。
package dashboard

import (
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/apps/drtest"
	"github.com/MacJediWizard/keldris-sub001/internal/apps/ratelimit"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/costforecast"
)

// AgentStats 表示 Agent 统计
type AgentStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByHealth map[string]int `json:"by_health"`
}

// BackupStats counts backups created in the last 24 hours.
// SuccessRate is nil when no backup finished in that period.
type BackupStats struct {
	Total       int            `json:"total"`
	ByStatus    map[string]int `json:"by_status"`
	SuccessRate *float64       `json:"success_rate"`
}

// CostStats 表示成本概览。GrowthRate 在数据不足时为 nil。
type CostStats struct {
	Status             costforecast.Status `json:"status"`
	CurrentMonthlyCost float64             `json:"current_monthly_cost"`
	MonthlyGrowthRate  *float64            `json:"monthly_growth_rate"`
}

// OverviewData represents the complete dashboard overview data.
// OverviewData 表示完整的仪表盘概览数据。
type OverviewData struct {
	Agents      AgentStats      `json:"agents"`
	Backups24h  BackupStats     `json:"backups_24h"`
	DRTests     drtest.Summary  `json:"dr_tests"`
	RateLimits  ratelimit.Stats `json:"rate_limits"`
	Cost        CostStats       `json:"cost"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// DashboardDataResponse 仪表盘响应
type DashboardDataResponse struct {
	ErrorMsg string        `json:"error_msg"`
	Data     *OverviewData `json:"data"`
}
