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

// Package cost serves the storage cost pages: monthly cost history, the
// growth forecast and cost alerts.
// cost 包提供存储成本历史、成本预测与成本告警视图。
package cost

import (
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/costforecast"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CostSample is the storage cost of one repository for one calendar month.
type CostSample struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	RepositoryID string    `json:"repository_id" gorm:"size:36;not null;uniqueIndex:idx_cost_repo_period"`
	Period       time.Time `json:"period" gorm:"not null;uniqueIndex:idx_cost_repo_period"`
	Cost         float64   `json:"cost"`
	SizeGB       float64   `json:"size_gb"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the CostSample model.
func (CostSample) TableName() string {
	return "cost_samples"
}

// BeforeCreate assigns a UUID when the caller did not.
func (s *CostSample) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ToSample converts the row into a forecast input.
func (s *CostSample) ToSample() costforecast.Sample {
	return costforecast.Sample{Period: s.Period, Cost: s.Cost, SizeGB: s.SizeGB}
}

// samplesByRepository groups rows into per-repository histories.
func samplesByRepository(rows []*CostSample) map[string][]costforecast.Sample {
	out := make(map[string][]costforecast.Sample)
	for _, r := range rows {
		out[r.RepositoryID] = append(out[r.RepositoryID], r.ToSample())
	}
	return out
}

// CostAlert fires when the current monthly cost exceeds its threshold.
type CostAlert struct {
	ID               string    `json:"id" gorm:"primaryKey;size:36"`
	Name             string    `json:"name" gorm:"size:100;not null"`
	MonthlyThreshold float64   `json:"monthly_threshold"`
	Enabled          bool      `json:"enabled"`
	NotifyOnExceed   bool      `json:"notify_on_exceed"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the CostAlert model.
func (CostAlert) TableName() string {
	return "cost_alerts"
}

// BeforeCreate assigns a UUID when the caller did not.
func (a *CostAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AlertState is the evaluated state of a cost alert.
type AlertState string

const (
	AlertTriggered AlertState = "triggered"
	AlertOK        AlertState = "ok"
	AlertDisabled  AlertState = "disabled"
)

// AlertInfo is a cost alert evaluated against the current monthly cost.
type AlertInfo struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	MonthlyThreshold float64    `json:"monthly_threshold"`
	Enabled          bool       `json:"enabled"`
	NotifyOnExceed   bool       `json:"notify_on_exceed"`
	State            AlertState `json:"state"`
	// PercentOfThreshold is current cost / threshold * 100, nil for a zero threshold.
	PercentOfThreshold *float64 `json:"percent_of_threshold"`
}

// AlertListView is the cost alerts page payload.
type AlertListView struct {
	CurrentMonthlyCost float64        `json:"current_monthly_cost"`
	Counts             map[string]int `json:"counts"`
	Alerts             []*AlertInfo   `json:"alerts"`
}

// ForecastView is the cost forecast page payload. RepositoryID is empty
// when the forecast covers every repository.
type ForecastView struct {
	RepositoryID  string `json:"repository_id"`
	HorizonMonths int    `json:"horizon_months"`
	costforecast.Result
}

// CreateSampleRequest represents a request to record a monthly cost sample.
type CreateSampleRequest struct {
	RepositoryID string  `json:"repository_id" binding:"required"`
	Period       string  `json:"period" binding:"required"`
	Cost         float64 `json:"cost"`
	SizeGB       float64 `json:"size_gb"`
}
