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

// Package drtest serves the disaster-recovery test runs page.
// drtest 包提供灾备演练记录页面。
package drtest

import (
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/badge"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the lifecycle state of a DR test run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusPassed    Status = "passed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// DRTest is one execution of a recovery runbook.
type DRTest struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	RunbookID        string     `json:"runbook_id" gorm:"size:36;index;not null"`
	RunbookName      string     `json:"runbook_name" gorm:"size:200"`
	Status           Status     `json:"status" gorm:"size:20;default:pending;index"`
	RTOMinutes       *int       `json:"rto_minutes"`
	RPOMinutes       *int       `json:"rpo_minutes"`
	ActualRTOMinutes *int       `json:"actual_rto_minutes"`
	ActualRPOMinutes *int       `json:"actual_rpo_minutes"`
	ErrorMessage     string     `json:"error_message" gorm:"type:text"`
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies the table name for the DRTest model.
func (DRTest) TableName() string {
	return "dr_tests"
}

// BeforeCreate assigns a UUID when the caller did not.
func (d *DRTest) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// DRTestInfo is the render-ready row of the DR tests table. RTOMet and
// RPOMet are nil until both the target and the actual value are known.
type DRTestInfo struct {
	ID               string     `json:"id"`
	RunbookID        string     `json:"runbook_id"`
	RunbookName      string     `json:"runbook_name"`
	Status           badge.View `json:"status"`
	RTOMinutes       *int       `json:"rto_minutes"`
	RPOMinutes       *int       `json:"rpo_minutes"`
	ActualRTOMinutes *int       `json:"actual_rto_minutes"`
	ActualRPOMinutes *int       `json:"actual_rpo_minutes"`
	RTOMet           *bool      `json:"rto_met"`
	RPOMet           *bool      `json:"rpo_met"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	StartedAt        *time.Time `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at"`
	CreatedAt        time.Time  `json:"created_at"`
}

func met(actual, target *int) *bool {
	if actual == nil || target == nil {
		return nil
	}
	ok := *actual <= *target
	return &ok
}

// ToInfo classifies the run and evaluates its RTO/RPO targets.
func (d *DRTest) ToInfo() *DRTestInfo {
	return &DRTestInfo{
		ID:               d.ID,
		RunbookID:        d.RunbookID,
		RunbookName:      d.RunbookName,
		Status:           badge.NewView(badge.DomainDRTest, string(d.Status)),
		RTOMinutes:       d.RTOMinutes,
		RPOMinutes:       d.RPOMinutes,
		ActualRTOMinutes: d.ActualRTOMinutes,
		ActualRPOMinutes: d.ActualRPOMinutes,
		RTOMet:           met(d.ActualRTOMinutes, d.RTOMinutes),
		RPOMet:           met(d.ActualRPOMinutes, d.RPOMinutes),
		ErrorMessage:     d.ErrorMessage,
		StartedAt:        d.StartedAt,
		CompletedAt:      d.CompletedAt,
		CreatedAt:        d.CreatedAt,
	}
}

// Summary counts DR test runs. Passed, Failed and Running are disjoint;
// pending, completed and skipped runs only count towards Total.
type Summary struct {
	Total   int `json:"total"`
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Running int `json:"running"`
}

// DRTestListView is the DR tests page payload.
type DRTestListView struct {
	Summary Summary       `json:"summary"`
	Total   int           `json:"total"`
	Tests   []*DRTestInfo `json:"tests"`
}
