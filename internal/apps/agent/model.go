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

// Package agent serves the agents page: agent records, their health and
// the command queue of each agent.
// agent 包提供 Agent 列表页面及其命令队列视图。
package agent

import (
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/badge"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AgentStatus represents the registration status of an agent.
// AgentStatus 表示 Agent 的注册状态。
type AgentStatus string

const (
	AgentStatusPending AgentStatus = "pending"
	AgentStatusActive  AgentStatus = "active"
	AgentStatusOffline AgentStatus = "offline"
	AgentStatusError   AgentStatus = "error"
)

// HealthStatus is the last reported health of an agent. HealthUnknown is the
// sentinel for agents that never reported. Heartbeats send degraded and
// unhealthy, which render like warning and critical.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthWarning   HealthStatus = "warning"
	HealthCritical  HealthStatus = "critical"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
	HealthUnknown   HealthStatus = "unknown"
)

// Agent is a backup agent installed on a host.
type Agent struct {
	ID           string       `json:"id" gorm:"primaryKey;size:36"`
	OrgID        string       `json:"org_id" gorm:"size:36;index"`
	Hostname     string       `json:"hostname" gorm:"size:255;index;not null"`
	Status       AgentStatus  `json:"status" gorm:"size:20;default:pending;index"`
	HealthStatus HealthStatus `json:"health_status" gorm:"size:20;default:unknown"`
	OS           string       `json:"os" gorm:"size:50"`
	Version      string       `json:"version" gorm:"size:30"`
	LastSeen     *time.Time   `json:"last_seen"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the Agent model.
func (Agent) TableName() string {
	return "agents"
}

// BeforeCreate assigns a UUID when the caller did not.
func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// CommandType is the kind of work queued for an agent.
type CommandType string

const (
	CommandBackupNow   CommandType = "backup_now"
	CommandUpdate      CommandType = "update"
	CommandRestart     CommandType = "restart"
	CommandDiagnostics CommandType = "diagnostics"
)

// CommandStatus is the lifecycle state of an agent command.
// CommandStatus 表示命令的生命周期状态。
type CommandStatus string

const (
	CommandStatusPending      CommandStatus = "pending"
	CommandStatusAcknowledged CommandStatus = "acknowledged"
	CommandStatusRunning      CommandStatus = "running"
	CommandStatusCompleted    CommandStatus = "completed"
	CommandStatusFailed       CommandStatus = "failed"
	CommandStatusTimedOut     CommandStatus = "timed_out"
	CommandStatusCanceled     CommandStatus = "canceled"
)

// AgentCommand is one queued instruction for an agent.
type AgentCommand struct {
	ID          string        `json:"id" gorm:"primaryKey;size:36"`
	AgentID     string        `json:"agent_id" gorm:"size:36;index;not null"`
	Type        CommandType   `json:"type" gorm:"size:30;not null"`
	Status      CommandStatus `json:"status" gorm:"size:20;default:pending;index"`
	Payload     string        `json:"payload" gorm:"type:text"`
	Result      string        `json:"result" gorm:"type:text"`
	Error       string        `json:"error" gorm:"type:text"`
	CreatedAt   time.Time     `json:"created_at" gorm:"autoCreateTime"`
	StartedAt   *time.Time    `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at"`
	TimeoutAt   *time.Time    `json:"timeout_at"`
}

// TableName specifies the table name for the AgentCommand model.
func (AgentCommand) TableName() string {
	return "agent_commands"
}

// BeforeCreate assigns a UUID when the caller did not.
func (c *AgentCommand) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// AgentInfo is the render-ready row of the agents table.
type AgentInfo struct {
	ID        string     `json:"id"`
	Hostname  string     `json:"hostname"`
	OS        string     `json:"os"`
	Version   string     `json:"version"`
	Status    badge.View `json:"status"`
	Health    badge.View `json:"health"`
	LastSeen  *time.Time `json:"last_seen"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToAgentInfo classifies the agent's status and health.
func (a *Agent) ToAgentInfo() *AgentInfo {
	health := a.HealthStatus
	if health == "" {
		health = HealthUnknown
	}
	return &AgentInfo{
		ID:        a.ID,
		Hostname:  a.Hostname,
		OS:        a.OS,
		Version:   a.Version,
		Status:    badge.NewView(badge.DomainAgent, string(a.Status)),
		Health:    badge.NewView(badge.DomainHealth, string(health)),
		LastSeen:  a.LastSeen,
		CreatedAt: a.CreatedAt,
	}
}

// AgentListView is the agents page payload.
type AgentListView struct {
	Total  int            `json:"total"`
	Counts map[string]int `json:"counts"`
	Agents []*AgentInfo   `json:"agents"`
}

// CommandInfo is the render-ready row of the command history.
type CommandInfo struct {
	ID              string      `json:"id"`
	Type            CommandType `json:"type"`
	Status          badge.View  `json:"status"`
	Error           string      `json:"error,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	StartedAt       *time.Time  `json:"started_at"`
	CompletedAt     *time.Time  `json:"completed_at"`
	DurationSeconds *float64    `json:"duration_seconds"`
}

// ToCommandInfo classifies the command status and measures run time.
func (c *AgentCommand) ToCommandInfo() *CommandInfo {
	info := &CommandInfo{
		ID:          c.ID,
		Type:        c.Type,
		Status:      badge.NewView(badge.DomainCommand, string(c.Status)),
		Error:       c.Error,
		CreatedAt:   c.CreatedAt,
		StartedAt:   c.StartedAt,
		CompletedAt: c.CompletedAt,
	}
	if c.StartedAt != nil && c.CompletedAt != nil {
		d := c.CompletedAt.Sub(*c.StartedAt).Seconds()
		info.DurationSeconds = &d
	}
	return info
}

// CommandListView is the command history payload for one agent.
type CommandListView struct {
	Agent    *AgentInfo     `json:"agent"`
	Counts   map[string]int `json:"counts"`
	Commands []*CommandInfo `json:"commands"`
}
