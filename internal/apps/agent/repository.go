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

package agent

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository provides data access operations for agents and their commands.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new Repository instance.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create 创建 Agent 记录
func (r *Repository) Create(ctx context.Context, agent *Agent) error {
	if agent.Hostname == "" {
		return ErrHostnameEmpty
	}
	return r.db.WithContext(ctx).Create(agent).Error
}

// GetByID retrieves an agent by its ID.
// Returns ErrAgentNotFound if the agent does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*Agent, error) {
	var agent Agent
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&agent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAgentNotFound
		}
		return nil, err
	}
	return &agent, nil
}

// List returns every agent ordered by hostname.
// 过滤在内存中完成，这里只负责加载。
func (r *Repository) List(ctx context.Context) ([]*Agent, error) {
	var agents []*Agent
	if err := r.db.WithContext(ctx).Order("hostname ASC").Find(&agents).Error; err != nil {
		return nil, err
	}
	return agents, nil
}

// CreateCommand 创建 Agent 命令
func (r *Repository) CreateCommand(ctx context.Context, cmd *AgentCommand) error {
	if cmd.AgentID == "" {
		return ErrCommandAgentMissing
	}
	return r.db.WithContext(ctx).Create(cmd).Error
}

// ListCommands returns the commands of an agent, newest first.
func (r *Repository) ListCommands(ctx context.Context, agentID string) ([]*AgentCommand, error) {
	var cmds []*AgentCommand
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&cmds).Error
	if err != nil {
		return nil, err
	}
	return cmds, nil
}
