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
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
)

// agentSchema exposes the filterable fields of the agents page.
var agentSchema = collection.Schema[*Agent]{
	Search: func(a *Agent) string { return a.Hostname },
	Enums: map[string]func(*Agent) string{
		"status": func(a *Agent) string { return string(a.Status) },
		"health": func(a *Agent) string { return string(effectiveHealth(a)) },
	},
	CreatedAt: func(a *Agent) time.Time { return a.CreatedAt },
}

var commandSchema = collection.Schema[*AgentCommand]{
	Enums: map[string]func(*AgentCommand) string{
		"status": func(c *AgentCommand) string { return string(c.Status) },
		"type":   func(c *AgentCommand) string { return string(c.Type) },
	},
	CreatedAt: func(c *AgentCommand) time.Time { return c.CreatedAt },
}

func effectiveHealth(a *Agent) HealthStatus {
	if a.HealthStatus == "" {
		return HealthUnknown
	}
	return a.HealthStatus
}

// Service derives agent page view-models.
// Service 负责计算 Agent 页面的视图模型。
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a new Service instance.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ListAgents filters agents by state. Counts cover every agent so the
// summary cards do not move while the user narrows the table.
func (s *Service) ListAgents(ctx context.Context, state collection.FilterState) (*AgentListView, error) {
	start := time.Now()
	agents, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	filtered, err := collection.Apply(agents, agentSchema, state, s.now())
	if err != nil {
		return nil, err
	}

	view := &AgentListView{
		Total:  len(filtered),
		Counts: collection.CountBy(agents, func(a *Agent) string { return string(a.Status) }),
		Agents: make([]*AgentInfo, 0, len(filtered)),
	}
	for _, a := range filtered {
		view.Agents = append(view.Agents, a.ToAgentInfo())
	}
	metrics.ObserveView("agents", start, len(filtered))
	return view, nil
}

// ListCommands returns the command history of one agent, newest first.
func (s *Service) ListCommands(ctx context.Context, agentID string, state collection.FilterState) (*CommandListView, error) {
	start := time.Now()
	agent, err := s.repo.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}
	cmds, err := s.repo.ListCommands(ctx, agentID)
	if err != nil {
		return nil, err
	}

	filtered, err := collection.Apply(cmds, commandSchema, state, s.now())
	if err != nil {
		return nil, err
	}
	filtered = collection.SortByTimeDesc(filtered, func(c *AgentCommand) time.Time { return c.CreatedAt })

	view := &CommandListView{
		Agent:    agent.ToAgentInfo(),
		Counts:   collection.CountBy(cmds, func(c *AgentCommand) string { return string(c.Status) }),
		Commands: make([]*CommandInfo, 0, len(filtered)),
	}
	for _, c := range filtered {
		view.Commands = append(view.Commands, c.ToCommandInfo())
	}
	metrics.ObserveView("agent_commands", start, len(filtered))
	return view, nil
}

// HostnameIndex maps agent id to hostname for pages that join on agents.
func (s *Service) HostnameIndex(ctx context.Context) (map[string]string, error) {
	agents, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return collection.Index(agents,
		func(a *Agent) string { return a.ID },
		func(a *Agent) string { return a.Hostname },
	), nil
}

// StatusCounts returns agent counts by status and by health.
func (s *Service) StatusCounts(ctx context.Context) (status, health map[string]int, err error) {
	agents, err := s.repo.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	status = collection.CountBy(agents, func(a *Agent) string { return string(a.Status) })
	health = collection.CountBy(agents, func(a *Agent) string { return string(effectiveHealth(a)) })
	return status, health, nil
}
