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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/badge"
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
	tempDir, err := os.MkdirTemp("", "agent_test_*")
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
	if err := db.AutoMigrate(&Agent{}, &AgentCommand{}); err != nil {
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

func seedAgents(t *testing.T, repo *Repository) []*Agent {
	ctx := context.Background()
	agents := []*Agent{
		{Hostname: "db-01", Status: AgentStatusActive, HealthStatus: HealthHealthy},
		{Hostname: "db-02", Status: AgentStatusActive, HealthStatus: HealthWarning},
		{Hostname: "web-01", Status: AgentStatusOffline},
		{Hostname: "web-02", Status: AgentStatusError, HealthStatus: HealthCritical},
	}
	for _, a := range agents {
		require.NoError(t, repo.Create(ctx, a))
	}
	return agents
}

func TestRepository_CreateAssignsID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	repo := NewRepository(db)

	a := &Agent{Hostname: "db-01"}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.Len(t, a.ID, 36)

	got, err := repo.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, AgentStatusPending, got.Status)
	assert.Equal(t, HealthUnknown, got.HealthStatus)

	assert.ErrorIs(t, repo.Create(context.Background(), &Agent{}), ErrHostnameEmpty)
	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAgentNotFound)
}

func TestAgent_HeartbeatHealthBadges(t *testing.T) {
	degraded := (&Agent{Hostname: "db-03", HealthStatus: HealthDegraded}).ToAgentInfo()
	warning := (&Agent{Hostname: "db-04", HealthStatus: HealthWarning}).ToAgentInfo()
	assert.Equal(t, warning.Health.Badge, degraded.Health.Badge)

	unhealthy := (&Agent{Hostname: "db-05", HealthStatus: HealthUnhealthy}).ToAgentInfo()
	critical := (&Agent{Hostname: "db-06", HealthStatus: HealthCritical}).ToAgentInfo()
	assert.Equal(t, critical.Health.Badge, unhealthy.Health.Badge)
	assert.NotEqual(t, badge.Default, unhealthy.Health.Badge)
}

func TestService_ListAgents(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewRepository(db))
	seedAgents(t, svc.repo)
	ctx := context.Background()

	view, err := svc.ListAgents(ctx, collection.FilterState{Search: "DB"})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, map[string]int{"active": 2, "offline": 1, "error": 1}, view.Counts)

	view, err = svc.ListAgents(ctx, collection.FilterState{Enums: map[string]string{"health": "unknown"}})
	require.NoError(t, err)
	require.Len(t, view.Agents, 1)
	assert.Equal(t, "web-01", view.Agents[0].Hostname)
	assert.Equal(t, badge.Default, view.Agents[0].Health.Badge)
	assert.Equal(t, badge.Classify(badge.DomainAgent, "offline"), view.Agents[0].Status.Badge)

	_, err = svc.ListAgents(ctx, collection.FilterState{Enums: map[string]string{"os": "linux"}})
	assert.ErrorIs(t, err, collection.ErrUnknownField)
}

func TestService_ListCommands(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewRepository(db))
	agents := seedAgents(t, svc.repo)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	started := base.Add(time.Minute)
	completed := started.Add(90 * time.Second)
	cmds := []*AgentCommand{
		{AgentID: agents[0].ID, Type: CommandBackupNow, Status: CommandStatusCompleted, CreatedAt: base, StartedAt: &started, CompletedAt: &completed},
		{AgentID: agents[0].ID, Type: CommandRestart, Status: CommandStatusTimedOut, CreatedAt: base.Add(time.Hour)},
		{AgentID: agents[1].ID, Type: CommandUpdate, Status: CommandStatusPending, CreatedAt: base},
	}
	for _, c := range cmds {
		require.NoError(t, svc.repo.CreateCommand(ctx, c))
	}

	view, err := svc.ListCommands(ctx, agents[0].ID, collection.FilterState{})
	require.NoError(t, err)
	require.Len(t, view.Commands, 2)
	assert.Equal(t, CommandRestart, view.Commands[0].Type)
	assert.Equal(t, "Timed Out", view.Commands[0].Status.Label)
	require.NotNil(t, view.Commands[1].DurationSeconds)
	assert.InDelta(t, 90, *view.Commands[1].DurationSeconds, 0.001)

	_, err = svc.ListCommands(ctx, "missing", collection.FilterState{})
	assert.ErrorIs(t, err, ErrAgentNotFound)
	assert.ErrorIs(t, svc.repo.CreateCommand(ctx, &AgentCommand{}), ErrCommandAgentMissing)
}

func TestService_HostnameIndexAndCounts(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewRepository(db))
	agents := seedAgents(t, svc.repo)

	idx, err := svc.HostnameIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "web-02", idx[agents[3].ID])

	status, health, err := svc.StatusCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, status["active"])
	assert.Equal(t, 1, health["unknown"])
}

func TestHandler_ListAgents(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewRepository(db))
	seedAgents(t, svc.repo)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(svc)
	r.GET("/api/v1/agents", h.ListAgents)
	r.GET("/api/v1/agents/:id/commands", h.ListCommands)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/agents?status=active&health=all", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListAgentsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.ErrorMsg)
	assert.Equal(t, 2, resp.Data.Total)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/agents/nope/commands", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
