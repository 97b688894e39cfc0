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
	"errors"
	"net/http"

	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/gin-gonic/gin"
)

// Handler provides HTTP handlers for the agents page.
// Handler 提供 Agent 页面的 HTTP 处理器。
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListAgentsResponse 获取 Agent 列表的响应
type ListAgentsResponse struct {
	ErrorMsg string         `json:"error_msg"`
	Data     *AgentListView `json:"data"`
}

// ListCommandsResponse 获取 Agent 命令列表的响应
type ListCommandsResponse struct {
	ErrorMsg string           `json:"error_msg"`
	Data     *CommandListView `json:"data"`
}

// ListAgents handles GET /api/v1/agents.
// ListAgents 处理 GET /api/v1/agents - 获取 Agent 列表（支持搜索、状态、健康过滤）。
// @Tags agents
// @Produce json
// @Param search query string false "hostname search"
// @Param status query string false "agent status or all"
// @Param health query string false "health status or all"
// @Success 200 {object} ListAgentsResponse
// @Router /api/v1/agents [get]
func (h *Handler) ListAgents(c *gin.Context) {
	state, err := collection.FromQuery(c.Request.URL.Query(), collection.WindowAll, "status", "health")
	if err != nil {
		c.JSON(http.StatusBadRequest, ListAgentsResponse{ErrorMsg: err.Error()})
		return
	}

	view, err := h.service.ListAgents(c.Request.Context(), state)
	if err != nil {
		logger.ErrorF(c.Request.Context(), "[Agent] list agents failed: %v", err)
		c.JSON(h.getStatusCodeForError(err), ListAgentsResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListAgentsResponse{Data: view})
}

// ListCommands handles GET /api/v1/agents/:id/commands.
// @Tags agents
// @Produce json
// @Param id path string true "agent id"
// @Param status query string false "command status or all"
// @Success 200 {object} ListCommandsResponse
// @Router /api/v1/agents/{id}/commands [get]
func (h *Handler) ListCommands(c *gin.Context) {
	state, err := collection.FromQuery(c.Request.URL.Query(), collection.WindowAll, "status", "type")
	if err != nil {
		c.JSON(http.StatusBadRequest, ListCommandsResponse{ErrorMsg: err.Error()})
		return
	}

	view, err := h.service.ListCommands(c.Request.Context(), c.Param("id"), state)
	if err != nil {
		c.JSON(h.getStatusCodeForError(err), ListCommandsResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListCommandsResponse{Data: view})
}

// getStatusCodeForError maps service errors to HTTP status codes.
func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, ErrAgentNotFound):
		return http.StatusNotFound
	case errors.Is(err, collection.ErrUnknownField), errors.Is(err, collection.ErrInvalidWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
