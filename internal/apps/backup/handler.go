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

package backup

import (
	"errors"
	"net/http"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/gin-gonic/gin"
)

// Handler provides HTTP handlers for the backups, schedules and tags pages.
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListBackupsResponse 获取备份列表的响应
type ListBackupsResponse struct {
	ErrorMsg string          `json:"error_msg"`
	Data     *BackupListView `json:"data"`
}

// ListSchedulesResponse 获取备份计划列表的响应
type ListSchedulesResponse struct {
	ErrorMsg string          `json:"error_msg"`
	Data     []*ScheduleInfo `json:"data"`
}

// ListTagsResponse 获取标签列表的响应
type ListTagsResponse struct {
	ErrorMsg string    `json:"error_msg"`
	Data     []TagInfo `json:"data"`
}

// ListBackups handles GET /api/v1/backups.
// ListBackups 处理 GET /api/v1/backups - 获取备份列表。
// @Tags backups
// @Produce json
// @Param search query string false "hostname, snapshot or repository search"
// @Param status query string false "backup status or all"
// @Param agent_id query string false "agent id or all"
// @Param repository_id query string false "repository id or all"
// @Param window query string false "all, 7d, 30d or 90d"
// @Param tag_ids query string false "comma separated tag ids"
// @Success 200 {object} ListBackupsResponse
// @Router /api/v1/backups [get]
func (h *Handler) ListBackups(c *gin.Context) {
	state, err := collection.FromQuery(c.Request.URL.Query(),
		collection.Window(config.Config.View.DefaultWindow),
		"status", "agent_id", "repository_id", "schedule_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ListBackupsResponse{ErrorMsg: err.Error()})
		return
	}

	view, err := h.service.ListBackups(c.Request.Context(), state)
	if err != nil {
		logger.ErrorF(c.Request.Context(), "[Backup] list backups failed: %v", err)
		c.JSON(h.getStatusCodeForError(err), ListBackupsResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListBackupsResponse{Data: view})
}

// ListSchedules handles GET /api/v1/schedules.
// @Tags backups
// @Produce json
// @Success 200 {object} ListSchedulesResponse
// @Router /api/v1/schedules [get]
func (h *Handler) ListSchedules(c *gin.Context) {
	schedules, err := h.service.ListSchedules(c.Request.Context())
	if err != nil {
		logger.ErrorF(c.Request.Context(), "[Backup] list schedules failed: %v", err)
		c.JSON(h.getStatusCodeForError(err), ListSchedulesResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListSchedulesResponse{Data: schedules})
}

// ListTags handles GET /api/v1/tags.
// @Tags backups
// @Produce json
// @Success 200 {object} ListTagsResponse
// @Router /api/v1/tags [get]
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		c.JSON(h.getStatusCodeForError(err), ListTagsResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListTagsResponse{Data: tags})
}

// getStatusCodeForError maps service errors to HTTP status codes.
func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, ErrBackupNotFound):
		return http.StatusNotFound
	case errors.Is(err, collection.ErrUnknownField), errors.Is(err, collection.ErrInvalidWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
