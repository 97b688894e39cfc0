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

package snapshot

import (
	"errors"
	"net/http"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/gin-gonic/gin"
)

// Handler provides HTTP handlers for the snapshots pages.
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListSnapshotsResponse 获取快照列表的响应
type ListSnapshotsResponse struct {
	ErrorMsg string            `json:"error_msg"`
	Data     *SnapshotListView `json:"data"`
}

// CompareResponse 快照对比的响应
type CompareResponse struct {
	ErrorMsg string       `json:"error_msg"`
	Data     *CompareView `json:"data"`
}

// ListSnapshots handles GET /api/v1/snapshots.
// @Tags snapshots
// @Produce json
// @Param search query string false "short id or hostname search"
// @Param agent_id query string false "agent id or all"
// @Param repository_id query string false "repository id or all"
// @Param window query string false "all, 7d, 30d or 90d"
// @Success 200 {object} ListSnapshotsResponse
// @Router /api/v1/snapshots [get]
func (h *Handler) ListSnapshots(c *gin.Context) {
	state, err := collection.FromQuery(c.Request.URL.Query(),
		collection.Window(config.Config.View.DefaultWindow), "agent_id", "repository_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ListSnapshotsResponse{ErrorMsg: err.Error()})
		return
	}

	view, err := h.service.ListSnapshots(c.Request.Context(), state)
	if err != nil {
		logger.ErrorF(c.Request.Context(), "[Snapshot] list snapshots failed: %v", err)
		c.JSON(h.getStatusCodeForError(err), ListSnapshotsResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListSnapshotsResponse{Data: view})
}

// CompareSnapshots handles GET /api/v1/snapshots/compare.
// CompareSnapshots 处理 GET /api/v1/snapshots/compare - 对比两个快照。
// @Tags snapshots
// @Produce json
// @Param snapshot1 query string true "older snapshot id"
// @Param snapshot2 query string true "newer snapshot id"
// @Param change_type query string false "added, removed, modified or all"
// @Param search query string false "path search"
// @Success 200 {object} CompareResponse
// @Router /api/v1/snapshots/compare [get]
func (h *Handler) CompareSnapshots(c *gin.Context) {
	state, err := collection.FromQuery(c.Request.URL.Query(), collection.WindowAll, "change_type", "type")
	if err != nil {
		c.JSON(http.StatusBadRequest, CompareResponse{ErrorMsg: err.Error()})
		return
	}

	view, err := h.service.Compare(c.Request.Context(), c.Query("snapshot1"), c.Query("snapshot2"), state)
	if err != nil {
		c.JSON(h.getStatusCodeForError(err), CompareResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, CompareResponse{Data: view})
}

// getStatusCodeForError maps service errors to HTTP status codes.
func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSameSnapshot),
		errors.Is(err, ErrSnapshotIDRequired),
		errors.Is(err, collection.ErrUnknownField),
		errors.Is(err, collection.ErrInvalidWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
