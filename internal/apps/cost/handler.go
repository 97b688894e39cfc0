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

package cost

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/gin-gonic/gin"
)

// Handler provides HTTP handlers for the cost pages.
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ForecastResponse 成本预测的响应
type ForecastResponse struct {
	ErrorMsg string        `json:"error_msg"`
	Data     *ForecastView `json:"data"`
}

// CreateSampleResponse 写入成本样本的响应
type CreateSampleResponse struct {
	ErrorMsg string      `json:"error_msg"`
	Data     *CostSample `json:"data"`
}

// ListAlertsResponse 获取成本告警列表的响应
type ListAlertsResponse struct {
	ErrorMsg string         `json:"error_msg"`
	Data     *AlertListView `json:"data"`
}

// GetForecast handles GET /api/v1/costs/forecast.
// GetForecast 处理 GET /api/v1/costs/forecast - 获取成本预测。
// @Tags costs
// @Produce json
// @Param repository_id query string false "repository id or all"
// @Param months query int false "forecast horizon in months"
// @Success 200 {object} ForecastResponse
// @Router /api/v1/costs/forecast [get]
func (h *Handler) GetForecast(c *gin.Context) {
	months := 0
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ForecastResponse{ErrorMsg: ErrInvalidHorizon.Error()})
			return
		}
		months = n
		if months <= 0 {
			c.JSON(http.StatusBadRequest, ForecastResponse{ErrorMsg: ErrInvalidHorizon.Error()})
			return
		}
	}
	repositoryID := c.Query("repository_id")
	if repositoryID == collection.All {
		repositoryID = ""
	}

	view, err := h.service.Forecast(c.Request.Context(), repositoryID, months)
	if err != nil {
		logger.ErrorF(c.Request.Context(), "[Cost] forecast failed: %v", err)
		c.JSON(h.getStatusCodeForError(err), ForecastResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ForecastResponse{Data: view})
}

// CreateSample handles POST /api/v1/costs/samples.
// @Tags costs
// @Accept json
// @Produce json
// @Param request body CreateSampleRequest true "monthly cost sample"
// @Success 200 {object} CreateSampleResponse
// @Router /api/v1/costs/samples [post]
func (h *Handler) CreateSample(c *gin.Context) {
	var req CreateSampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, CreateSampleResponse{ErrorMsg: err.Error()})
		return
	}

	sample, err := h.service.IngestSample(c.Request.Context(), &req)
	if err != nil {
		c.JSON(h.getStatusCodeForError(err), CreateSampleResponse{ErrorMsg: err.Error()})
		return
	}
	logger.InfoF(c.Request.Context(), "[Cost] 写入成本样本: repository=%s period=%s", sample.RepositoryID, sample.Period.Format("2006-01"))
	c.JSON(http.StatusOK, CreateSampleResponse{Data: sample})
}

// ListAlerts handles GET /api/v1/costs/alerts.
// @Tags costs
// @Produce json
// @Success 200 {object} ListAlertsResponse
// @Router /api/v1/costs/alerts [get]
func (h *Handler) ListAlerts(c *gin.Context) {
	view, err := h.service.ListAlerts(c.Request.Context())
	if err != nil {
		c.JSON(h.getStatusCodeForError(err), ListAlertsResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListAlertsResponse{Data: view})
}

// getStatusCodeForError maps service errors to HTTP status codes.
func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidHorizon),
		errors.Is(err, ErrInvalidPeriod),
		errors.Is(err, ErrNegativeAmount),
		errors.Is(err, ErrRepositoryRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
