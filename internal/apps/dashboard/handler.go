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

package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OverviewHandler handles dashboard overview HTTP requests.
// OverviewHandler 处理仪表盘概览 HTTP 请求。
type OverviewHandler struct {
	service *OverviewService
}

// NewOverviewHandler creates a new dashboard overview handler.
// NewOverviewHandler 创建新的仪表盘概览处理器。
func NewOverviewHandler(service *OverviewService) *OverviewHandler {
	return &OverviewHandler{service: service}
}

// GetOverviewData godoc
// @Summary Get complete dashboard overview data
// @Description Agent counts, backups of the last 24h, DR summary, rate limit stats and cost
// @Tags Dashboard
// @Accept json
// @Produce json
// @Success 200 {object} DashboardDataResponse
// @Failure 500 {object} DashboardDataResponse
// @Router /api/v1/dashboard/overview [get]
func (h *OverviewHandler) GetOverviewData(c *gin.Context) {
	data, err := h.service.GetOverviewData(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, DashboardDataResponse{
			ErrorMsg: "Failed to get overview data: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, DashboardDataResponse{Data: data})
}
