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

package ratelimit

import (
	"errors"
	"net/http"

	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/gin-gonic/gin"
)

// Handler provides HTTP handlers for the rate limits page.
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RateLimitViewResponse 限流页面响应
type RateLimitViewResponse struct {
	ErrorMsg string         `json:"error_msg"`
	Data     *RateLimitView `json:"data"`
}

// GetRateLimits handles GET /api/v1/rate-limits.
// @Tags rate-limits
// @Produce json
// @Param search query string false "endpoint search"
// @Param enabled query string false "true, false or all"
// @Success 200 {object} RateLimitViewResponse
// @Router /api/v1/rate-limits [get]
func (h *Handler) GetRateLimits(c *gin.Context) {
	state, err := collection.FromQuery(c.Request.URL.Query(), collection.WindowAll, "enabled")
	if err != nil {
		c.JSON(http.StatusBadRequest, RateLimitViewResponse{ErrorMsg: err.Error()})
		return
	}

	view, err := h.service.View(c.Request.Context(), state)
	if err != nil {
		c.JSON(h.getStatusCodeForError(err), RateLimitViewResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, RateLimitViewResponse{Data: view})
}

func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, collection.ErrUnknownField), errors.Is(err, collection.ErrInvalidWindow):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrInvalidIP):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
