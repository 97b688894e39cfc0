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

package drtest

import (
	"errors"
	"net/http"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/gin-gonic/gin"
)

// Handler provides HTTP handlers for the DR tests page.
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListDRTestsResponse 获取灾备演练列表的响应
type ListDRTestsResponse struct {
	ErrorMsg string          `json:"error_msg"`
	Data     *DRTestListView `json:"data"`
}

// ListDRTests handles GET /api/v1/dr-tests.
// @Tags dr-tests
// @Produce json
// @Param search query string false "runbook name search"
// @Param status query string false "run status or all"
// @Param window query string false "all, 7d, 30d or 90d"
// @Success 200 {object} ListDRTestsResponse
// @Router /api/v1/dr-tests [get]
func (h *Handler) ListDRTests(c *gin.Context) {
	state, err := collection.FromQuery(c.Request.URL.Query(),
		collection.Window(config.Config.View.DefaultWindow), "status", "runbook_id")
	if err != nil {
		c.JSON(http.StatusBadRequest, ListDRTestsResponse{ErrorMsg: err.Error()})
		return
	}

	view, err := h.service.List(c.Request.Context(), state)
	if err != nil {
		c.JSON(h.getStatusCodeForError(err), ListDRTestsResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListDRTestsResponse{Data: view})
}

func (h *Handler) getStatusCodeForError(err error) int {
	if errors.Is(err, collection.ErrUnknownField) || errors.Is(err, collection.ErrInvalidWindow) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
