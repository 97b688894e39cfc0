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

package notification

import (
	"errors"
	"net/http"

	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/gin-gonic/gin"
)

// Handler provides HTTP handlers for notification channels.
type Handler struct {
	service *Service
}

// NewHandler creates a new Handler instance.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListChannelsResponse 通知渠道列表响应
type ListChannelsResponse struct {
	ErrorMsg string           `json:"error_msg"`
	Data     *ChannelListView `json:"data"`
}

// ChannelResponse 单个通知渠道响应
type ChannelResponse struct {
	ErrorMsg string       `json:"error_msg"`
	Data     *ChannelInfo `json:"data"`
}

// ListChannels handles GET /api/v1/notifications/channels.
// @Tags notifications
// @Produce json
// @Param search query string false "name or destination search"
// @Param type query string false "channel type or all"
// @Param enabled query string false "true, false or all"
// @Success 200 {object} ListChannelsResponse
// @Router /api/v1/notifications/channels [get]
func (h *Handler) ListChannels(c *gin.Context) {
	state, err := collection.FromQuery(c.Request.URL.Query(), collection.WindowAll, "type", "enabled")
	if err != nil {
		c.JSON(http.StatusBadRequest, ListChannelsResponse{ErrorMsg: err.Error()})
		return
	}

	view, err := h.service.List(c.Request.Context(), state)
	if err != nil {
		c.JSON(h.getStatusCodeForError(err), ListChannelsResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusOK, ListChannelsResponse{Data: view})
}

// CreateChannel handles POST /api/v1/notifications/channels.
// @Tags notifications
// @Accept json
// @Produce json
// @Param request body CreateChannelRequest true "channel"
// @Success 201 {object} ChannelResponse
// @Failure 400 {object} ChannelResponse
// @Router /api/v1/notifications/channels [post]
func (h *Handler) CreateChannel(c *gin.Context) {
	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ChannelResponse{ErrorMsg: err.Error()})
		return
	}

	info, err := h.service.CreateChannel(c.Request.Context(), &req)
	if err != nil {
		c.JSON(h.getStatusCodeForError(err), ChannelResponse{ErrorMsg: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ChannelResponse{Data: info})
}

func (h *Handler) getStatusCodeForError(err error) int {
	switch {
	case errors.Is(err, ErrChannelNameEmpty), errors.Is(err, ErrUnknownType), errors.Is(err, ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, collection.ErrUnknownField), errors.Is(err, collection.ErrInvalidWindow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
