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

// Package worker runs background view-model refreshes on asynq.
// worker 包基于 asynq 提供后台任务（成本预测刷新）
package worker

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// 任务类型
const (
	TypeForecastRefresh = "cost:forecast:refresh"
)

// QueueDefault 默认队列
const QueueDefault = "default"

// ErrInvalidPayload 任务载荷无法解析
var ErrInvalidPayload = errors.New("worker: invalid task payload")

// ForecastRefreshPayload asks the worker to drop and rebuild cached forecasts.
// An empty RepositoryID refreshes every scope.
type ForecastRefreshPayload struct {
	RepositoryID string `json:"repository_id,omitempty"`
	Reason       string `json:"reason"`
}

// NewForecastRefreshTask 构建成本预测刷新任务
func NewForecastRefreshTask(p ForecastRefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeForecastRefresh, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	), nil
}

// ParseForecastRefresh 解析任务载荷
func ParseForecastRefresh(t *asynq.Task) (ForecastRefreshPayload, error) {
	var p ForecastRefreshPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return p, nil
}
