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

package router

import (
	"errors"
	"net/http"

	"github.com/MacJediWizard/keldris-sub001/internal/cache"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errNoDatabase = errors.New("database not initialized")

// HealthStatus 健康检查结果
type HealthStatus struct {
	Status   string          `json:"status"`
	Database string          `json:"database"`
	Cache    cache.StoreType `json:"cache"`
}

// healthHandler handles GET /api/v1/health.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /api/v1/health [get]
func healthHandler(database *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := HealthStatus{Status: "ok", Database: "ok", Cache: cache.GetStoreType()}

		err := errNoDatabase
		if database != nil {
			sqlDB, dbErr := database.DB()
			if err = dbErr; err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
		}
		if err != nil {
			h.Status, h.Database = "degraded", err.Error()
			c.JSON(http.StatusServiceUnavailable, gin.H{"error_msg": "database unavailable", "data": h})
			return
		}
		c.JSON(http.StatusOK, gin.H{"error_msg": "", "data": h})
	}
}
