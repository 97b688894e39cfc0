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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := mustDefaults()
	assert.Equal(t, "sqlite", c.Database.Type)
	assert.Equal(t, 12, c.View.ForecastHorizonMonths)
	assert.Equal(t, "all", c.View.DefaultWindow)
	assert.Equal(t, "0 * * * *", c.Worker.ForecastRefreshCron)
	assert.False(t, c.Redis.Enabled)
}

func TestLoad_OverridesAndKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  addr: ":9090"
database:
  type: postgres
  host: db.internal
  port: 5432
view:
  forecast_horizon_months: 6
redis:
  enabled: true
worker:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	old := Config
	t.Cleanup(func() { Config = old })

	require.NoError(t, Load(path))
	assert.Equal(t, ":9090", Config.App.Addr)
	assert.Equal(t, "/api", Config.App.APIPrefix)
	assert.Equal(t, "postgres", GetDatabaseType())
	assert.Equal(t, 6, Config.View.ForecastHorizonMonths)
	assert.Equal(t, 900*time.Second, ForecastCacheTTL())
	assert.True(t, IsWorkerEnabled())
	assert.Equal(t, "127.0.0.1:6379", RedisAddr())
}

func TestLoad_MissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
