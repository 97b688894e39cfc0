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

// configModel is the root of config.yaml. Defaults come from the `default`
// struct tags and are applied by creasty/defaults before viper unmarshals.
type configModel struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	View      ViewConfig      `mapstructure:"view"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// AppConfig 应用基本配置
type AppConfig struct {
	AppName   string `mapstructure:"app_name" default:"keldris"`
	Env       string `mapstructure:"env" default:"development"`
	Addr      string `mapstructure:"addr" default:":8080"`
	APIPrefix string `mapstructure:"api_prefix" default:"/api"`
	// TrustedProxies 受信任的反向代理 (IP/CIDR)，为空时忽略 X-Forwarded-For
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Enabled         bool   `mapstructure:"enabled" default:"true"`
	Type            string `mapstructure:"type" default:"sqlite"`                   // sqlite, mysql, postgres
	SQLitePath      string `mapstructure:"sqlite_path" default:"./data/keldris.db"` // SQLite 文件路径
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConn     int    `mapstructure:"max_idle_conn" default:"10"`
	MaxOpenConn     int    `mapstructure:"max_open_conn" default:"50"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" default:"3600"`
	LogLevel        string `mapstructure:"log_level" default:"warn"`
	SlowThresholdMs int    `mapstructure:"slow_threshold_ms" default:"200"` // 慢查询阈值，0 关闭
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host" default:"127.0.0.1"`
	Port         int    `mapstructure:"port" default:"6379"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size" default:"10"`
	MinIdleConn  int    `mapstructure:"min_idle_conn" default:"2"`
	DialTimeout  int    `mapstructure:"dial_timeout" default:"5"`
	ReadTimeout  int    `mapstructure:"read_timeout" default:"3"`
	WriteTimeout int    `mapstructure:"write_timeout" default:"3"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" default:"info"`
	Format     string `mapstructure:"format" default:"console"` // json, console
	Output     string `mapstructure:"output" default:"stdout"`  // stdout, file, both
	FilePath   string `mapstructure:"file_path" default:"./logs/keldris.log"`
	MaxSize    int    `mapstructure:"max_size" default:"100"`
	MaxAge     int    `mapstructure:"max_age" default:"30"`
	MaxBackups int    `mapstructure:"max_backups" default:"7"`
	Compress   bool   `mapstructure:"compress"`
}

// TelemetryConfig OpenTelemetry 配置
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint" default:"localhost:4317"`
	Insecure bool   `mapstructure:"insecure" default:"true"`
}

// WorkerConfig 后台任务配置
type WorkerConfig struct {
	Enabled             bool   `mapstructure:"enabled"`
	Concurrency         int    `mapstructure:"concurrency" default:"4"`
	ForecastRefreshCron string `mapstructure:"forecast_refresh_cron" default:"0 * * * *"`
}

// ViewConfig controls view-model derivation defaults.
// ViewConfig 视图模型计算的默认参数
type ViewConfig struct {
	ForecastHorizonMonths   int    `mapstructure:"forecast_horizon_months" default:"12"`
	ForecastCacheTTLSeconds int    `mapstructure:"forecast_cache_ttl_seconds" default:"900"`
	CompareCacheTTLSeconds  int    `mapstructure:"compare_cache_ttl_seconds" default:"3600"`
	DefaultWindow           string `mapstructure:"default_window" default:"all"`
	RecentBlockedLimit      int    `mapstructure:"recent_blocked_limit" default:"50"`
}

// RateLimitConfig API 限流配置
type RateLimitConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	DefaultPerSecond int  `mapstructure:"default_per_second" default:"20"`
	DefaultBurst     int  `mapstructure:"default_burst" default:"40"`
	RefreshSeconds   int  `mapstructure:"refresh_seconds" default:"30"`
}
