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
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"
)

// Config is the process-wide configuration. It holds defaults until Init or
// Load succeeds, so packages may read it safely in tests.
var Config = mustDefaults()

func mustDefaults() *configModel {
	var c configModel
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("[Config] invalid default tags: %v", err))
	}
	return &c
}

// Init 读取 CONFIG_PATH（默认 config.yaml）并设置全局配置，失败时退出进程
func Init() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	if err := Load(configPath); err != nil {
		log.Fatalf("[Config] %v\n", err)
	}
}

// Load reads the YAML file at path, overlays environment variables
// (app.addr -> APP_ADDR) and replaces the global Config.
func Load(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config failed: %w", err)
	}

	c := mustDefaults()
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("parse config failed: %w", err)
	}

	Config = c
	return nil
}

// GetDatabaseType 获取数据库类型
func GetDatabaseType() string {
	return Config.Database.Type
}

// IsRedisEnabled 检查 Redis 是否启用
func IsRedisEnabled() bool {
	return Config.Redis.Enabled
}

// IsWorkerEnabled reports whether the asynq worker pipeline is on.
func IsWorkerEnabled() bool {
	return Config.Worker.Enabled && Config.Redis.Enabled
}

// RedisAddr returns host:port of the configured Redis.
func RedisAddr() string {
	return fmt.Sprintf("%s:%d", Config.Redis.Host, Config.Redis.Port)
}

// ForecastCacheTTL 预测结果缓存时长
func ForecastCacheTTL() time.Duration {
	return time.Duration(Config.View.ForecastCacheTTLSeconds) * time.Second
}

// CompareCacheTTL 快照对比结果缓存时长
func CompareCacheTTL() time.Duration {
	return time.Duration(Config.View.CompareCacheTTLSeconds) * time.Second
}
