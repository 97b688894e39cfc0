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

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// Default 全局缓存实例，未初始化时为内存存储
var Default Store = NewMemoryStore()

// StoreType 缓存存储类型
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// InitStore 根据配置初始化缓存
// 如果 Redis 启用，使用 Redis 存储；否则使用内存存储
func InitStore(ctx context.Context) error {
	if !config.IsRedisEnabled() {
		logger.InfoF(ctx, "[Cache] 使用内存缓存")
		Default = NewMemoryStore()
		return nil
	}

	client := NewRedisClient(config.Config.Redis)
	if err := redisotel.InstrumentTracing(client); err != nil {
		return fmt.Errorf("instrument redis tracing failed: %w", err)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis %s failed: %w", config.RedisAddr(), err)
	}

	logger.InfoF(ctx, "[Cache] 使用 Redis 缓存 %s", config.RedisAddr())
	Default = NewRedisStore(client, "keldris:view:")
	return nil
}

// NewRedisClient builds a go-redis client from the redis config section.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConn,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})
}

// GetStoreType 获取当前缓存存储类型
func GetStoreType() StoreType {
	if _, ok := Default.(*RedisStore); ok {
		return StoreTypeRedis
	}
	return StoreTypeMemory
}
