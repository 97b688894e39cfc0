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

// Package cache 提供视图模型缓存抽象层，支持内存存储和 Redis 存储
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// 错误定义
var (
	ErrKeyNotFound = errors.New("cache: key not found")
	ErrExpired     = errors.New("cache: key expired")
)

// Store 缓存存储接口
// Values are stored as JSON so both backends decode into the caller's type.
type Store interface {
	// Get decodes the value stored under key into dst.
	// 如果 key 不存在，返回 ErrKeyNotFound
	Get(ctx context.Context, key string, dst any) error

	// Set 设置指定 key 的值，expiration 为 0 表示永不过期
	Set(ctx context.Context, key string, value any, expiration time.Duration) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// defaultSweepInterval 过期项清理的最小间隔
const defaultSweepInterval = time.Minute

// memoryItem 内存存储项
type memoryItem struct {
	data       []byte
	expiration int64 // Unix 纳秒时间戳，0 表示永不过期
}

func (item *memoryItem) isExpired(now time.Time) bool {
	return item.expiration != 0 && now.UnixNano() > item.expiration
}

// MemoryStore 内存缓存实现
// Expired items are dropped on read and swept from Set at most once per
// sweepInterval, so keys that are never read again still get released.
type MemoryStore struct {
	data          sync.Map
	now           func() time.Time
	sweepInterval time.Duration
	lastSweep     atomic.Int64 // Unix 纳秒
}

// NewMemoryStore 创建新的内存存储实例
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, sweepInterval: defaultSweepInterval}
}

func (m *MemoryStore) load(key string) (*memoryItem, error) {
	value, ok := m.data.Load(key)
	if !ok {
		return nil, ErrKeyNotFound
	}
	item := value.(*memoryItem)
	if item.isExpired(m.now()) {
		m.data.CompareAndDelete(key, value)
		return nil, ErrExpired
	}
	return item, nil
}

// Get 从内存中读取并解码
func (m *MemoryStore) Get(ctx context.Context, key string, dst any) error {
	item, err := m.load(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(item.data, dst)
}

// Set 将值编码后存入内存
func (m *MemoryStore) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	now := m.now()
	var exp int64
	if expiration > 0 {
		exp = now.Add(expiration).UnixNano()
	}
	m.data.Store(key, &memoryItem{data: data, expiration: exp})
	m.maybeSweep(now)
	return nil
}

// maybeSweep 清理过期项；只有一个调用方能赢得本轮清理
func (m *MemoryStore) maybeSweep(now time.Time) {
	last := m.lastSweep.Load()
	if now.UnixNano()-last < int64(m.sweepInterval) {
		return
	}
	if !m.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	m.data.Range(func(k, v any) bool {
		if v.(*memoryItem).isExpired(now) {
			m.data.CompareAndDelete(k, v)
		}
		return true
	})
}

func (m *MemoryStore) DeletePrefix(ctx context.Context, prefix string) error {
	m.data.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			m.data.Delete(k)
		}
		return true
	})
	return nil
}

// RedisStore Redis 缓存实现
type RedisStore struct {
	client redis.UniversalClient
	prefix string // key 前缀
}

// NewRedisStore 创建新的 Redis 存储实例
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "keldris:view:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) buildKey(key string) string {
	return r.prefix + key
}

// Get 从 Redis 中读取并解码
func (r *RedisStore) Get(ctx context.Context, key string, dst any) error {
	result, err := r.client.Get(ctx, r.buildKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrKeyNotFound
		}
		return err
	}
	return json.Unmarshal(result, dst)
}

// Set 将值序列化为 JSON 存入 Redis
func (r *RedisStore) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.buildKey(key), data, expiration).Err()
}

// DeletePrefix walks matching keys with SCAN; KEYS would block the server.
func (r *RedisStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, r.buildKey(prefix)+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
