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
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// gormZapLogger sends gorm's SQL log through the process zap logger, so
// queries carry the request trace id and land in the rotated log file.
// gormZapLogger 将 gorm 日志写入 zap，带上链路 trace id。
type gormZapLogger struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(level string, slowThreshold time.Duration) *gormZapLogger {
	return &gormZapLogger{level: parseGormLevel(level), slowThreshold: slowThreshold}
}

// parseGormLevel 将配置中的日志级别映射为 gorm 级别，未知值按 warn 处理
func parseGormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (l *gormZapLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormZapLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		logger.L().Ctx(ctx).Info("[Database] " + fmt.Sprintf(msg, args...))
	}
}

func (l *gormZapLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		logger.L().Ctx(ctx).Warn("[Database] " + fmt.Sprintf(msg, args...))
	}
}

func (l *gormZapLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		logger.L().Ctx(ctx).Error("[Database] " + fmt.Sprintf(msg, args...))
	}
}

// Trace logs one statement: failures at error, slow queries at warn and
// everything else at info. ErrRecordNotFound is a normal lookup miss.
func (l *gormZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	level := l.classify(elapsed, err)
	if level == gormlogger.Silent || l.level < level {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	log := logger.L().Ctx(ctx)
	switch level {
	case gormlogger.Error:
		log.Error("[Database] query failed", append(fields, zap.Error(err))...)
	case gormlogger.Warn:
		log.Warn("[Database] slow query", append(fields, zap.Duration("threshold", l.slowThreshold))...)
	default:
		log.Info("[Database] query", fields...)
	}
}

// classify returns the level a statement is logged at.
func (l *gormZapLogger) classify(elapsed time.Duration, err error) gormlogger.LogLevel {
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound):
		return gormlogger.Error
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		return gormlogger.Warn
	default:
		return gormlogger.Info
	}
}
