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

// Package logger provides the process logger: zap cores (console and a
// lumberjack-rotated file) wrapped by otelzap so records carry trace ids.
// logger 包提供进程日志：zap + lumberjack 文件轮转 + otelzap 追踪关联。
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu      sync.RWMutex
	current = otelzap.New(zap.NewNop())
)

// Init builds the logger from config.Config.Log and installs it globally.
// Init 根据配置初始化全局日志。
func Init() error {
	l, err := New(config.Config.Log)
	if err != nil {
		return err
	}
	mu.Lock()
	current = l
	mu.Unlock()
	otelzap.ReplaceGlobals(l)
	return nil
}

// New builds an otelzap logger for the given settings.
func New(cfg config.LogConfig) (*otelzap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	var cores []zapcore.Core
	if cfg.Output != "file" {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level))
	}
	if cfg.Output == "file" || cfg.Output == "both" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	base := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	return otelzap.New(base, otelzap.WithMinLevel(level)), nil
}

// L returns the current logger.
func L() *otelzap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Sync flushes buffered entries.
func Sync() {
	_ = L().Sync()
}

func DebugF(ctx context.Context, format string, args ...any) {
	L().Sugar().Ctx(ctx).Debugf(format, args...)
}

func InfoF(ctx context.Context, format string, args ...any) {
	L().Sugar().Ctx(ctx).Infof(format, args...)
}

func WarnF(ctx context.Context, format string, args ...any) {
	L().Sugar().Ctx(ctx).Warnf(format, args...)
}

func ErrorF(ctx context.Context, format string, args ...any) {
	L().Sugar().Ctx(ctx).Errorf(format, args...)
}
