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

package otel_trace

import (
	"context"
	"sync"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	Tracer        trace.Tracer = noop.NewTracerProvider().Tracer("noop")
	shutdownFuncs []func(context.Context) error
	initOnce      sync.Once
	enabled       bool
)

// Init initializes OpenTelemetry tracing based on configuration.
// Init 根据配置初始化 OpenTelemetry 追踪。
// This should be called after config is loaded.
func Init() {
	initOnce.Do(func() {
		ctx := context.Background()
		if !config.Config.Telemetry.Enabled {
			logger.InfoF(ctx, "[Trace] OpenTelemetry tracing is disabled / OpenTelemetry 追踪已禁用")
			return
		}

		otel.SetTextMapPropagator(newPropagator())

		tracerProvider, err := newTracerProvider(ctx)
		if err != nil {
			logger.WarnF(ctx, "[Trace] Failed to init trace provider, using noop tracer: %v", err)
			return
		}

		shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
		otel.SetTracerProvider(tracerProvider)

		Tracer = tracerProvider.Tracer("github.com/MacJediWizard/keldris-sub001")
		enabled = true
		logger.InfoF(ctx, "[Trace] OpenTelemetry tracing initialized, exporter=%s", config.Config.Telemetry.Endpoint)
	})
}

func newPropagator() propagation.TextMapPropagator {
	return propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	)
}

func newTracerProvider(ctx context.Context) (*sdktrace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(config.Config.Telemetry.Endpoint)}
	if config.Config.Telemetry.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.Config.App.AppName),
	))
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// IsEnabled returns whether tracing is enabled.
func IsEnabled() bool {
	return enabled
}

func Shutdown(ctx context.Context) {
	for _, fn := range shutdownFuncs {
		_ = fn(ctx)
	}
	shutdownFuncs = nil
}

// ShutdownWithTimeout flushes exporters on a fresh context bounded by timeout.
// ShutdownWithTimeout 使用新的上下文刷新导出器，调用方的信号上下文此时通常已取消。
func ShutdownWithTimeout(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	Shutdown(ctx)
}

// Start opens a span on the configured tracer (noop until Init succeeds).
func Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer.Start(ctx, name, opts...)
}
