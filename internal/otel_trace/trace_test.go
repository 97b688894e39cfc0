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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownWithTimeout_UsesLiveContext(t *testing.T) {
	var flushErr error
	var hasDeadline bool
	shutdownFuncs = append(shutdownFuncs, func(ctx context.Context) error {
		flushErr = ctx.Err()
		_, hasDeadline = ctx.Deadline()
		return nil
	})

	ShutdownWithTimeout(time.Second)
	assert.NoError(t, flushErr)
	assert.True(t, hasDeadline)
	assert.Empty(t, shutdownFuncs)
}

func TestStart_NoopTracerWhenDisabled(t *testing.T) {
	ctx, span := Start(context.Background(), "test.span")
	defer span.End()
	assert.NotNil(t, ctx)
	assert.False(t, IsEnabled())
}
