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

package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpersBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		InfoF(context.Background(), "[Test] %s", "nop core")
		ErrorF(context.Background(), "[Test] %d", 1)
	})
}

func TestNew_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, err := New(config.LogConfig{Level: "debug", Format: "json", Output: "file", FilePath: path, MaxSize: 1})
	require.NoError(t, err)

	l.Sugar().Ctx(context.Background()).Infof("[Test] hello %s", "file")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l, err := New(config.LogConfig{Level: "loud", Output: "stdout"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}
