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

package drtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates a temporary SQLite database for testing
func setupTestDB(t *testing.T) (*gorm.DB, func()) {
	tempDir, err := os.MkdirTemp("", "drtest_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	db, err := gorm.Open(sqlite.Open(filepath.Join(tempDir, "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&DRTest{}); err != nil {
		os.RemoveAll(tempDir)
		t.Fatalf("Failed to migrate: %v", err)
	}

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		os.RemoveAll(tempDir)
	}
	return db, cleanup
}

func intPtr(v int) *int { return &v }

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, svc *Service) {
	runs := []*DRTest{
		{RunbookID: "rb1", RunbookName: "Database restore", Status: StatusPassed, RTOMinutes: intPtr(60), ActualRTOMinutes: intPtr(45), RPOMinutes: intPtr(15), ActualRPOMinutes: intPtr(20), CreatedAt: testNow.Add(-time.Hour)},
		{RunbookID: "rb1", RunbookName: "Database restore", Status: StatusFailed, ErrorMessage: "checksum mismatch", CreatedAt: testNow.Add(-20 * 24 * time.Hour)},
		{RunbookID: "rb2", RunbookName: "Web tier failover", Status: StatusRunning, CreatedAt: testNow.Add(-2 * time.Hour)},
		{RunbookID: "rb2", RunbookName: "Web tier failover", Status: StatusSkipped, CreatedAt: testNow.Add(-100 * 24 * time.Hour)},
	}
	for _, r := range runs {
		require.NoError(t, svc.repo.Create(context.Background(), r))
	}
}

func TestService_List(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewRepository(db))
	svc.now = func() time.Time { return testNow }
	seed(t, svc)
	ctx := context.Background()

	view, err := svc.List(ctx, collection.FilterState{})
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 4, Passed: 1, Failed: 1, Running: 1}, view.Summary)
	require.Len(t, view.Tests, 4)

	first := view.Tests[0]
	assert.Equal(t, "Database restore", first.RunbookName)
	require.NotNil(t, first.RTOMet)
	assert.True(t, *first.RTOMet)
	require.NotNil(t, first.RPOMet)
	assert.False(t, *first.RPOMet)
	assert.Nil(t, view.Tests[1].RTOMet)

	view, err = svc.List(ctx, collection.FilterState{Search: "web", Window: collection.Window30d})
	require.NoError(t, err)
	require.Equal(t, 1, view.Total)
	assert.Equal(t, "running", view.Tests[0].Status.Status)
	assert.Equal(t, 4, view.Summary.Total)

	assert.ErrorIs(t, svc.repo.Create(ctx, &DRTest{}), ErrRunbookRequired)
}

// TestProperty_SummaryNeverDoubleCounts passed + failed + running never exceeds total
func TestProperty_SummaryNeverDoubleCounts(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	statuses := []Status{StatusPending, StatusRunning, StatusCompleted, StatusPassed, StatusFailed, StatusSkipped, "bogus"}
	properties.Property("summary partitions are disjoint", prop.ForAll(
		func(idx []int) bool {
			tests := make([]*DRTest, 0, len(idx))
			for _, i := range idx {
				tests = append(tests, &DRTest{Status: statuses[i]})
			}
			s := Summarize(tests)
			return s.Total == len(tests) && s.Passed+s.Failed+s.Running <= s.Total
		},
		gen.SliceOf(gen.IntRange(0, len(statuses)-1)),
	))

	properties.TestingRun(t)
}

func TestHandler_ListDRTests(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	svc := NewService(NewRepository(db))
	seed(t, svc)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/dr-tests", NewHandler(svc).ListDRTests)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dr-tests?status=passed", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"rto_met":true`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/dr-tests?window=2w", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
