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
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
)

var drTestSchema = collection.Schema[*DRTest]{
	Search: func(d *DRTest) string { return d.RunbookName },
	Enums: map[string]func(*DRTest) string{
		"status":     func(d *DRTest) string { return string(d.Status) },
		"runbook_id": func(d *DRTest) string { return d.RunbookID },
	},
	CreatedAt: func(d *DRTest) time.Time { return d.CreatedAt },
}

// Service derives DR test page view-models.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a new Service instance.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Summarize counts runs by outcome.
func Summarize(tests []*DRTest) Summary {
	counts := collection.CountBy(tests, func(d *DRTest) string { return string(d.Status) })
	return Summary{
		Total:   len(tests),
		Passed:  counts[string(StatusPassed)],
		Failed:  counts[string(StatusFailed)],
		Running: counts[string(StatusRunning)],
	}
}

// List filters DR test runs by state. The summary covers every run.
func (s *Service) List(ctx context.Context, state collection.FilterState) (*DRTestListView, error) {
	start := time.Now()
	tests, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered, err := collection.Apply(tests, drTestSchema, state, s.now())
	if err != nil {
		return nil, err
	}

	view := &DRTestListView{
		Summary: Summarize(tests),
		Total:   len(filtered),
		Tests:   make([]*DRTestInfo, 0, len(filtered)),
	}
	for _, d := range filtered {
		view.Tests = append(view.Tests, d.ToInfo())
	}
	metrics.ObserveView("dr_tests", start, len(filtered))
	return view, nil
}

// GetSummary returns the summary over every run.
func (s *Service) GetSummary(ctx context.Context) (Summary, error) {
	tests, err := s.repo.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(tests), nil
}
