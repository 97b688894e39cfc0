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

package snapshot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/cache"
	"github.com/MacJediWizard/keldris-sub001/internal/config"
	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
	"github.com/MacJediWizard/keldris-sub001/internal/otel_trace"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/badge"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/snapshotdiff"
)

var snapshotSchema = collection.Schema[*Snapshot]{
	Search: func(s *Snapshot) string { return s.ShortID + "\n" + s.Hostname },
	Enums: map[string]func(*Snapshot) string{
		"agent_id":      func(s *Snapshot) string { return s.AgentID },
		"repository_id": func(s *Snapshot) string { return s.RepositoryID },
	},
	CreatedAt: func(s *Snapshot) time.Time { return s.CreatedAt },
}

var changeSchema = collection.Schema[snapshotdiff.Change]{
	Search: func(c snapshotdiff.Change) string { return c.Path },
	Enums: map[string]func(snapshotdiff.Change) string{
		"change_type": func(c snapshotdiff.Change) string { return string(c.ChangeType) },
		"type":        func(c snapshotdiff.Change) string { return string(c.Type) },
	},
}

// Service derives snapshot page view-models.
type Service struct {
	repo  *Repository
	cache cache.Store
	now   func() time.Time
}

// NewService creates a new Service instance. Diff results are cached in
// store because snapshots never change once written.
func NewService(repo *Repository, store cache.Store) *Service {
	return &Service{repo: repo, cache: store, now: time.Now}
}

// ListSnapshots filters snapshots by state.
func (s *Service) ListSnapshots(ctx context.Context, state collection.FilterState) (*SnapshotListView, error) {
	start := time.Now()
	snapshots, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered, err := collection.Apply(snapshots, snapshotSchema, state, s.now())
	if err != nil {
		return nil, err
	}

	view := &SnapshotListView{Total: len(filtered), Snapshots: make([]*SnapshotInfo, 0, len(filtered))}
	for _, sn := range filtered {
		view.Snapshots = append(view.Snapshots, sn.ToSnapshotInfo())
	}
	metrics.ObserveView("snapshots", start, len(filtered))
	return view, nil
}

// Compare diffs snapshot id1 (older side) against id2. Comparing a snapshot
// with itself is refused with ErrSameSnapshot.
// Compare 对比两个快照；同一快照对比返回 ErrSameSnapshot。
func (s *Service) Compare(ctx context.Context, id1, id2 string, state collection.FilterState) (*CompareView, error) {
	start := time.Now()
	id1, id2 = strings.TrimSpace(id1), strings.TrimSpace(id2)
	if id1 == "" || id2 == "" {
		return nil, ErrSnapshotIDRequired
	}
	if id1 == id2 {
		return nil, ErrSameSnapshot
	}

	// Validate filters before doing any I/O.
	preds, err := changeSchema.Predicates(state, s.now())
	if err != nil {
		return nil, err
	}

	snap1, err := s.repo.GetByID(ctx, id1)
	if err != nil {
		return nil, err
	}
	snap2, err := s.repo.GetByID(ctx, id2)
	if err != nil {
		return nil, err
	}

	result, err := s.diff(ctx, id1, id2)
	if err != nil {
		return nil, err
	}

	changes := collection.Filter(result.Changes, preds...)
	view := &CompareView{
		Snapshot1: snap1.ToSnapshotInfo(),
		Snapshot2: snap2.ToSnapshotInfo(),
		Identical: result.Identical(),
		Stats:     result.Stats,
		Total:     len(changes),
		Changes:   make([]ChangeInfo, 0, len(changes)),
	}
	for _, c := range changes {
		view.Changes = append(view.Changes, ChangeInfo{
			Change: c,
			Badge:  badge.NewView(badge.DomainChange, string(c.ChangeType)),
		})
	}
	metrics.ObserveView("snapshot_compare", start, len(changes))
	return view, nil
}

// diff returns the full, unfiltered comparison, reading through the cache.
func (s *Service) diff(ctx context.Context, id1, id2 string) (snapshotdiff.Result, error) {
	key := "snapshotdiff:" + id1 + ":" + id2

	var cached snapshotdiff.Result
	err := s.cache.Get(ctx, key, &cached)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case errors.Is(err, cache.ErrKeyNotFound), errors.Is(err, cache.ErrExpired):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		logger.WarnF(ctx, "[Snapshot] read diff cache failed: %v", err)
	}

	ctx, span := otel_trace.Start(ctx, "snapshot.diff")
	defer span.End()
	a, err := s.manifest(ctx, id1)
	if err != nil {
		return snapshotdiff.Result{}, err
	}
	b, err := s.manifest(ctx, id2)
	if err != nil {
		return snapshotdiff.Result{}, err
	}
	result := snapshotdiff.Compare(a, b)

	if err := s.cache.Set(ctx, key, result, config.CompareCacheTTL()); err != nil {
		logger.WarnF(ctx, "[Snapshot] write diff cache failed: %v", err)
	}
	return result, nil
}

func (s *Service) manifest(ctx context.Context, snapshotID string) ([]snapshotdiff.Entry, error) {
	files, err := s.repo.ListFiles(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	entries := make([]snapshotdiff.Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, f.ToEntry())
	}
	return entries, nil
}
