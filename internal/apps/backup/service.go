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

package backup

import (
	"context"
	"strings"
	"time"

	"github.com/MacJediWizard/keldris-sub001/internal/logger"
	"github.com/MacJediWizard/keldris-sub001/internal/metrics"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/badge"
	"github.com/MacJediWizard/keldris-sub001/internal/viewmodel/collection"
	"github.com/robfig/cron/v3"
)

// HostnameResolver maps agent ids to hostnames.
type HostnameResolver interface {
	HostnameIndex(ctx context.Context) (map[string]string, error)
}

// backupRow is a backup joined with the lookups the page filters on.
type backupRow struct {
	backup   *Backup
	hostname string
	repo     RepositoryRef
	tags     []TagInfo
	tagIDs   []string
}

var backupSchema = collection.Schema[*backupRow]{
	// newline keeps a query from matching across two fields
	Search: func(r *backupRow) string {
		return strings.Join([]string{r.hostname, r.backup.SnapshotID, r.repo.Name}, "\n")
	},
	Enums: map[string]func(*backupRow) string{
		"status":        func(r *backupRow) string { return string(r.backup.Status) },
		"agent_id":      func(r *backupRow) string { return r.backup.AgentID },
		"repository_id": func(r *backupRow) string { return r.repo.ID },
		"schedule_id":   func(r *backupRow) string { return r.backup.ScheduleID },
	},
	CreatedAt: func(r *backupRow) time.Time { return r.backup.CreatedAt },
	Tags:      func(r *backupRow) []string { return r.tagIDs },
}

// Service derives backup page view-models.
// Service 负责计算备份相关页面的视图模型。
type Service struct {
	repo   *Repository
	agents HostnameResolver
	now    func() time.Time
}

// NewService creates a new Service instance.
func NewService(repo *Repository, agents HostnameResolver) *Service {
	return &Service{repo: repo, agents: agents, now: time.Now}
}

// repositoryIndex resolves repository names and schedule primaries.
type repositoryIndex struct {
	names   map[string]string
	primary map[string]RepositoryRef // schedule id -> primary repository
	links   map[string][]*ScheduleRepository
}

func (s *Service) loadRepositoryIndex(ctx context.Context) (*repositoryIndex, error) {
	repos, err := s.repo.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.repo.ListScheduleRepositories(ctx)
	if err != nil {
		return nil, err
	}

	idx := &repositoryIndex{
		names: collection.Index(repos,
			func(r *StorageRepository) string { return r.ID },
			func(r *StorageRepository) string { return r.Name },
		),
		primary: make(map[string]RepositoryRef),
		links:   collection.GroupBy(links, func(l *ScheduleRepository) string { return l.ScheduleID }),
	}
	for scheduleID, group := range idx.links {
		first, ok := collection.FirstEnabledByPriority(group,
			func(l *ScheduleRepository) int { return l.Priority },
			func(l *ScheduleRepository) bool { return l.Enabled },
		)
		if ok {
			idx.primary[scheduleID] = idx.ref(first.RepositoryID)
		}
	}
	return idx, nil
}

func (idx *repositoryIndex) ref(id string) RepositoryRef {
	if name, ok := idx.names[id]; ok {
		return RepositoryRef{ID: id, Name: name}
	}
	return RepositoryRef{ID: id, Name: UnknownRepository}
}

// resolve returns the backup's own repository, else the primary enabled
// repository of its schedule, else Unknown.
func (idx *repositoryIndex) resolve(b *Backup) RepositoryRef {
	if b.RepositoryID != "" {
		return idx.ref(b.RepositoryID)
	}
	if ref, ok := idx.primary[b.ScheduleID]; ok {
		return ref
	}
	return RepositoryRef{Name: UnknownRepository}
}

func (s *Service) loadTagsByBackup(ctx context.Context) (map[string][]TagInfo, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.repo.ListBackupTags(ctx)
	if err != nil {
		return nil, err
	}
	byID := collection.Index(tags, func(t *Tag) string { return t.ID }, func(t *Tag) *Tag { return t })

	out := make(map[string][]TagInfo)
	for _, l := range links {
		t, ok := byID[l.TagID]
		if !ok {
			continue
		}
		out[l.BackupID] = append(out[l.BackupID], TagInfo{ID: t.ID, Name: t.Name, Color: t.Color})
	}
	return out, nil
}

// ListBackups builds the backups page for state. Counts cover every backup.
// ListBackups 计算备份列表页面：搜索、状态、Agent、仓库、时间窗口与标签过滤。
func (s *Service) ListBackups(ctx context.Context, state collection.FilterState) (*BackupListView, error) {
	start := time.Now()
	backups, err := s.repo.ListBackups(ctx)
	if err != nil {
		return nil, err
	}
	hostnames, err := s.agents.HostnameIndex(ctx)
	if err != nil {
		return nil, err
	}
	repos, err := s.loadRepositoryIndex(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.loadTagsByBackup(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]*backupRow, 0, len(backups))
	for _, b := range backups {
		row := &backupRow{
			backup:   b,
			hostname: hostnames[b.AgentID],
			repo:     repos.resolve(b),
			tags:     tags[b.ID],
		}
		for _, t := range row.tags {
			row.tagIDs = append(row.tagIDs, t.ID)
		}
		rows = append(rows, row)
	}

	filtered, err := collection.Apply(rows, backupSchema, state, s.now())
	if err != nil {
		return nil, err
	}

	view := &BackupListView{
		Total:   len(filtered),
		Counts:  collection.CountBy(backups, func(b *Backup) string { return string(b.Status) }),
		Backups: make([]*BackupInfo, 0, len(filtered)),
	}
	for _, r := range filtered {
		view.Backups = append(view.Backups, r.toInfo())
	}
	metrics.ObserveView("backups", start, len(filtered))
	return view, nil
}

func (r *backupRow) toInfo() *BackupInfo {
	b := r.backup
	info := &BackupInfo{
		ID:             b.ID,
		AgentID:        b.AgentID,
		AgentHostname:  r.hostname,
		ScheduleID:     b.ScheduleID,
		RepositoryID:   r.repo.ID,
		RepositoryName: r.repo.Name,
		SnapshotID:     b.SnapshotID,
		Status:         badge.NewView(badge.DomainBackup, string(b.Status)),
		SizeBytes:      b.SizeBytes,
		FilesNew:       b.FilesNew,
		FilesChanged:   b.FilesChanged,
		ErrorMessage:   b.ErrorMessage,
		StartedAt:      b.StartedAt,
		CompletedAt:    b.CompletedAt,
		Tags:           r.tags,
		CreatedAt:      b.CreatedAt,
	}
	if info.Tags == nil {
		info.Tags = []TagInfo{}
	}
	if b.CompletedAt != nil && !b.StartedAt.IsZero() {
		d := b.CompletedAt.Sub(b.StartedAt).Seconds()
		info.DurationSeconds = &d
	}
	return info
}

// ListSchedules returns every schedule with its primary repository and next
// run time. Disabled schedules and invalid cron expressions have no next run.
func (s *Service) ListSchedules(ctx context.Context) ([]*ScheduleInfo, error) {
	start := time.Now()
	schedules, err := s.repo.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}
	hostnames, err := s.agents.HostnameIndex(ctx)
	if err != nil {
		return nil, err
	}
	repos, err := s.loadRepositoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]*ScheduleInfo, 0, len(schedules))
	for _, sc := range schedules {
		info := &ScheduleInfo{
			ID:              sc.ID,
			Name:            sc.Name,
			AgentID:         sc.AgentID,
			AgentHostname:   hostnames[sc.AgentID],
			CronExpression:  sc.CronExpression,
			Paths:           sc.Paths,
			Enabled:         sc.Enabled,
			RepositoryCount: len(repos.links[sc.ID]),
		}
		if ref, ok := repos.primary[sc.ID]; ok {
			info.PrimaryRepository = &ref
		}

		next, err := NextRun(sc.CronExpression, now)
		if err != nil {
			info.CronError = err.Error()
			logger.WarnF(ctx, "[Backup] schedule %s has invalid cron %q: %v", sc.ID, sc.CronExpression, err)
		} else if sc.Enabled {
			info.NextRun = &next
		}
		out = append(out, info)
	}
	metrics.ObserveView("schedules", start, len(out))
	return out, nil
}

// NextRun returns the first activation of a standard five-field cron
// expression (descriptors such as @daily are accepted) after now.
func NextRun(expr string, now time.Time) (time.Time, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now), nil
}

// ListTags returns every tag with the number of backups carrying it.
func (s *Service) ListTags(ctx context.Context) ([]TagInfo, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	links, err := s.repo.ListBackupTags(ctx)
	if err != nil {
		return nil, err
	}
	usage := collection.CountBy(links, func(l *BackupTag) string { return l.TagID })

	out := make([]TagInfo, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagInfo{ID: t.ID, Name: t.Name, Color: t.Color, UsageCount: usage[t.ID]})
	}
	return out, nil
}

// StatusCountsSince counts backups created at or after since by status.
func (s *Service) StatusCountsSince(ctx context.Context, since time.Time) (map[string]int, error) {
	backups, err := s.repo.ListBackupsSince(ctx, since)
	if err != nil {
		return nil, err
	}
	return collection.CountBy(backups, func(b *Backup) string { return string(b.Status) }), nil
}
