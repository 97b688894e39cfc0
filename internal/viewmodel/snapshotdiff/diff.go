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

// Package snapshotdiff compares two snapshot file manifests.
// snapshotdiff 包比较两个快照的文件清单。
package snapshotdiff

import "sort"

// EntryType distinguishes files from directories.
type EntryType string

const (
	EntryFile EntryType = "file"
	EntryDir  EntryType = "dir"
)

// ChangeType classifies a manifest difference.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// Entry is one manifest line. Hash may be empty when the manifest source
// does not provide content hashes.
type Entry struct {
	Path string    `json:"path"`
	Type EntryType `json:"type"`
	Size int64     `json:"size"`
	Hash string    `json:"hash,omitempty"`
}

// Change is one row of the compare view.
// Change 是对比视图中的一行。
type Change struct {
	Path       string     `json:"path"`
	Type       EntryType  `json:"type"`
	ChangeType ChangeType `json:"change_type"`
	OldSize    *int64     `json:"old_size,omitempty"`
	NewSize    *int64     `json:"new_size,omitempty"`
	SizeChange *int64     `json:"size_change,omitempty"`
}

// Stats is the total reduction over Result.Changes.
type Stats struct {
	FilesAdded       int   `json:"files_added"`
	FilesRemoved     int   `json:"files_removed"`
	FilesModified    int   `json:"files_modified"`
	DirsAdded        int   `json:"dirs_added"`
	DirsRemoved      int   `json:"dirs_removed"`
	TotalSizeAdded   int64 `json:"total_size_added"`
	TotalSizeRemoved int64 `json:"total_size_removed"`
}

// Result holds the ordered changes and their aggregate stats.
type Result struct {
	Changes []Change `json:"changes"`
	Stats   Stats    `json:"stats"`
}

// Identical reports whether the two manifests had no differences.
func (r Result) Identical() bool {
	return len(r.Changes) == 0
}

// Compare diffs manifest a (older) against manifest b (newer). Entries only
// in b are added, only in a are removed, and files present in both with a
// different size or hash are modified. Directories present in both are
// never reported. A path whose type flips between file and dir is reported
// as removed then added. When a manifest repeats a path the first entry wins.
// Changes are ordered by path.
//
// Comparing a snapshot with itself is a caller precondition violation;
// Compare does not know snapshot ids and simply returns an empty result.
func Compare(a, b []Entry) Result {
	older := indexByPath(a)
	newer := indexByPath(b)

	changes := make([]Change, 0)
	for path, oe := range older {
		ne, ok := newer[path]
		switch {
		case !ok:
			changes = append(changes, removed(oe))
		case oe.Type != ne.Type:
			changes = append(changes, removed(oe), added(ne))
		case oe.Type == EntryFile && isModified(oe, ne):
			changes = append(changes, modified(oe, ne))
		}
	}
	for path, ne := range newer {
		if _, ok := older[path]; !ok {
			changes = append(changes, added(ne))
		}
	}

	sort.SliceStable(changes, func(i, j int) bool {
		if changes[i].Path != changes[j].Path {
			return changes[i].Path < changes[j].Path
		}
		// removed before added for a type flip on the same path
		return changes[i].ChangeType == ChangeRemoved && changes[j].ChangeType != ChangeRemoved
	})

	return Result{Changes: changes, Stats: Summarize(changes)}
}

// Summarize reduces changes into Stats. Byte totals are partitioned by the
// sign of each change's delta: added entries contribute their new size,
// removed entries their old size, modified files their signed delta.
func Summarize(changes []Change) Stats {
	var s Stats
	for _, c := range changes {
		switch c.ChangeType {
		case ChangeAdded:
			if c.Type == EntryDir {
				s.DirsAdded++
			} else {
				s.FilesAdded++
			}
			s.TotalSizeAdded += deref(c.NewSize)
		case ChangeRemoved:
			if c.Type == EntryDir {
				s.DirsRemoved++
			} else {
				s.FilesRemoved++
			}
			s.TotalSizeRemoved += deref(c.OldSize)
		case ChangeModified:
			s.FilesModified++
			if d := deref(c.SizeChange); d > 0 {
				s.TotalSizeAdded += d
			} else {
				s.TotalSizeRemoved -= d
			}
		}
	}
	return s
}

func indexByPath(entries []Entry) map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if _, dup := m[e.Path]; dup {
			continue
		}
		if e.Type == "" {
			e.Type = EntryFile
		}
		m[e.Path] = e
	}
	return m
}

func isModified(a, b Entry) bool {
	if a.Size != b.Size {
		return true
	}
	return a.Hash != "" && b.Hash != "" && a.Hash != b.Hash
}

func added(e Entry) Change {
	return Change{Path: e.Path, Type: e.Type, ChangeType: ChangeAdded, NewSize: ptr(e.Size)}
}

func removed(e Entry) Change {
	return Change{Path: e.Path, Type: e.Type, ChangeType: ChangeRemoved, OldSize: ptr(e.Size)}
}

func modified(a, b Entry) Change {
	c := Change{Path: b.Path, Type: b.Type, ChangeType: ChangeModified, OldSize: ptr(a.Size), NewSize: ptr(b.Size)}
	if d := b.Size - a.Size; d != 0 {
		c.SizeChange = ptr(d)
	}
	return c
}

func ptr(v int64) *int64 { return &v }

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
