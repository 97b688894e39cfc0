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

// Package collection filters and aggregates already-fetched record lists.
// collection 包对已获取的记录列表进行过滤和聚合。
//
// Every function here is pure: output depends only on the arguments, the
// input slices are never modified, and "now" is always passed in.
package collection

import (
	"errors"
	"strings"
	"time"
)

// All is the enum filter sentinel meaning "no constraint".
const All = "all"

var (
	// ErrUnknownField indicates the filter state names a field the schema does not expose.
	ErrUnknownField = errors.New("collection: unknown filter field")
	// ErrInvalidWindow indicates an unsupported date-window token.
	ErrInvalidWindow = errors.New("collection: invalid date window")
)

// Window is a relative date-window token.
type Window string

const (
	WindowAll Window = "all"
	Window7d  Window = "7d"
	Window30d Window = "30d"
	Window90d Window = "90d"
)

const day = 24 * time.Hour

var windowDurations = map[Window]time.Duration{
	Window7d:  7 * day,
	Window30d: 30 * day,
	Window90d: 90 * day,
}

// ParseWindow validates a window token. An empty token means WindowAll.
func ParseWindow(s string) (Window, error) {
	w := Window(strings.TrimSpace(s))
	if w == "" || w == WindowAll {
		return WindowAll, nil
	}
	if _, ok := windowDurations[w]; ok {
		return w, nil
	}
	return "", ErrInvalidWindow
}

// Duration returns the window length; ok is false for WindowAll.
func (w Window) Duration() (d time.Duration, ok bool) {
	d, ok = windowDurations[w]
	return d, ok
}

// Predicate reports whether a record stays in the filtered view.
type Predicate[T any] func(T) bool

// Filter keeps the records that satisfy every predicate. Nil predicates are
// skipped. The result is a new slice and is never nil.
func Filter[T any](records []T, preds ...Predicate[T]) []T {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}

	out := make([]T, 0, len(records))
	for _, r := range records {
		keep := true
		for _, p := range active {
			if !p(r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// MatchSearch builds a case-insensitive substring predicate. An empty query
// returns nil (inactive).
func MatchSearch[T any](query string, field func(T) string) Predicate[T] {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	return func(r T) bool {
		return strings.Contains(strings.ToLower(field(r)), q)
	}
}

// MatchEnum builds an exact-equality predicate. "" and All are inactive.
func MatchEnum[T any](value string, field func(T) string) Predicate[T] {
	if value == "" || value == All {
		return nil
	}
	return func(r T) bool {
		return field(r) == value
	}
}

// WithinWindow keeps records whose timestamp satisfies now - ts <= window.
// WindowAll is inactive.
func WithinWindow[T any](w Window, now time.Time, ts func(T) time.Time) Predicate[T] {
	d, ok := w.Duration()
	if !ok {
		return nil
	}
	return func(r T) bool {
		return now.Sub(ts(r)) <= d
	}
}

// MatchAnyTag keeps records carrying at least one of the selected tag ids.
// An empty selection is inactive.
func MatchAnyTag[T any](selected []string, tags func(T) []string) Predicate[T] {
	if len(selected) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}
	return func(r T) bool {
		for _, id := range tags(r) {
			if _, ok := want[id]; ok {
				return true
			}
		}
		return false
	}
}
