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

package collection

import (
	"sort"
	"time"
)

// CountBy counts records per key. Keys with no records are absent, so an
// empty input yields an empty (all-zero) map. Each record is counted once.
func CountBy[T any](records []T, key func(T) string) map[string]int {
	counts := make(map[string]int)
	for _, r := range records {
		counts[key(r)]++
	}
	return counts
}

// CountIf counts the records satisfying pred.
func CountIf[T any](records []T, pred func(T) bool) int {
	n := 0
	for _, r := range records {
		if pred(r) {
			n++
		}
	}
	return n
}

// Index builds a lookup map such as agent id -> hostname. Later records
// with a duplicate key overwrite earlier ones.
func Index[T any, K comparable, V any](records []T, key func(T) K, value func(T) V) map[K]V {
	m := make(map[K]V, len(records))
	for _, r := range records {
		m[key(r)] = value(r)
	}
	return m
}

// GroupBy partitions records by key, preserving input order inside each group.
func GroupBy[T any, K comparable](records []T, key func(T) K) map[K][]T {
	groups := make(map[K][]T)
	for _, r := range records {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	return groups
}

// FirstEnabledByPriority sorts candidates ascending by priority (stable, so
// equal priorities keep input order) and returns the first enabled one.
// ok is false when no candidate is enabled.
func FirstEnabledByPriority[T any](candidates []T, priority func(T) int, enabled func(T) bool) (T, bool) {
	sorted := make([]T, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return priority(sorted[i]) < priority(sorted[j])
	})
	for _, c := range sorted {
		if enabled(c) {
			return c, true
		}
	}
	var zero T
	return zero, false
}

// SortByTimeDesc returns a copy of records ordered newest first.
func SortByTimeDesc[T any](records []T, ts func(T) time.Time) []T {
	out := make([]T, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return ts(out[i]).After(ts(out[j]))
	})
	return out
}

// StartOfDay truncates t to local midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
