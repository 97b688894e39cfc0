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
	"fmt"
	"time"
)

// FilterState is the page-local predicate selection. The zero value
// constrains nothing.
// FilterState 表示页面本地的过滤条件，零值表示不做任何过滤。
type FilterState struct {
	Search string            `json:"search"`
	Enums  map[string]string `json:"enums"`
	TagIDs []string          `json:"tag_ids"`
	Window Window            `json:"window"`
}

// Schema tells the engine how to read the filterable fields of T.
// Any accessor may be nil when the page does not offer that filter.
type Schema[T any] struct {
	Search    func(T) string
	Enums     map[string]func(T) string
	CreatedAt func(T) time.Time
	Tags      func(T) []string
}

// Predicates translates state into the active predicate list. A state that
// names a field the schema lacks is rejected with ErrUnknownField rather
// than silently ignored.
func (s Schema[T]) Predicates(state FilterState, now time.Time) ([]Predicate[T], error) {
	var preds []Predicate[T]

	if s.Search != nil {
		preds = append(preds, MatchSearch(state.Search, s.Search))
	} else if state.Search != "" {
		return nil, fmt.Errorf("%w: search", ErrUnknownField)
	}

	for name, value := range state.Enums {
		if value == "" || value == All {
			continue
		}
		field, ok := s.Enums[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		preds = append(preds, MatchEnum(value, field))
	}

	if state.Window != "" && state.Window != WindowAll {
		if _, ok := state.Window.Duration(); !ok {
			return nil, ErrInvalidWindow
		}
		if s.CreatedAt == nil {
			return nil, fmt.Errorf("%w: window", ErrUnknownField)
		}
		preds = append(preds, WithinWindow(state.Window, now, s.CreatedAt))
	}

	if len(state.TagIDs) > 0 {
		if s.Tags == nil {
			return nil, fmt.Errorf("%w: tags", ErrUnknownField)
		}
		preds = append(preds, MatchAnyTag(state.TagIDs, s.Tags))
	}

	return preds, nil
}

// Apply filters records with the predicates derived from state.
func Apply[T any](records []T, schema Schema[T], state FilterState, now time.Time) ([]T, error) {
	preds, err := schema.Predicates(state, now)
	if err != nil {
		return nil, err
	}
	return Filter(records, preds...), nil
}
