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
	"net/url"
	"strings"
)

// FromQuery reads a FilterState from URL query values: "search", "window",
// "tag_ids" (repeated or comma separated) and one value per enum key. An
// absent window falls back to defaultWindow.
func FromQuery(q url.Values, defaultWindow Window, enumKeys ...string) (FilterState, error) {
	state := FilterState{Search: strings.TrimSpace(q.Get("search"))}

	raw := q.Get("window")
	if !q.Has("window") {
		raw = string(defaultWindow)
	}
	w, err := ParseWindow(raw)
	if err != nil {
		return FilterState{}, err
	}
	state.Window = w

	for _, v := range q["tag_ids"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				state.TagIDs = append(state.TagIDs, id)
			}
		}
	}

	for _, key := range enumKeys {
		v := strings.TrimSpace(q.Get(key))
		if v == "" || v == All {
			continue
		}
		if state.Enums == nil {
			state.Enums = make(map[string]string, len(enumKeys))
		}
		state.Enums[key] = v
	}
	return state, nil
}
