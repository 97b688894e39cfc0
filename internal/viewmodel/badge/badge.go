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

// Package badge maps domain status enums to presentation tokens.
// badge 包将领域状态枚举映射为展示样式。
package badge

import "strings"

// Domain identifies which status vocabulary a value belongs to.
// Domain 标识状态值所属的枚举集合。
type Domain string

const (
	DomainAgent   Domain = "agent"
	DomainBackup  Domain = "backup"
	DomainCommand Domain = "command"
	DomainHealth  Domain = "health"
	DomainDRTest  Domain = "dr_test"
	DomainChange  Domain = "change"
)

// Badge is the presentation triple rendered for a status value.
// Badge 是状态值对应的展示三元组。
type Badge struct {
	Background string `json:"background"`
	Text       string `json:"text"`
	Indicator  string `json:"indicator"`
}

// Default is returned for any status the domain table does not know.
var Default = Badge{Background: "bg-gray-100", Text: "text-gray-600", Indicator: "bg-gray-400"}

var (
	green  = Badge{Background: "bg-green-100", Text: "text-green-800", Indicator: "bg-green-500"}
	red    = Badge{Background: "bg-red-100", Text: "text-red-800", Indicator: "bg-red-500"}
	yellow = Badge{Background: "bg-yellow-100", Text: "text-yellow-800", Indicator: "bg-yellow-500"}
	blue   = Badge{Background: "bg-blue-100", Text: "text-blue-800", Indicator: "bg-blue-500"}
	orange = Badge{Background: "bg-orange-100", Text: "text-orange-800", Indicator: "bg-orange-500"}
	indigo = Badge{Background: "bg-indigo-100", Text: "text-indigo-800", Indicator: "bg-indigo-500"}
	teal   = Badge{Background: "bg-teal-100", Text: "text-teal-800", Indicator: "bg-teal-500"}
	slate  = Badge{Background: "bg-gray-100", Text: "text-gray-800", Indicator: "bg-gray-500"}
)

// palettes holds one lookup table per domain. Values absent from a table
// (for example the health sentinel "unknown") resolve to Default.
var palettes = map[Domain]map[string]Badge{
	DomainAgent: {
		"pending": yellow,
		"active":  green,
		"offline": slate,
		"error":   red,
	},
	DomainBackup: {
		"pending":   yellow,
		"running":   blue,
		"completed": green,
		"failed":    red,
		"canceled":  slate,
	},
	DomainCommand: {
		"pending":      yellow,
		"acknowledged": indigo,
		"running":      blue,
		"completed":    green,
		"failed":       red,
		"timed_out":    orange,
		"canceled":     slate,
	},
	// heartbeats report healthy|degraded|unhealthy; stored checks use warning|critical
	DomainHealth: {
		"healthy":   green,
		"warning":   yellow,
		"degraded":  yellow,
		"critical":  red,
		"unhealthy": red,
	},
	DomainDRTest: {
		"pending":   yellow,
		"running":   blue,
		"completed": teal,
		"passed":    green,
		"failed":    red,
		"skipped":   slate,
	},
	DomainChange: {
		"added":    green,
		"removed":  red,
		"modified": yellow,
	},
}

// Classify returns the badge for status within domain. It never fails:
// unknown domains and unknown values both yield Default.
// Classify 返回状态对应的徽章，未知值返回默认灰色样式。
func Classify(domain Domain, status string) Badge {
	table, ok := palettes[domain]
	if !ok {
		return Default
	}
	if b, ok := table[status]; ok {
		return b
	}
	return Default
}

// IsKnown reports whether status has an explicit entry for domain.
func IsKnown(domain Domain, status string) bool {
	_, ok := palettes[domain][status]
	return ok
}

// Statuses lists the mapped values of a domain in no particular order.
func Statuses(domain Domain) []string {
	table := palettes[domain]
	out := make([]string, 0, len(table))
	for s := range table {
		out = append(out, s)
	}
	return out
}

// Label turns a raw status such as "timed_out" into "Timed Out".
func Label(status string) string {
	if status == "" {
		return "Unknown"
	}
	parts := strings.Split(status, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// View bundles a status with its label and badge for JSON responses.
type View struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Badge  Badge  `json:"badge"`
}

// NewView classifies status for domain and returns a render-ready view.
func NewView(domain Domain, status string) View {
	return View{Status: status, Label: Label(status), Badge: Classify(domain, status)}
}
