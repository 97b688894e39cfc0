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

package badge

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

var domainLiterals = map[Domain][]string{
	DomainAgent:   {"pending", "active", "offline", "error"},
	DomainBackup:  {"pending", "running", "completed", "failed", "canceled"},
	DomainCommand: {"pending", "acknowledged", "running", "completed", "failed", "timed_out", "canceled"},
	DomainHealth:  {"healthy", "warning", "degraded", "critical", "unhealthy"},
	DomainDRTest:  {"pending", "running", "completed", "passed", "failed", "skipped"},
	DomainChange:  {"added", "removed", "modified"},
}

// TestClassify_AllLiteralsMapped 每个枚举值都应得到非默认样式
func TestClassify_AllLiteralsMapped(t *testing.T) {
	for domain, values := range domainLiterals {
		for _, v := range values {
			b := Classify(domain, v)
			assert.NotEqual(t, Default, b, "domain=%s status=%s", domain, v)
			assert.True(t, IsKnown(domain, v))
		}
		assert.Len(t, Statuses(domain), len(values), "domain=%s", domain)
	}
}

func TestClassify_HealthUnknownIsSentinel(t *testing.T) {
	assert.Equal(t, Default, Classify(DomainHealth, "unknown"))
	assert.False(t, IsKnown(DomainHealth, "unknown"))
}

func TestClassify_HeartbeatHealthVocabulary(t *testing.T) {
	assert.Equal(t, Classify(DomainHealth, "warning"), Classify(DomainHealth, "degraded"))
	assert.Equal(t, Classify(DomainHealth, "critical"), Classify(DomainHealth, "unhealthy"))
}

func TestClassify_UnknownDomain(t *testing.T) {
	assert.Equal(t, Default, Classify(Domain("license"), "active"))
}

func TestClassify_DistinctOutcomes(t *testing.T) {
	assert.NotEqual(t, Classify(DomainBackup, "completed"), Classify(DomainBackup, "failed"))
	assert.Equal(t, Classify(DomainChange, "added").Indicator, "bg-green-500")
	assert.Equal(t, Classify(DomainChange, "removed").Indicator, "bg-red-500")
}

func TestLabel(t *testing.T) {
	cases := map[string]string{
		"timed_out": "Timed Out",
		"active":    "Active",
		"":          "Unknown",
		"a__b":      "A  B",
	}
	for in, want := range cases {
		assert.Equal(t, want, Label(in), in)
	}
}

func TestNewView(t *testing.T) {
	v := NewView(DomainCommand, "timed_out")
	assert.Equal(t, "timed_out", v.Status)
	assert.Equal(t, "Timed Out", v.Label)
	assert.Equal(t, orange, v.Badge)
}

// **Property: classifier totality**
// For any string that is not a mapped literal, Classify returns Default.
func TestProperty_UnknownStatusFallsBack(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	domains := []Domain{DomainAgent, DomainBackup, DomainCommand, DomainHealth, DomainDRTest, DomainChange}

	properties.Property("unmapped values resolve to the default badge", prop.ForAll(
		func(idx int, status string) bool {
			domain := domains[idx]
			if IsKnown(domain, status) {
				return Classify(domain, status) != Default
			}
			return Classify(domain, status) == Default
		},
		gen.IntRange(0, len(domains)-1),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
