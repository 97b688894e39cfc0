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

// Package costforecast projects storage cost from monthly history.
// costforecast 包基于月度历史数据预测存储成本。
package costforecast

import (
	"math"
	"sort"
	"time"
)

// Status tells the caller whether a forecast could be produced.
type Status string

const (
	StatusOK               Status = "ok"
	StatusInsufficientData Status = "insufficient_data"
)

// MinSamples is the smallest history that yields a growth rate.
const MinSamples = 2

// Sample is one historical monthly observation.
type Sample struct {
	Period time.Time `json:"period"`
	Cost   float64   `json:"cost"`
	SizeGB float64   `json:"size_gb"`
}

// Point is one projected month.
type Point struct {
	Period          time.Time `json:"period"`
	ProjectedCost   float64   `json:"projected_cost"`
	ProjectedSizeGB float64   `json:"projected_size_gb"`
}

// Result is the forecast view-model. When Status is StatusInsufficientData
// only CurrentMonthlyCost and CurrentSizeGB are meaningful (and may be zero
// for an empty history); MonthlyGrowthRate is 0 and Forecasts is empty.
type Result struct {
	Status             Status  `json:"status"`
	SampleCount        int     `json:"sample_count"`
	CurrentMonthlyCost float64 `json:"current_monthly_cost"`
	CurrentSizeGB      float64 `json:"current_size_gb"`
	MonthlyGrowthRate  float64 `json:"monthly_growth_rate"`
	Forecasts          []Point `json:"forecasts"`
}

// Sufficient reports whether a growth rate was computed.
func (r Result) Sufficient() bool {
	return r.Status == StatusOK
}

// Project computes the monthly growth rate as the arithmetic mean of
// month-over-month relative cost changes and compounds the latest cost and
// size forward for horizonMonths months. Deltas whose predecessor cost is
// zero or negative are skipped; with no usable delta the result is
// StatusInsufficientData. samples need not be sorted.
func Project(samples []Sample, horizonMonths int) Result {
	sorted := make([]Sample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Period.Before(sorted[j].Period)
	})

	res := Result{
		Status:      StatusInsufficientData,
		SampleCount: len(sorted),
		Forecasts:   []Point{},
	}
	if len(sorted) > 0 {
		last := sorted[len(sorted)-1]
		res.CurrentMonthlyCost = last.Cost
		res.CurrentSizeGB = last.SizeGB
	}
	if len(sorted) < MinSamples {
		return res
	}

	rate, ok := GrowthRate(sorted)
	if !ok {
		return res
	}

	res.Status = StatusOK
	res.MonthlyGrowthRate = rate
	last := sorted[len(sorted)-1]
	for n := 1; n <= horizonMonths; n++ {
		factor := math.Pow(1+rate, float64(n))
		res.Forecasts = append(res.Forecasts, Point{
			Period:          last.Period.AddDate(0, n, 0),
			ProjectedCost:   round(res.CurrentMonthlyCost * factor),
			ProjectedSizeGB: round(res.CurrentSizeGB * factor),
		})
	}
	return res
}

// GrowthRate averages period-over-period relative cost changes over samples
// that are already in chronological order. A step spanning k calendar months
// counts as k months of its per-month compounded rate.
func GrowthRate(sorted []Sample) (float64, bool) {
	var sum float64
	var n int
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1].Cost
		if prev <= 0 {
			continue
		}
		k := monthsBetween(sorted[i-1].Period, sorted[i].Period)
		ratio := math.Max(sorted[i].Cost/prev, 0)
		sum += (math.Pow(ratio, 1/float64(k)) - 1) * float64(k)
		n += k
	}
	if n == 0 {
		return 0, false
	}
	// a month cannot lose more than everything it had
	return math.Max(sum/float64(n), -1), true
}

// monthsBetween counts calendar months from a to b, never less than one.
func monthsBetween(a, b time.Time) int {
	ay, am, _ := a.Date()
	by, bm, _ := b.Date()
	if n := (by-ay)*12 + int(bm-am); n > 1 {
		return n
	}
	return 1
}

func monthOf(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// MonthlyTotals turns per-repository histories into the account-wide one.
// A repository that skipped a month inside its own history contributes its
// previous value for that month; before its first and after its last sample
// it contributes nothing.
// MonthlyTotals 按月汇总各仓库成本，仓库历史中间缺失的月份沿用上月数值。
func MonthlyTotals(byRepo map[string][]Sample) []Sample {
	totals := make(map[time.Time]*Sample)
	add := func(key time.Time, s Sample) {
		acc, ok := totals[key]
		if !ok {
			acc = &Sample{Period: key}
			totals[key] = acc
		}
		acc.Cost += s.Cost
		acc.SizeGB += s.SizeGB
	}

	for _, samples := range byRepo {
		months := make(map[time.Time]*Sample)
		keys := make([]time.Time, 0, len(samples))
		for _, s := range samples {
			key := monthOf(s.Period)
			acc, ok := months[key]
			if !ok {
				acc = &Sample{Period: key}
				months[key] = acc
				keys = append(keys, key)
			}
			acc.Cost += s.Cost
			acc.SizeGB += s.SizeGB
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

		for i, key := range keys {
			add(key, *months[key])
			if i+1 == len(keys) {
				break
			}
			for gap := key.AddDate(0, 1, 0); gap.Before(keys[i+1]); gap = gap.AddDate(0, 1, 0) {
				add(gap, *months[key])
			}
		}
	}

	keys := make([]time.Time, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	out := make([]Sample, 0, len(keys))
	for _, k := range keys {
		out = append(out, *totals[k])
	}
	return out
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
