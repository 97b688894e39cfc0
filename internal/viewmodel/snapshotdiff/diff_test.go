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

package snapshotdiff

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare_Example(t *testing.T) {
	a := []Entry{{Path: "/a", Size: 10}}
	b := []Entry{{Path: "/a", Size: 15}, {Path: "/b", Size: 5}}

	res := Compare(a, b)
	require.Len(t, res.Changes, 2)

	assert.Equal(t, "/a", res.Changes[0].Path)
	assert.Equal(t, ChangeModified, res.Changes[0].ChangeType)
	require.NotNil(t, res.Changes[0].SizeChange)
	assert.Equal(t, int64(5), *res.Changes[0].SizeChange)

	assert.Equal(t, "/b", res.Changes[1].Path)
	assert.Equal(t, ChangeAdded, res.Changes[1].ChangeType)
	require.NotNil(t, res.Changes[1].NewSize)
	assert.Equal(t, int64(5), *res.Changes[1].NewSize)
	assert.Nil(t, res.Changes[1].SizeChange)

	assert.Equal(t, Stats{FilesModified: 1, FilesAdded: 1, TotalSizeAdded: 10}, res.Stats)
	assert.False(t, res.Identical())
}

func TestCompare_Identical(t *testing.T) {
	m := []Entry{{Path: "/etc", Type: EntryDir}, {Path: "/etc/hosts", Size: 120, Hash: "abc"}}
	res := Compare(m, m)
	assert.Empty(t, res.Changes)
	assert.NotNil(t, res.Changes)
	assert.Equal(t, Stats{}, res.Stats)
	assert.True(t, res.Identical())
}

func TestCompare_HashOnlyChangeOmitsSizeChange(t *testing.T) {
	res := Compare(
		[]Entry{{Path: "/f", Size: 8, Hash: "old"}},
		[]Entry{{Path: "/f", Size: 8, Hash: "new"}},
	)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, ChangeModified, res.Changes[0].ChangeType)
	assert.Nil(t, res.Changes[0].SizeChange)
	assert.Equal(t, Stats{FilesModified: 1}, res.Stats)
}

func TestCompare_MissingHashIsNotAChange(t *testing.T) {
	res := Compare([]Entry{{Path: "/f", Size: 8, Hash: "x"}}, []Entry{{Path: "/f", Size: 8}})
	assert.True(t, res.Identical())
}

func TestCompare_DirsAndTypeFlip(t *testing.T) {
	a := []Entry{{Path: "/old", Type: EntryDir}, {Path: "/x", Type: EntryFile, Size: 3}}
	b := []Entry{{Path: "/new", Type: EntryDir}, {Path: "/x", Type: EntryDir}}

	res := Compare(a, b)
	require.Len(t, res.Changes, 4)
	assert.Equal(t, "/new", res.Changes[0].Path)
	assert.Equal(t, "/old", res.Changes[1].Path)
	assert.Equal(t, ChangeRemoved, res.Changes[2].ChangeType)
	assert.Equal(t, ChangeAdded, res.Changes[3].ChangeType)
	assert.Equal(t, Stats{DirsAdded: 2, DirsRemoved: 1, FilesRemoved: 1, TotalSizeRemoved: 3}, res.Stats)
}

func TestCompare_ShrinkCountsAsRemovedBytes(t *testing.T) {
	res := Compare([]Entry{{Path: "/log", Size: 100}}, []Entry{{Path: "/log", Size: 40}})
	assert.Equal(t, Stats{FilesModified: 1, TotalSizeRemoved: 60}, res.Stats)
}

func genManifest() gopter.Gen {
	return gen.SliceOf(gopter.CombineGens(
		gen.IntRange(0, 30),
		gen.Int64Range(0, 1<<20),
		gen.Bool(),
	).Map(func(vals []interface{}) Entry {
		typ := EntryFile
		if vals[2].(bool) && vals[0].(int)%5 == 0 {
			typ = EntryDir
		}
		return Entry{Path: fmt.Sprintf("/data/%d", vals[0].(int)), Type: typ, Size: vals[1].(int64)}
	}))
}

// **Property: diff symmetry**
// diff(A,A) is empty; diff(A,B).total_size_added == diff(B,A).total_size_removed.
func TestProperty_DiffSymmetry(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(7)
	properties := gopter.NewProperties(parameters)

	properties.Property("self diff is empty", prop.ForAll(
		func(a []Entry) bool {
			res := Compare(a, a)
			return res.Identical() && res.Stats == Stats{}
		},
		genManifest(),
	))

	properties.Property("size deltas are anti-symmetric", prop.ForAll(
		func(a, b []Entry) bool {
			ab := Compare(a, b).Stats
			ba := Compare(b, a).Stats
			return ab.TotalSizeAdded == ba.TotalSizeRemoved &&
				ab.TotalSizeRemoved == ba.TotalSizeAdded &&
				ab.FilesAdded == ba.FilesRemoved &&
				ab.DirsAdded == ba.DirsRemoved &&
				ab.FilesModified == ba.FilesModified
		},
		genManifest(),
		genManifest(),
	))

	properties.Property("stats are a reduction of changes", prop.ForAll(
		func(a, b []Entry) bool {
			res := Compare(a, b)
			return Summarize(res.Changes) == res.Stats
		},
		genManifest(),
		genManifest(),
	))

	properties.TestingRun(t)
}
