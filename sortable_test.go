// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package facet

import (
	"math"
	"sort"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

func TestSortableLongOrderMatchesDoubleOrder(t *testing.T) {
	values := []float64{math.Inf(-1), -1e300, -1.5, -0.0, 0.0, 1.5, 1e300, math.Inf(1)}
	longs := make([]int64, len(values))
	for i, v := range values {
		longs[i] = DoubleToSortableLong(v)
	}
	require.True(t, sort.SliceIsSorted(longs, func(i, j int) bool { return longs[i] < longs[j] }))

	for i, v := range values {
		require.Equal(t, v, SortableLongToDouble(longs[i]))
	}
}

func TestSortableFloatOrderMatchesFloatOrder(t *testing.T) {
	values := []float32{float32(math.Inf(-1)), -1e30, -1.5, 0, 1.5, 1e30, float32(math.Inf(1))}
	ints := make([]int32, len(values))
	for i, v := range values {
		ints[i] = FloatToSortableInt(v)
	}
	require.True(t, sort.SliceIsSorted(ints, func(i, j int) bool { return ints[i] < ints[j] }))

	for i, v := range values {
		require.Equal(t, v, SortableIntToFloat(ints[i]))
	}
}

func TestBiasedIntRoundTrip(t *testing.T) {
	f := func(v int32) bool {
		return unbiasInt32(biasedInt32(v)) == v
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestBiasedLongRoundTrip(t *testing.T) {
	f := func(v int64) bool {
		return unbiasInt64(biasedInt64(v)) == v
	}
	require.NoError(t, quick.Check(f, nil))
}

func TestBiasedIntOrderMatchesSignedOrder(t *testing.T) {
	values := []int32{math.MinInt32, -1000, -1, 0, 1, 1000, math.MaxInt32}
	biased := make([]uint32, len(values))
	for i, v := range values {
		biased[i] = biasedInt32(v)
	}
	require.True(t, sort.SliceIsSorted(biased, func(i, j int) bool { return biased[i] < biased[j] }))
}

func TestCompareUnsignedBytes(t *testing.T) {
	buf := make([]byte, 8)
	lo := make([]byte, 8)
	hi := make([]byte, 8)
	PutBiasedInt64(buf, 0)
	PutBiasedInt64(lo, -5)
	PutBiasedInt64(hi, 5)

	require.Equal(t, -1, CompareUnsignedBytes(lo, buf))
	require.Equal(t, 1, CompareUnsignedBytes(hi, buf))
	require.Equal(t, 0, CompareUnsignedBytes(buf, buf))
}

func TestPutSortableLongRoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	PutSortableLong(buf, DoubleToSortableLong(42.5))
	require.Equal(t, 42.5, SortableLongToDouble(SortableLong(buf)))
}
