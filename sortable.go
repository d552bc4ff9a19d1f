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
	"encoding/binary"
	"math"
)

// sortableDoubleBits maps the two's-complement bit pattern of a float64
// onto a bit pattern whose signed numeric order matches the original
// float64 order. It is its own inverse.
func sortableDoubleBits(bits int64) int64 {
	return bits ^ ((bits >> 63) & 0x7fffffffffffffff)
}

// sortableFloatBits is the float32 analogue of sortableDoubleBits.
func sortableFloatBits(bits int32) int32 {
	return bits ^ ((bits >> 31) & 0x7fffffff)
}

// DoubleToSortableLong converts a float64 to a long whose natural
// (signed) ordering matches the float64 ordering, NaN excepted.
func DoubleToSortableLong(v float64) int64 {
	return sortableDoubleBits(int64(math.Float64bits(v)))
}

// SortableLongToDouble is the inverse of DoubleToSortableLong.
func SortableLongToDouble(encoded int64) float64 {
	return math.Float64frombits(uint64(sortableDoubleBits(encoded)))
}

// FloatToSortableInt converts a float32 to an int32 whose natural
// (signed) ordering matches the float32 ordering, NaN excepted.
func FloatToSortableInt(v float32) int32 {
	return sortableFloatBits(int32(math.Float32bits(v)))
}

// SortableIntToFloat is the inverse of FloatToSortableInt.
func SortableIntToFloat(encoded int32) float32 {
	return math.Float32frombits(uint32(sortableFloatBits(encoded)))
}

// biasedInt32 and biasedInt64 flip the sign bit of a signed integer so
// that unsigned byte comparison of the encoded form matches signed
// numeric comparison. This is the "biased" (offset-binary) encoding
// spec.md calls for in range boxes.
func biasedInt32(v int32) uint32 {
	return uint32(v) ^ 0x80000000
}

func unbiasInt32(v uint32) int32 {
	return int32(v ^ 0x80000000)
}

func biasedInt64(v int64) uint64 {
	return uint64(v) ^ 0x8000000000000000
}

func unbiasInt64(v uint64) int64 {
	return int64(v ^ 0x8000000000000000)
}

// PutSortableLong writes the big-endian sortable encoding of v (already
// a comparable long, e.g. from DoubleToSortableLong) into buf[0:8].
func PutSortableLong(buf []byte, v int64) {
	binary.BigEndian.PutUint64(buf, uint64(v))
}

// SortableLong reads back a value written by PutSortableLong.
func SortableLong(buf []byte) int64 {
	return int64(binary.BigEndian.Uint64(buf))
}

// PutBiasedInt32 writes the 4-byte biased encoding of a signed int32
// into buf[0:4], used for range box min/max bounds.
func PutBiasedInt32(buf []byte, v int32) {
	binary.BigEndian.PutUint32(buf, biasedInt32(v))
}

// BiasedInt32 reads back a value written by PutBiasedInt32.
func BiasedInt32(buf []byte) int32 {
	return unbiasInt32(binary.BigEndian.Uint32(buf))
}

// PutBiasedInt64 writes the 8-byte biased encoding of a signed int64
// into buf[0:8].
func PutBiasedInt64(buf []byte, v int64) {
	binary.BigEndian.PutUint64(buf, biasedInt64(v))
}

// BiasedInt64 reads back a value written by PutBiasedInt64.
func BiasedInt64(buf []byte) int64 {
	return unbiasInt64(binary.BigEndian.Uint64(buf))
}

// PutSortableFloat32 writes the 4-byte sortable encoding of a float32
// into buf[0:4]: the FloatToSortableInt value with its sign bit
// flipped, so unsigned byte order matches float32 order.
func PutSortableFloat32(buf []byte, v float32) {
	binary.BigEndian.PutUint32(buf, uint32(FloatToSortableInt(v))^0x80000000)
}

// SortableFloat32 reads back a value written by PutSortableFloat32.
func SortableFloat32(buf []byte) float32 {
	return SortableIntToFloat(int32(binary.BigEndian.Uint32(buf) ^ 0x80000000))
}

// PutSortableFloat64 writes the 8-byte sortable encoding of a float64
// into buf[0:8]: the DoubleToSortableLong value with its sign bit
// flipped, so unsigned byte order matches float64 order.
func PutSortableFloat64(buf []byte, v float64) {
	binary.BigEndian.PutUint64(buf, uint64(DoubleToSortableLong(v))^0x8000000000000000)
}

// SortableFloat64 reads back a value written by PutSortableFloat64.
func SortableFloat64(buf []byte) float64 {
	return SortableLongToDouble(int64(binary.BigEndian.Uint64(buf) ^ 0x8000000000000000))
}

// CompareUnsignedBytes compares two equal-length byte slices as big
// unsigned integers. It backs the range-on-range engine's spatial
// relations (spec.md C7), which must compare encoded bounds using
// unsigned byte order regardless of the underlying numeric type.
func CompareUnsignedBytes(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
