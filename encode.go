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

// EncodeFacetSetValue builds the binary doc-value payload spec.md §6
// specifies for a facet-set field: the 8-byte tuple width (dims of the
// first tuple) followed by each tuple's packed comparable-long values. Index-time encoding
// itself is out of this core's scope, but tests and callers that
// synthesize doc values for the counting engines need this.
func EncodeFacetSetValue(tuples []FacetSet) []byte {
	if len(tuples) == 0 {
		return make([]byte, 8)
	}
	dims := tuples[0].Dims()
	buf := make([]byte, 8+len(tuples)*dims*8)
	PutSortableLong(buf[0:8], int64(dims))
	off := 8
	for _, t := range tuples {
		off += t.PackValues(buf, off)
	}
	return buf
}
