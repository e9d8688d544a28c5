// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hpack

// DefaultDynamicTableSize is the RFC 7541 §4.2 default maximum size, in
// the entryOverhead-adjusted byte-cost units used throughout this
// package.
const DefaultDynamicTableSize = 4096

// dynamicTable is a per-direction insertion-ordered table of header
// fields, most-recently-inserted first, evicted from the tail once the
// cumulative entry cost exceeds maxSize.
type dynamicTable struct {
	entries []HeaderField // entries[0] is the most recently added
	size    uint32        // current cumulative cost
	maxSize uint32
}

func newDynamicTable(maxSize uint32) *dynamicTable {
	return &dynamicTable{maxSize: maxSize}
}

// add inserts f at the front, evicting from the back until the table
// fits within maxSize. A field too large to ever fit leaves the table
// empty, per RFC 7541 §4.4.
func (t *dynamicTable) add(f HeaderField) {
	cost := f.Size()
	t.evictTo(t.maxSize - min(cost, t.maxSize))
	if cost > t.maxSize {
		return
	}
	t.entries = append([]HeaderField{f}, t.entries...)
	t.size += cost
}

func (t *dynamicTable) evictTo(target uint32) {
	for t.size > target && len(t.entries) > 0 {
		last := t.entries[len(t.entries)-1]
		t.entries = t.entries[:len(t.entries)-1]
		t.size -= last.Size()
	}
}

// setMaxSize applies a dynamic-table-size-update (representation
// 0b001xxxxx), evicting as needed.
func (t *dynamicTable) setMaxSize(n uint32) {
	t.maxSize = n
	t.evictTo(n)
}

// at returns the dynamic-table entry for HPACK index idx, where idx
// counts from 1 immediately after the static table (RFC 7541 §2.3.3:
// dynamic table index = wire index - staticTableLen).
func (t *dynamicTable) at(idx int) (HeaderField, bool) {
	if idx < 1 || idx > len(t.entries) {
		return HeaderField{}, false
	}
	return t.entries[idx-1], true
}

// find returns the smallest dynamic-table index for an exact (name,
// value) match, and separately the smallest index for a name-only
// match, for the encoder's table lookup.
func (t *dynamicTable) find(name, value string) (nameValueIdx, nameIdx int) {
	for i, e := range t.entries {
		if e.Name == name {
			if nameIdx == 0 {
				nameIdx = i + 1
			}
			if e.Value == value && nameValueIdx == 0 {
				nameValueIdx = i + 1
			}
		}
	}
	return nameValueIdx, nameIdx
}

func min(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
