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

// Package hpack implements RFC 7541 HPACK header compression: the static
// and dynamic tables, the integer and string-literal primitives, Huffman
// coding, and an Encoder/Decoder pair operating on HeaderField lists.
package hpack

// HeaderField is one (name, value) pair, with an optional sensitivity
// flag that forces literal-never-indexed encoding.
type HeaderField struct {
	Name      string
	Value     string
	Sensitive bool
}

// Size is the RFC 7541 §4.1 entry cost: name length + value length + 32.
func (f HeaderField) Size() uint32 {
	return uint32(len(f.Name)) + uint32(len(f.Value)) + entryOverhead
}

const entryOverhead = 32

// staticTable is the canonical 61-entry RFC 7541 Appendix A table,
// 1-indexed as the RFC specifies; staticTable[0] is unused padding so
// staticTable[i] lines up with wire index i.
var staticTable = [62]HeaderField{
	{}, // index 0 is not valid on the wire
	{Name: ":authority"},
	{Name: ":method", Value: "GET"},
	{Name: ":method", Value: "POST"},
	{Name: ":path", Value: "/"},
	{Name: ":path", Value: "/index.html"},
	{Name: ":scheme", Value: "http"},
	{Name: ":scheme", Value: "https"},
	{Name: ":status", Value: "200"},
	{Name: ":status", Value: "204"},
	{Name: ":status", Value: "206"},
	{Name: ":status", Value: "304"},
	{Name: ":status", Value: "400"},
	{Name: ":status", Value: "404"},
	{Name: ":status", Value: "500"},
	{Name: "accept-charset"},
	{Name: "accept-encoding", Value: "gzip, deflate"},
	{Name: "accept-language"},
	{Name: "accept-ranges"},
	{Name: "accept"},
	{Name: "access-control-allow-origin"},
	{Name: "age"},
	{Name: "allow"},
	{Name: "authorization"},
	{Name: "cache-control"},
	{Name: "content-disposition"},
	{Name: "content-encoding"},
	{Name: "content-language"},
	{Name: "content-length"},
	{Name: "content-location"},
	{Name: "content-range"},
	{Name: "content-type"},
	{Name: "cookie"},
	{Name: "date"},
	{Name: "etag"},
	{Name: "expect"},
	{Name: "expires"},
	{Name: "from"},
	{Name: "host"},
	{Name: "if-match"},
	{Name: "if-modified-since"},
	{Name: "if-none-match"},
	{Name: "if-range"},
	{Name: "if-unmodified-since"},
	{Name: "last-modified"},
	{Name: "link"},
	{Name: "location"},
	{Name: "max-forwards"},
	{Name: "proxy-authenticate"},
	{Name: "proxy-authorization"},
	{Name: "range"},
	{Name: "referer"},
	{Name: "refresh"},
	{Name: "retry-after"},
	{Name: "server"},
	{Name: "set-cookie"},
	{Name: "strict-transport-security"},
	{Name: "transfer-encoding"},
	{Name: "user-agent"},
	{Name: "vary"},
	{Name: "via"},
	{Name: "www-authenticate"},
}

const staticTableLen = 61

// staticNameValueIndex maps a "name\x00value" pair to its static index,
// for the encoder's exact-match lookup.
var staticNameValueIndex = make(map[string]int, staticTableLen)

// staticNameIndex maps a header name to the first static index carrying
// that name (possibly with the wrong value, or no value at all), for the
// encoder's name-only match.
var staticNameIndex = make(map[string]int, staticTableLen)

func init() {
	for i := 1; i <= staticTableLen; i++ {
		f := staticTable[i]
		if _, ok := staticNameIndex[f.Name]; !ok {
			staticNameIndex[f.Name] = i
		}
		staticNameValueIndex[f.Name+"\x00"+f.Value] = i
	}
}
