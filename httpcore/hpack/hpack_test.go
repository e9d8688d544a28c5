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

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// sliceReader adapts a plain byte slice to the intReader interface the
// decoder and string/integer primitives expect.
type sliceReader struct {
	data []byte
	pos  int
}

func (s *sliceReader) ReadExact(n int) ([]byte, error) {
	if s.pos+n > len(s.data) {
		return nil, errors.New("sliceReader: short read")
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func encodeAll(t *testing.T, e *Encoder, fields []HeaderField) []byte {
	t.Helper()
	dst := make([]byte, 0, 1<<20)
	dst, res := e.EncodeInto(dst, fields)
	if res.FieldCount != len(fields) {
		t.Fatalf("expected all %d fields encoded, got %d", len(fields), res.FieldCount)
	}
	if res.UsedBytes != len(dst) {
		t.Fatalf("UsedBytes %d != len(dst) %d", res.UsedBytes, len(dst))
	}
	return dst
}

func TestRoundTripStaticAndLiteral(t *testing.T) {
	fields := []HeaderField{
		{Name: ":method", Value: "GET"},
		{Name: ":path", Value: "/widgets"},
		{Name: "user-agent", Value: "wired-test/1.0"},
		{Name: "x-request-id", Value: "abc-123"},
	}

	e := NewEncoder()
	wire := encodeAll(t, e, fields)

	d := NewDecoder()
	got, err := d.DecodeBlock(&sliceReader{data: wire}, len(wire))
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if len(got) != len(fields) {
		t.Fatalf("got %d fields, want %d", len(got), len(fields))
	}
	for i, f := range fields {
		if got[i] != f {
			t.Fatalf("field %d: got %+v want %+v", i, got[i], f)
		}
	}
}

func TestRepeatedFieldUsesDynamicTableIndex(t *testing.T) {
	fields := []HeaderField{
		{Name: "x-trace", Value: "same-value"},
		{Name: "x-trace", Value: "same-value"},
	}
	e := NewEncoder()
	dst := make([]byte, 0, 4096)
	dst, res := e.EncodeInto(dst, fields)
	if res.FieldCount != 2 {
		t.Fatalf("expected 2 fields encoded, got %d", res.FieldCount)
	}
	// second occurrence should be a 1-byte indexed reference into the
	// dynamic table, much smaller than a fresh literal encoding.
	if len(dst) > 40 {
		t.Fatalf("expected the repeat to be indexed compactly, got %d bytes: %x", len(dst), dst)
	}

	d := NewDecoder()
	got, err := d.DecodeBlock(&sliceReader{data: dst}, len(dst))
	if err != nil {
		t.Fatalf("DecodeBlock: %v", err)
	}
	if len(got) != 2 || got[0] != fields[0] || got[1] != fields[1] {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSensitiveFieldNeverEntersDynamicTable(t *testing.T) {
	e := NewEncoder()
	dst := make([]byte, 0, 4096)
	dst, _ = e.EncodeInto(dst, []HeaderField{
		{Name: "authorization", Value: "Bearer secret", Sensitive: true},
	})

	// first byte of a literal-never-indexed representation starts 0001.
	if dst[0]&0xf0 != 0x10 {
		t.Fatalf("expected literal-never-indexed representation, got first byte %08b", dst[0])
	}
	if e.dynTable.size != 0 {
		t.Fatalf("sensitive field must not be added to the dynamic table, size=%d", e.dynTable.size)
	}
}

func TestHuffmanRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"www.example.com",
		"no-cache",
		"custom-key",
		"custom-value",
		strings.Repeat("z", 500),
		"MixedCASE-and-Punctuation!?/:;",
	}
	for _, s := range cases {
		enc := HuffmanEncodeAppend(nil, s)
		if len(enc) != HuffmanEncodedLen(s) {
			t.Fatalf("%q: HuffmanEncodedLen=%d actual=%d", s, HuffmanEncodedLen(s), len(enc))
		}
		dec, err := HuffmanDecode(enc)
		if err != nil {
			t.Fatalf("%q: decode error: %v", s, err)
		}
		if dec != s {
			t.Fatalf("round trip mismatch: got %q want %q", dec, s)
		}
	}
}

func TestIntegerPrimitiveRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 30, 31, 32, 126, 127, 128, 1337, 1000000}
	for _, v := range values {
		dst := appendInteger(nil, 0, 5, v)
		r := &sliceReader{data: dst}
		b, _ := r.ReadExact(1)
		got, err := readInteger(r, b[0]&0x1f, 5)
		if err != nil {
			t.Fatalf("value %d: %v", v, err)
		}
		if got != v {
			t.Fatalf("value %d: round trip got %d", v, got)
		}
	}
}

func TestIntegerOverflowGuard(t *testing.T) {
	// a prefix value at the max plus six continuation bytes, all with the
	// continuation bit set, never terminates within the 5-byte guard.
	wire := []byte{0x1f, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}
	r := &sliceReader{data: wire[1:]}
	_, err := readInteger(r, 0x1f, 5)
	if !errors.Is(err, ErrInvalidIntegerEncoding) {
		t.Fatalf("expected ErrInvalidIntegerEncoding, got %v", err)
	}
}

func TestDynamicTableEvictsOldestFirst(t *testing.T) {
	tbl := newDynamicTable(60) // room for roughly one entry
	tbl.add(HeaderField{Name: "a", Value: "1"}) // cost 2+32=34
	tbl.add(HeaderField{Name: "b", Value: "2"}) // also 34; evicts "a"

	if _, ok := tbl.at(2); ok {
		t.Fatal("oldest entry should have been evicted")
	}
	f, ok := tbl.at(1)
	if !ok || f.Name != "b" {
		t.Fatalf("expected most recent entry at index 1, got %+v ok=%v", f, ok)
	}
}

func TestDynamicTableSizeUpdateEvicts(t *testing.T) {
	tbl := newDynamicTable(DefaultDynamicTableSize)
	for i := 0; i < 5; i++ {
		tbl.add(HeaderField{Name: fmt.Sprintf("k%d", i), Value: "v"})
	}
	tbl.setMaxSize(0)
	if len(tbl.entries) != 0 || tbl.size != 0 {
		t.Fatalf("expected table emptied by zero-size update, got %d entries size %d", len(tbl.entries), tbl.size)
	}
}

func TestDecodeRejectsInvalidIndex(t *testing.T) {
	d := NewDecoder()
	// indexed representation pointing at index 200, which names nothing.
	wire := appendInteger(nil, 0x80, 7, 200)
	_, err := d.DecodeBlock(&sliceReader{data: wire}, len(wire))
	if err == nil {
		t.Fatal("expected an error decoding an out-of-range index")
	}
}
