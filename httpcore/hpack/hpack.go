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
	"io"
)

// ErrInvalidIndex reports a header-field-table index that names neither
// a static nor a (currently live) dynamic table entry.
var ErrInvalidIndex = errors.New("hpack: invalid table index")

// boundedReader turns an intReader plus a known block length into an
// intReader that refuses to read past that length, so DecodeBlock can
// stop exactly at the end of a HEADERS/CONTINUATION payload rather than
// running on into whatever bytes follow it on the wire.
type boundedReader struct {
	r         intReader
	remaining int
}

func (b *boundedReader) ReadExact(n int) ([]byte, error) {
	if n > b.remaining {
		return nil, io.ErrUnexpectedEOF
	}
	data, err := b.r.ReadExact(n)
	if err != nil {
		return nil, err
	}
	b.remaining -= n
	return data, nil
}

// Encoder compresses HeaderField lists against a private dynamic table,
// using the indexed representation when an exact (name, value) match
// exists, literal-with-incremental-indexing for new
// non-sensitive fields, and literal-never-indexed for fields marked
// Sensitive so they never enter the dynamic table (and so never leak to
// a later request via table-index reuse).
type Encoder struct {
	dynTable *dynamicTable
}

func NewEncoder() *Encoder {
	return &Encoder{dynTable: newDynamicTable(DefaultDynamicTableSize)}
}

// SetMaxDynamicTableSize applies a locally-imposed cap (e.g. from a peer
// SETTINGS_HEADER_TABLE_SIZE), evicting entries as needed.
func (e *Encoder) SetMaxDynamicTableSize(n uint32) {
	e.dynTable.setMaxSize(n)
}

func (e *Encoder) lookup(name, value string) (nameValueIdx, nameIdx int) {
	if idx, ok := staticNameValueIndex[name+"\x00"+value]; ok {
		nameValueIdx = idx
	}
	if idx, ok := staticNameIndex[name]; ok {
		nameIdx = idx
	}
	dnv, dn := e.dynTable.find(name, value)
	if nameValueIdx == 0 && dnv != 0 {
		nameValueIdx = staticTableLen + dnv
	}
	if nameIdx == 0 && dn != 0 {
		nameIdx = staticTableLen + dn
	}
	return nameValueIdx, nameIdx
}

func (e *Encoder) appendLiteral(dst []byte, flag byte, prefixBits uint8, nameIdx int, f HeaderField) []byte {
	dst = appendInteger(dst, flag, prefixBits, uint64(nameIdx))
	if nameIdx == 0 {
		dst = appendString(dst, f.Name)
	}
	dst = appendString(dst, f.Value)
	return dst
}

// encodeField returns the encoded bytes for f and whether committing
// this encoding would insert f into the dynamic table. The insertion
// itself is left to the caller (EncodeInto), which only commits it once
// it knows the encoded bytes actually fit in the output buffer — this
// function must not touch e.dynTable, since a field computed here can
// still be discarded by EncodeInto without ever reaching the wire.
func (e *Encoder) encodeField(dst []byte, f HeaderField) (out []byte, indexes bool) {
	nameValueIdx, nameIdx := e.lookup(f.Name, f.Value)
	if !f.Sensitive && nameValueIdx != 0 {
		return appendInteger(dst, 0x80, 7, uint64(nameValueIdx)), false
	}
	if f.Sensitive {
		return e.appendLiteral(dst, 0x10, 4, nameIdx, f), false
	}
	return e.appendLiteral(dst, 0x40, 6, nameIdx, f), true
}

// EncodeResult is the bounded-output summary of an EncodeInto call.
type EncodeResult struct {
	UsedBytes  int
	FieldCount int
}

// EncodeInto appends as many of fields as fit within dst's existing
// capacity, in order, stopping before the first field that would exceed
// it. It never grows dst past cap(dst); callers that need every field
// encoded regardless of size should pass a dst with enough spare
// capacity (e.g. len 0, cap sized to the caller's frame budget).
func (e *Encoder) EncodeInto(dst []byte, fields []HeaderField) ([]byte, EncodeResult) {
	limit := cap(dst)
	start := len(dst)

	var count int
	for _, f := range fields {
		candidate, indexes := e.encodeField(dst, f)
		if len(candidate) > limit {
			break
		}
		dst = candidate
		count++
		if indexes {
			e.dynTable.add(HeaderField{Name: f.Name, Value: f.Value})
		}
	}
	return dst, EncodeResult{UsedBytes: len(dst) - start, FieldCount: count}
}

// Decoder expands an HPACK byte stream back into HeaderFields against a
// private dynamic table that must be kept in lock-step with the peer
// Encoder's (RFC 7541 §2.2: the two tables are independent per
// direction, but track the same insertion sequence for a connection).
type Decoder struct {
	dynTable *dynamicTable
}

func NewDecoder() *Decoder {
	return &Decoder{dynTable: newDynamicTable(DefaultDynamicTableSize)}
}

func (d *Decoder) SetMaxDynamicTableSize(n uint32) {
	d.dynTable.setMaxSize(n)
}

func (d *Decoder) resolve(idx int) (HeaderField, error) {
	if idx >= 1 && idx <= staticTableLen {
		return staticTable[idx], nil
	}
	if f, ok := d.dynTable.at(idx - staticTableLen); ok {
		return f, nil
	}
	return HeaderField{}, ErrInvalidIndex
}

// DecodeBlock decodes exactly length bytes from r as a single HPACK
// header block (the concatenation of a HEADERS frame and any
// CONTINUATION frames belonging to it) and returns the field list in
// wire order.
func (d *Decoder) DecodeBlock(src intReader, length int) ([]HeaderField, error) {
	br := &boundedReader{r: src, remaining: length}

	var fields []HeaderField
	for br.remaining > 0 {
		b, err := br.ReadExact(1)
		if err != nil {
			return fields, err
		}
		first := b[0]
		r := intReader(br)

		switch {
		case first&0x80 != 0: // indexed header field
			idx, err := readInteger(r, first&0x7f, 7)
			if err != nil {
				return fields, err
			}
			f, err := d.resolve(int(idx))
			if err != nil {
				return fields, err
			}
			fields = append(fields, f)

		case first&0x40 != 0: // literal with incremental indexing
			f, err := d.readLiteral(r, first&0x3f, 6)
			if err != nil {
				return fields, err
			}
			d.dynTable.add(HeaderField{Name: f.Name, Value: f.Value})
			fields = append(fields, f)

		case first&0x20 != 0: // dynamic table size update
			n, err := readInteger(r, first&0x1f, 5)
			if err != nil {
				return fields, err
			}
			d.dynTable.setMaxSize(uint32(n))

		case first&0x10 != 0: // literal never indexed
			f, err := d.readLiteral(r, first&0x0f, 4)
			if err != nil {
				return fields, err
			}
			f.Sensitive = true
			fields = append(fields, f)

		default: // literal without indexing
			f, err := d.readLiteral(r, first&0x0f, 4)
			if err != nil {
				return fields, err
			}
			fields = append(fields, f)
		}
	}
	return fields, nil
}

func (d *Decoder) readLiteral(r intReader, firstByte byte, prefixBits uint8) (HeaderField, error) {
	nameIdx, err := readInteger(r, firstByte, prefixBits)
	if err != nil {
		return HeaderField{}, err
	}

	var name string
	if nameIdx == 0 {
		name, err = readString(r)
		if err != nil {
			return HeaderField{}, err
		}
	} else {
		ref, err := d.resolve(int(nameIdx))
		if err != nil {
			return HeaderField{}, err
		}
		name = ref.Name
	}

	value, err := readString(r)
	if err != nil {
		return HeaderField{}, err
	}
	return HeaderField{Name: name, Value: value}, nil
}
