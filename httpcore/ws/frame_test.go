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

package ws

import (
	"encoding/binary"
	"strings"
	"testing"
)

func TestAcceptTokenKnownVector(t *testing.T) {
	// the exact example from RFC 6455 §1.3.
	got := AcceptToken("dGhlIHNhbXBsZSBub25jZQ==")
	want := "s3pPLMBiTxaQ9kYGzzhZRbK+xOo="
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestMaskingInvolution(t *testing.T) {
	key := [4]byte{0x12, 0x34, 0x56, 0x78}
	payload := []byte(strings.Repeat("the quick brown fox ", 5))

	masked := Mask(key, payload)
	unmasked := Unmask(key, masked)
	if string(unmasked) != string(payload) {
		t.Fatalf("involution failed")
	}
}

// sliceSource implements Source over a plain byte slice for test framing.
type sliceSource struct {
	data []byte
	pos  int
}

func (s *sliceSource) ReadExact(n int) ([]byte, error) {
	if s.pos+n > len(s.data) {
		return nil, ErrPayloadTooLarge // stand-in for "ran off the end" in tests
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func buildClientFrame(opcode Opcode, payload []byte) []byte {
	key := [4]byte{0xaa, 0xbb, 0xcc, 0xdd}
	masked := Mask(key, payload)

	var out []byte
	out = append(out, 0x80|byte(opcode))

	n := len(payload)
	switch {
	case n <= 125:
		out = append(out, 0x80|byte(n))
	case n <= 65535:
		var lb [2]byte
		binary.BigEndian.PutUint16(lb[:], uint16(n))
		out = append(out, 0x80|126)
		out = append(out, lb[:]...)
	default:
		var lb [8]byte
		binary.BigEndian.PutUint64(lb[:], uint64(n))
		out = append(out, 0x80|127)
		out = append(out, lb[:]...)
	}
	out = append(out, key[:]...)
	out = append(out, masked...)
	return out
}

func TestDecodeSmallTextFrame(t *testing.T) {
	wire := buildClientFrame(OpText, []byte("hello"))
	f, err := Decode(&sliceSource{data: wire}, 1<<16)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !f.Fin || f.Opcode != OpText || string(f.Payload) != "hello" {
		t.Fatalf("got %+v", f)
	}
}

func TestDecodeExtended16BitLength(t *testing.T) {
	payload := make([]byte, 1000)
	for i := range payload {
		payload[i] = byte(i)
	}
	wire := buildClientFrame(OpBinary, payload)
	f, err := Decode(&sliceSource{data: wire}, 1<<16)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(f.Payload) != len(payload) || string(f.Payload) != string(payload) {
		t.Fatal("payload mismatch")
	}
}

func TestDecodeRejectsUnmaskedClientFrame(t *testing.T) {
	wire := []byte{0x80 | byte(OpText), 5, 'h', 'e', 'l', 'l', 'o'}
	_, err := Decode(&sliceSource{data: wire}, 1<<16)
	if err != ErrUnmaskedClientFrame {
		t.Fatalf("expected ErrUnmaskedClientFrame, got %v", err)
	}
}

func TestDecodeRejectsOversizedControlFrame(t *testing.T) {
	payload := make([]byte, 126)
	wire := buildClientFrame(OpPing, payload)
	_, err := Decode(&sliceSource{data: wire}, 1<<16)
	if err != ErrControlFrameTooLarge {
		t.Fatalf("expected ErrControlFrameTooLarge, got %v", err)
	}
}

func TestDecodeRejectsPayloadOverBudget(t *testing.T) {
	wire := buildClientFrame(OpBinary, make([]byte, 1000))
	_, err := Decode(&sliceSource{data: wire}, 100)
	if err != ErrPayloadTooLarge {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestEncodeServerFrameNeverMasked(t *testing.T) {
	slab := Encode(OpText, []byte("hi"))
	defer slab.Dispose()

	b := slab.B()
	if b[0] != 0x80|byte(OpText) {
		t.Fatalf("bad first byte %08b", b[0])
	}
	if b[1]&0x80 != 0 {
		t.Fatal("server frames must not set the mask bit")
	}
	if b[1]&0x7f != 2 || string(b[2:]) != "hi" {
		t.Fatalf("got %x", b)
	}
}

func TestEncodeLargePayloadUses64BitLength(t *testing.T) {
	payload := make([]byte, 70000)
	slab := Encode(OpBinary, payload)
	defer slab.Dispose()

	b := slab.B()
	if b[1] != 127 {
		t.Fatalf("expected 64-bit length marker, got %d", b[1])
	}
	n := binary.BigEndian.Uint64(b[2:10])
	if n != uint64(len(payload)) {
		t.Fatalf("got length %d want %d", n, len(payload))
	}
}
