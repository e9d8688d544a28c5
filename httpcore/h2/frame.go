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

package h2

import "encoding/binary"

// Preface is the literal RFC 7540 §3.5 connection preface a client must
// send before any frame.
const Preface = "PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n"

// FrameType identifies the 1-byte RFC 7540 §6 frame type.
type FrameType byte

const (
	FrameData         FrameType = 0x0
	FrameHeaders      FrameType = 0x1
	FramePriority     FrameType = 0x2
	FrameRSTStream    FrameType = 0x3
	FrameSettings     FrameType = 0x4
	FramePushPromise  FrameType = 0x5
	FramePing         FrameType = 0x6
	FrameGoAway       FrameType = 0x7
	FrameWindowUpdate FrameType = 0x8
	FrameContinuation FrameType = 0x9
)

// Frame flags, per-type (RFC 7540 §6.x); the bit positions are shared
// across the type space so a single set of constants suffices.
const (
	FlagEndStream  byte = 0x1
	FlagEndHeaders byte = 0x4
	FlagPadded     byte = 0x8
	FlagPriority   byte = 0x20
	FlagAck        byte = 0x1
)

// FrameHeader is the fixed 9-byte header that precedes every frame
// payload (RFC 7540 §4.1).
type FrameHeader struct {
	Length   uint32 // 24 bits on the wire
	Type     FrameType
	Flags    byte
	StreamID uint32 // top bit (reserved) masked off
}

// Source is the subset of httpcore/wire.Pipe the framer needs to read
// frame headers and payloads.
type Source interface {
	ReadExact(n int) ([]byte, error)
}

// ReadFrameHeader parses the 9-byte frame header and validates its
// declared length against maxFrameSize.
func ReadFrameHeader(src Source, maxFrameSize uint32) (FrameHeader, error) {
	b, err := src.ReadExact(9)
	if err != nil {
		return FrameHeader{}, err
	}
	length := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	if length > maxFrameSize {
		return FrameHeader{}, ErrFrameTooLarge
	}
	return FrameHeader{
		Length:   length,
		Type:     FrameType(b[3]),
		Flags:    b[4],
		StreamID: binary.BigEndian.Uint32(b[5:9]) &^ (1 << 31),
	}, nil
}

// AppendFrameHeader appends the 9-byte wire encoding of h to dst.
func AppendFrameHeader(dst []byte, h FrameHeader) []byte {
	dst = append(dst,
		byte(h.Length>>16), byte(h.Length>>8), byte(h.Length),
		byte(h.Type),
		h.Flags,
	)
	var sid [4]byte
	binary.BigEndian.PutUint32(sid[:], h.StreamID&^(1<<31))
	return append(dst, sid[:]...)
}
