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

	"github.com/wiredhq/wired/internal/pool"
)

// Opcode identifies a frame's payload interpretation (RFC 6455 §5.2),
// restricted to the values this codec needs to surface.
type Opcode byte

const (
	OpText   Opcode = 0x01
	OpBinary Opcode = 0x02
	OpClose  Opcode = 0x08
	OpPing   Opcode = 0x09
	OpPong   Opcode = 0x0A
)

func (op Opcode) isControl() bool {
	return op == OpClose || op == OpPing || op == OpPong
}

// Frame is one decoded WebSocket frame with its mask already applied.
type Frame struct {
	Fin     bool
	Opcode  Opcode
	Payload []byte
}

// Source is the subset of httpcore/wire.Pipe the decoder needs.
type Source interface {
	ReadExact(n int) ([]byte, error)
}

// Mask and Unmask are the same XOR operation under different names: RFC
// 6455 masking is its own inverse.
func Mask(key [4]byte, data []byte) []byte   { return xorMask(key, data) }
func Unmask(key [4]byte, data []byte) []byte { return xorMask(key, data) }

func xorMask(key [4]byte, data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ key[i%4]
	}
	return out
}

// Decode reads one frame from src. maxPayload bounds the declared
// length against the caller's buffer budget (ErrPayloadTooLarge beyond
// it). Client-to-server frames must be masked.
func Decode(src Source, maxPayload int) (*Frame, error) {
	head, err := src.ReadExact(2)
	if err != nil {
		return nil, err
	}
	fin := head[0]&0x80 != 0
	opcode := Opcode(head[0] & 0x0f)
	masked := head[1]&0x80 != 0
	lenField := head[1] & 0x7f

	var payloadLen uint64
	switch lenField {
	case 126:
		eb, err := src.ReadExact(2)
		if err != nil {
			return nil, err
		}
		payloadLen = uint64(binary.BigEndian.Uint16(eb))
	case 127:
		eb, err := src.ReadExact(8)
		if err != nil {
			return nil, err
		}
		payloadLen = binary.BigEndian.Uint64(eb)
	default:
		payloadLen = uint64(lenField)
	}

	if !masked {
		return nil, ErrUnmaskedClientFrame
	}
	if opcode.isControl() && payloadLen > 125 {
		return nil, ErrControlFrameTooLarge
	}
	if payloadLen > uint64(maxPayload) {
		return nil, ErrPayloadTooLarge
	}

	maskKeyBytes, err := src.ReadExact(4)
	if err != nil {
		return nil, err
	}
	var maskKey [4]byte
	copy(maskKey[:], maskKeyBytes)

	raw, err := src.ReadExact(int(payloadLen))
	if err != nil {
		return nil, err
	}

	return &Frame{Fin: fin, Opcode: opcode, Payload: Unmask(maskKey, raw)}, nil
}

// Encode builds a server-to-client frame (FIN=1, RSV=0, never masked)
// into a freshly leased pooled buffer, which the caller owns and must
// Dispose.
func Encode(opcode Opcode, payload []byte) *pool.Slab {
	slab := pool.Lease()

	slab.Write([]byte{0x80 | byte(opcode)})

	n := len(payload)
	switch {
	case n <= 125:
		slab.Write([]byte{byte(n)})
	case n <= 65535:
		var lb [3]byte
		lb[0] = 126
		binary.BigEndian.PutUint16(lb[1:], uint16(n))
		slab.Write(lb[:])
	default:
		var lb [9]byte
		lb[0] = 127
		binary.BigEndian.PutUint64(lb[1:], uint64(n))
		slab.Write(lb[:])
	}
	slab.Write(payload)
	return slab
}
