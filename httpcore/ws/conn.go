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

import "io"

// Sink is the write half a Conn needs; httpcore/wire.Pipe satisfies it
// alongside Source.
type Sink interface {
	Write(p []byte) (int, error)
}

// Conn pairs a frame Source/Sink with a payload budget, giving endpoint
// handlers a frame-level read/write surface over the raw byte stream
// instead of the raw bytes themselves.
type Conn struct {
	src        Source
	sink       Sink
	maxPayload int
}

// NewConn wraps src/sink (typically the same httpcore/wire.Pipe) as a
// frame-level WebSocket connection. maxPayload <= 0 selects 1 MiB.
func NewConn(src Source, sink Sink, maxPayload int) *Conn {
	if maxPayload <= 0 {
		maxPayload = 1 << 20
	}
	return &Conn{src: src, sink: sink, maxPayload: maxPayload}
}

// ReadFrame decodes the next frame from the connection.
func (c *Conn) ReadFrame() (*Frame, error) {
	return Decode(c.src, c.maxPayload)
}

// WriteFrame encodes and writes opcode/payload as one frame.
func (c *Conn) WriteFrame(opcode Opcode, payload []byte) error {
	slab := Encode(opcode, payload)
	defer slab.Dispose()
	_, err := c.sink.Write(slab.B())
	return err
}

// Close sends a Close control frame. Callers still need to tear down
// the underlying transport themselves.
func (c *Conn) Close(code uint16, reason string) error {
	payload := make([]byte, 2+len(reason))
	payload[0] = byte(code >> 8)
	payload[1] = byte(code)
	copy(payload[2:], reason)
	return c.WriteFrame(OpClose, payload)
}

var _ io.Writer = (*Conn)(nil)

// Write lets Conn double as a plain io.Writer that emits one binary
// frame per call, for callers that don't care about opcodes.
func (c *Conn) Write(p []byte) (int, error) {
	if err := c.WriteFrame(OpBinary, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
