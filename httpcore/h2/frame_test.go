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

import (
	"bytes"
	"testing"

	"github.com/wiredhq/wired/httpcore/hpack"
)

// loopConn is an in-memory Conn backed by two independent buffers: one
// fed to the framer's reads (preloaded by the test), one capturing its
// writes for inspection.
type loopConn struct {
	in  *bytes.Buffer
	out *bytes.Buffer
}

func (c *loopConn) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	full := make([]byte, n)
	read := 0
	for read < n {
		m, err := c.in.Read(full[read:])
		read += m
		if err != nil && read < n {
			return nil, err
		}
	}
	return full, nil
}

func (c *loopConn) Write(p []byte) (int, error) { return c.out.Write(p) }

func newLoopConn(preloaded []byte) *loopConn {
	return &loopConn{in: bytes.NewBuffer(preloaded), out: &bytes.Buffer{}}
}

func TestFrameHeaderRoundTrip(t *testing.T) {
	h := FrameHeader{Length: 12345, Type: FrameHeaders, Flags: FlagEndHeaders | FlagEndStream, StreamID: 7}
	wire := AppendFrameHeader(nil, h)
	if len(wire) != 9 {
		t.Fatalf("expected a 9-byte header, got %d", len(wire))
	}

	got, err := ReadFrameHeader(newLoopConn(wire), 1<<24)
	if err != nil {
		t.Fatalf("ReadFrameHeader: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v want %+v", got, h)
	}
}

func TestReadFrameHeaderRejectsOversize(t *testing.T) {
	h := FrameHeader{Length: 100000, Type: FrameData, StreamID: 1}
	wire := AppendFrameHeader(nil, h)
	if _, err := ReadFrameHeader(newLoopConn(wire), 16384); err != ErrFrameTooLarge {
		t.Fatalf("expected ErrFrameTooLarge, got %v", err)
	}
}

func TestSettingsDefaultsAndApply(t *testing.T) {
	s := DefaultSettings()
	if s.InitialWindowSize != 65535 || s.MaxFrameSize != 16384 {
		t.Fatalf("unexpected defaults: %+v", s)
	}

	payload := []byte{}
	payload = appendSetting(payload, settingInitialWindowSize, 1000)
	payload = appendSetting(payload, settingMaxFrameSize, 32768)
	if err := s.ApplySettingsFrame(payload); err != nil {
		t.Fatalf("ApplySettingsFrame: %v", err)
	}
	if s.InitialWindowSize != 1000 || s.MaxFrameSize != 32768 {
		t.Fatalf("settings not applied: %+v", s)
	}
}

func TestStreamIDMustBeOddAndMonotonic(t *testing.T) {
	f := NewFramer(newLoopConn(nil), DefaultSettings())

	if _, err := f.openStream(2); err != ErrEvenClientStreamID {
		t.Fatalf("expected ErrEvenClientStreamID, got %v", err)
	}
	if _, err := f.openStream(1); err != nil {
		t.Fatalf("openStream(1): %v", err)
	}
	if _, err := f.openStream(1); err != ErrNonMonotonicStreamID {
		t.Fatalf("expected ErrNonMonotonicStreamID for a repeat id, got %v", err)
	}
	if _, err := f.openStream(3); err != nil {
		t.Fatalf("openStream(3): %v", err)
	}
}

func TestWindowNeverGoesNegative(t *testing.T) {
	w := newWindow(10)
	if err := w.consume(10); err != nil {
		t.Fatalf("consume(10): %v", err)
	}
	if err := w.consume(1); err != ErrFlowControlViolation {
		t.Fatalf("expected ErrFlowControlViolation, got %v", err)
	}
	if err := w.increment(5); err != nil {
		t.Fatalf("increment(5): %v", err)
	}
	if w.available() != 5 {
		t.Fatalf("got available=%d want 5", w.available())
	}
}

func TestHandshakeRejectsBadPreface(t *testing.T) {
	f := NewFramer(newLoopConn([]byte("not a preface at all........")), DefaultSettings())
	if err := f.Handshake(); err != ErrBadPreface {
		t.Fatalf("expected ErrBadPreface, got %v", err)
	}
}

func TestHandshakeSucceeds(t *testing.T) {
	var wire []byte
	wire = append(wire, Preface...)
	wire = AppendSettingsFrame(wire, DefaultSettings())

	conn := newLoopConn(wire)
	f := NewFramer(conn, DefaultSettings())
	if err := f.Handshake(); err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	// the framer should have written its own SETTINGS and then an ack of
	// ours.
	if conn.out.Len() == 0 {
		t.Fatal("expected the framer to write SETTINGS + ack")
	}
}

func TestHeadersEventDecodesViaHPACK(t *testing.T) {
	var wire []byte
	wire = append(wire, Preface...)
	wire = AppendSettingsFrame(wire, DefaultSettings())

	enc := hpack.NewEncoder()
	block := make([]byte, 0, 4096)
	block, _ = enc.EncodeInto(block, []hpack.HeaderField{
		{Name: ":method", Value: "GET"},
		{Name: ":path", Value: "/"},
	})
	wire = AppendFrameHeader(wire, FrameHeader{Length: uint32(len(block)), Type: FrameHeaders, Flags: FlagEndHeaders | FlagEndStream, StreamID: 1})
	wire = append(wire, block...)

	conn := newLoopConn(wire)
	f := NewFramer(conn, DefaultSettings())
	if err := f.Handshake(); err != nil {
		t.Fatalf("Handshake: %v", err)
	}

	ev, err := f.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev.Kind != EventHeaders || ev.StreamID != 1 || !ev.EndStream {
		t.Fatalf("got %+v", ev)
	}
	if len(ev.Headers) != 2 || ev.Headers[0].Value != "GET" || ev.Headers[1].Value != "/" {
		t.Fatalf("decoded headers mismatch: %+v", ev.Headers)
	}
}
