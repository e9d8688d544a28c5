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
	"sync"

	"github.com/wiredhq/wired/httpcore/hpack"
	"github.com/wiredhq/wired/internal/pubsub"
)

// Conn is the duplex byte surface the framer reads frames from and
// writes frames to; httpcore/wire.Pipe satisfies it.
type Conn interface {
	Source
	Write(p []byte) (int, error)
}

// EventKind discriminates the events Next surfaces to the connection
// driver and request pipeline.
type EventKind int

const (
	EventHeaders EventKind = iota
	EventData
	EventStreamClosed
	EventGoAway
)

// Event is one unit of work the framer has decoded off the wire.
type Event struct {
	Kind      EventKind
	StreamID  uint32
	Headers   []hpack.HeaderField
	Data      []byte
	EndStream bool
}

// Framer owns the HPACK codec state, the per-stream table, and the
// connection and per-stream flow-control windows for one HTTP/2
// connection. The HPACK dynamic tables belong to the framer's own
// goroutine only and are never touched from a stream's task.
type Framer struct {
	conn  Conn
	local Settings
	peer  Settings

	enc *hpack.Encoder
	dec *hpack.Decoder

	mu           sync.Mutex
	streams      map[uint32]*Stream
	lastStreamID uint32

	connSendWindow *window
	connRecvWindow *window

	bus *pubsub.PubSub

	// writeMu serializes every frame write to conn. HEADERS and its
	// CONTINUATION frames must reach the wire contiguously (RFC 7540
	// §6.10), and Next's own SETTINGS-ack/PING-ack writes can otherwise
	// race a stream goroutine's response write on the same socket.
	writeMu sync.Mutex
}

// writeFrame writes a fully-built frame (header and payload already
// appended) to conn, serialized against every other frame write on this
// connection.
func (f *Framer) writeFrame(b []byte) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	_, err := f.conn.Write(b)
	return err
}

// NewFramer constructs a Framer advertising local as this endpoint's
// settings. Handshake must be called before Next.
func NewFramer(conn Conn, local Settings) *Framer {
	return &Framer{
		conn:           conn,
		local:          local,
		peer:           DefaultSettings(),
		enc:            hpack.NewEncoder(),
		dec:            hpack.NewDecoder(),
		streams:        make(map[uint32]*Stream),
		connSendWindow: newWindow(int64(DefaultSettings().InitialWindowSize)),
		connRecvWindow: newWindow(int64(local.InitialWindowSize)),
		bus:            pubsub.New(),
	}
}

// Handshake validates the client preface, exchanges SETTINGS frames and
// acknowledges the peer's.
func (f *Framer) Handshake() error {
	preface, err := f.conn.ReadExact(len(Preface))
	if err != nil {
		return err
	}
	if string(preface) != Preface {
		return ErrBadPreface
	}

	if err := f.writeFrame(AppendSettingsFrame(nil, f.local)); err != nil {
		return err
	}

	h, payload, err := f.readRawFrame()
	if err != nil {
		return err
	}
	if h.Type != FrameSettings || h.Flags&FlagAck != 0 {
		return ErrBadPreface
	}
	if err := f.peer.ApplySettingsFrame(payload); err != nil {
		return err
	}
	f.connSendWindow = newWindow(int64(f.peer.InitialWindowSize))

	return f.writeFrame(AppendSettingsAck(nil))
}

func (f *Framer) readRawFrame() (FrameHeader, []byte, error) {
	h, err := ReadFrameHeader(f.conn, f.local.MaxFrameSize)
	if err != nil {
		return FrameHeader{}, nil, err
	}
	if h.Length == 0 {
		return h, nil, nil
	}
	payload, err := f.conn.ReadExact(int(h.Length))
	if err != nil {
		return FrameHeader{}, nil, err
	}
	return h, payload, nil
}

// Next reads and processes frames until one produces a caller-visible
// Event (HEADERS, DATA, stream close or GOAWAY); SETTINGS, PING,
// WINDOW_UPDATE and PRIORITY frames are handled internally.
func (f *Framer) Next() (*Event, error) {
	for {
		h, payload, err := f.readRawFrame()
		if err != nil {
			return nil, err
		}

		switch h.Type {
		case FrameSettings:
			if h.Flags&FlagAck != 0 {
				continue
			}
			if err := f.peer.ApplySettingsFrame(payload); err != nil {
				return nil, err
			}
			if err := f.writeFrame(AppendSettingsAck(nil)); err != nil {
				return nil, err
			}
			continue

		case FramePing:
			if h.Flags&FlagAck != 0 {
				continue
			}
			ack := AppendFrameHeader(nil, FrameHeader{Length: uint32(len(payload)), Type: FramePing, Flags: FlagAck})
			ack = append(ack, payload...)
			if err := f.writeFrame(ack); err != nil {
				return nil, err
			}
			continue

		case FrameWindowUpdate:
			if len(payload) < 4 {
				continue
			}
			inc := int64(uint32(payload[0])<<24|uint32(payload[1])<<16|uint32(payload[2])<<8|uint32(payload[3])) &^ (1 << 31)
			if h.StreamID == 0 {
				if err := f.connSendWindow.increment(inc); err != nil {
					return nil, err
				}
			} else if st := f.lookupStream(h.StreamID); st != nil {
				if err := st.sendWindow.increment(inc); err != nil {
					return nil, err
				}
			}
			continue

		case FramePriority:
			continue

		case FrameRSTStream:
			f.closeStream(h.StreamID)
			return &Event{Kind: EventStreamClosed, StreamID: h.StreamID}, nil

		case FrameGoAway:
			return &Event{Kind: EventGoAway}, nil

		case FrameHeaders:
			return f.handleHeaders(h, payload)

		case FrameData:
			return f.handleData(h, payload)

		default:
			continue
		}
	}
}

func (f *Framer) lookupStream(id uint32) *Stream {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.streams[id]
}

func (f *Framer) closeStream(id uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.streams[id]; ok {
		st.queue.Close()
		delete(f.streams, id)
	}
}

// openStream enforces strictly increasing, odd-numbered client stream
// ids and allocates the per-stream flow-control windows and frame FIFO.
func (f *Framer) openStream(id uint32) (*Stream, error) {
	if id%2 == 0 {
		return nil, ErrEvenClientStreamID
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if id <= f.lastStreamID {
		return nil, ErrNonMonotonicStreamID
	}
	f.lastStreamID = id

	st := &Stream{
		ID:         id,
		sendWindow: newWindow(int64(f.peer.InitialWindowSize)),
		recvWindow: newWindow(int64(f.local.InitialWindowSize)),
		queue:      f.bus.Subscribe(64),
	}
	f.streams[id] = st
	return st, nil
}

// byteReader adapts an already-materialized byte slice to the ReadExact
// surface hpack's decoder needs.
type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) ReadExact(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, ErrUnknownStream
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (f *Framer) handleHeaders(h FrameHeader, payload []byte) (*Event, error) {
	block := stripHeaderPadding(h.Flags, payload)
	endStream := h.Flags&FlagEndStream != 0

	full := append([]byte(nil), block...)
	for h.Flags&FlagEndHeaders == 0 {
		ch, cpayload, err := f.readRawFrame()
		if err != nil {
			return nil, err
		}
		if ch.Type != FrameContinuation || ch.StreamID != h.StreamID {
			return nil, ErrUnknownStream
		}
		full = append(full, cpayload...)
		h.Flags = ch.Flags
	}

	st := f.lookupStream(h.StreamID)
	if st == nil {
		var err error
		st, err = f.openStream(h.StreamID)
		if err != nil {
			return nil, err
		}
	}

	fields, err := f.dec.DecodeBlock(&byteReader{data: full}, len(full))
	if err != nil {
		return nil, err
	}
	if endStream {
		st.halfClosedRemote = true
	}

	return &Event{Kind: EventHeaders, StreamID: h.StreamID, Headers: fields, EndStream: endStream}, nil
}

func stripHeaderPadding(flags byte, payload []byte) []byte {
	block := payload
	if flags&FlagPadded != 0 && len(block) > 0 {
		padLen := int(block[0])
		block = block[1:]
		if padLen <= len(block) {
			block = block[:len(block)-padLen]
		}
	}
	if flags&FlagPriority != 0 && len(block) >= 5 {
		block = block[5:]
	}
	return block
}

func (f *Framer) handleData(h FrameHeader, payload []byte) (*Event, error) {
	st := f.lookupStream(h.StreamID)
	if st == nil {
		return nil, ErrUnknownStream
	}
	if err := st.recvWindow.consume(int64(len(payload))); err != nil {
		return nil, err
	}
	if err := f.connRecvWindow.consume(int64(len(payload))); err != nil {
		return nil, err
	}

	endStream := h.Flags&FlagEndStream != 0
	if endStream {
		st.halfClosedRemote = true
	}
	return &Event{Kind: EventData, StreamID: h.StreamID, Data: payload, EndStream: endStream}, nil
}

// WriteHeaders encodes fields and emits a HEADERS frame, followed by as
// many CONTINUATION frames as needed when the encoded block doesn't fit
// the peer's advertised max frame size (RFC 7540 §6.2, §6.10). A field
// is only ever counted as sent once its encoding has actually been
// written to a frame; EncodeInto's FieldCount tells each iteration
// exactly where the next frame's fields start, so nothing is dropped.
// The whole sequence is written under writeMu so no other frame can be
// interleaved between a HEADERS frame and its CONTINUATIONs.
func (f *Framer) WriteHeaders(streamID uint32, fields []hpack.HeaderField, endStream bool) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	maxFrame := int(f.peer.MaxFrameSize)
	if maxFrame == 0 {
		maxFrame = 16384
	}

	remaining := fields
	frameType := FrameHeaders
	for first := true; first || len(remaining) > 0; first = false {
		block := make([]byte, 0, maxFrame)
		block, result := f.enc.EncodeInto(block, remaining)
		if result.FieldCount == 0 && len(remaining) > 0 {
			return ErrHeaderFieldTooLarge
		}
		remaining = remaining[result.FieldCount:]

		var flags byte
		if len(remaining) == 0 {
			flags |= FlagEndHeaders
			if endStream {
				flags |= FlagEndStream
			}
		}

		out := AppendFrameHeader(nil, FrameHeader{Length: uint32(len(block)), Type: frameType, Flags: flags, StreamID: streamID})
		out = append(out, block...)
		if _, err := f.conn.Write(out); err != nil {
			return err
		}
		frameType = FrameContinuation
	}
	return nil
}

// WriteData emits data as a sequence of DATA frames no larger than the
// peer's advertised max frame size, pacing each chunk against the
// connection and stream send windows: an exhausted window blocks in
// take until a WINDOW_UPDATE arrives (or the framer is closed), rather
// than failing the write outright (RFC 7540 §6.9, §5.2.1).
func (f *Framer) WriteData(streamID uint32, data []byte, endStream bool) error {
	st := f.lookupStream(streamID)
	maxFrame := int64(f.peer.MaxFrameSize)
	if maxFrame == 0 {
		maxFrame = 16384
	}

	for len(data) > 0 || (endStream && len(data) == 0) {
		want := int64(len(data))
		if want > maxFrame {
			want = maxFrame
		}

		n := want
		if want > 0 {
			var err error
			if st != nil {
				n, err = st.sendWindow.take(want)
				if err != nil {
					return err
				}
			}
			cn, err := f.connSendWindow.take(n)
			if err != nil {
				if st != nil {
					st.sendWindow.refund(n)
				}
				return err
			}
			if cn < n {
				if st != nil {
					st.sendWindow.refund(n - cn)
				}
				n = cn
			}
		}

		chunk := data[:n]
		data = data[n:]
		last := len(data) == 0
		flags := byte(0)
		if last && endStream {
			flags |= FlagEndStream
		}

		out := AppendFrameHeader(nil, FrameHeader{Length: uint32(len(chunk)), Type: FrameData, Flags: flags, StreamID: streamID})
		out = append(out, chunk...)
		if err := f.writeFrame(out); err != nil {
			return err
		}
		if last {
			break
		}
	}
	return nil
}

// Close unblocks any WriteData call currently paced in a send window's
// take, e.g. once the read loop has exited and no further WINDOW_UPDATE
// will ever arrive. Safe to call more than once.
func (f *Framer) Close() {
	f.mu.Lock()
	streams := make([]*Stream, 0, len(f.streams))
	for _, st := range f.streams {
		streams = append(streams, st)
	}
	f.mu.Unlock()

	f.connSendWindow.close()
	for _, st := range streams {
		st.sendWindow.close()
	}
}
