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

// Package h2 implements the HTTP/2 framing layer: the connection
// preface, the SETTINGS handshake, frame header parse/serialize, and
// per-stream state including flow-control windows.
package h2

import "errors"

// ErrBadPreface reports a connection that did not open with the literal
// RFC 7540 §3.5 client preface.
var ErrBadPreface = errors.New("h2: bad connection preface")

// ErrFrameTooLarge reports a frame header declaring a length over the
// negotiated SETTINGS_MAX_FRAME_SIZE.
var ErrFrameTooLarge = errors.New("h2: frame exceeds max frame size")

// ErrNonMonotonicStreamID reports a client HEADERS frame whose stream id
// does not strictly increase over the connection's prior client-initiated
// stream id.
var ErrNonMonotonicStreamID = errors.New("h2: stream id is not monotonically increasing")

// ErrEvenClientStreamID reports a client-initiated stream id that is not
// odd, per RFC 7540 §5.1.1.
var ErrEvenClientStreamID = errors.New("h2: client stream id must be odd")

// ErrFlowControlViolation reports a WINDOW_UPDATE or DATA frame that
// would drive a flow-control window negative.
var ErrFlowControlViolation = errors.New("h2: flow control window would go negative")

// ErrUnknownStream reports a frame referencing a stream id the framer
// has no state for.
var ErrUnknownStream = errors.New("h2: unknown stream id")

// ErrHeaderFieldTooLarge reports a single header field whose encoded
// form exceeds the peer's advertised max frame size on its own, so it
// cannot be placed in any HEADERS/CONTINUATION frame.
var ErrHeaderFieldTooLarge = errors.New("h2: header field too large for one frame")

// ErrFramerClosed reports a WriteData call paced on a send window that
// will never receive another WINDOW_UPDATE because the connection is
// shutting down.
var ErrFramerClosed = errors.New("h2: framer closed")
