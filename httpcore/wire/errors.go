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

// Package wire provides a buffered, zero-copy-on-the-read-path duplex
// reader over a net.Conn, with delimiter and length-based scanning.
package wire

import "errors"

// ErrUnexpectedEnd is returned when the underlying source closes before a
// requested delimiter or byte count is satisfied.
var ErrUnexpectedEnd = errors.New("wire: unexpected end of stream")

// ErrBorrowExpired is returned by a caller that holds on to a slice
// returned by PeekAvailable or ReadUntil/ReadExact past the next mutating
// call. The pipe never guards against this at runtime (it would require
// copying, defeating the point) — it is documented API contract, not a
// runtime error; this variable exists for tests that want to assert the
// contract in comments.
var ErrBorrowExpired = errors.New("wire: borrowed slice is no longer valid")
