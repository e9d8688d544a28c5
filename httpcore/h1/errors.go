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

// Package h1 parses HTTP/1.1 requests off a httpcore/wire.Pipe: the
// request line, the header block, and a Content-Length or chunked body,
// then decides what the connection does next.
package h1

import "errors"

// ErrBadRequestLine reports a request line that fails the expected
// request-line grammar; connection-fatal.
var ErrBadRequestLine = errors.New("h1: malformed request line")

// ErrBadContentLength reports a Content-Length header that does not
// parse as a non-negative integer (BadRequest: emit 400, close).
var ErrBadContentLength = errors.New("h1: malformed Content-Length")
