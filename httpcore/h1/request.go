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

package h1

import "github.com/wiredhq/wired/httpcore/headermap"

// Request is the immutable record a parsed HTTP/1.1 message produces.
// StreamID is always 0 here; the HTTP/2 framer assigns the positive odd
// stream ids.
type Request struct {
	Method      string
	Route       string
	QueryString string
	Headers     *headermap.Map
	Body        []byte
	StreamID    int
}

// Dispose releases the header map back to its pool. Callers must call
// this exactly once the request is no longer needed.
func (r *Request) Dispose() {
	if r.Headers != nil {
		r.Headers.Dispose()
	}
}
