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

package common

import "time"

// RoundTrip is the abstract event httpcore/conn publishes once a
// request/response exchange completes: an HTTP/1.1 request or an
// HTTP/2 stream reaching half-closed-both. The core never imports a
// consumer package; it only ever produces these.
type RoundTrip struct {
	Method        string
	Route         string
	RouteKey      string
	Protocol      string // "http/1.1", "h2" or "websocket"
	Status        int
	StreamID      int // 0 for HTTP/1.1
	RequestBytes  int64
	ResponseBytes int64
	Duration      time.Duration
	Timestamp     time.Time
}
