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

import "strings"

// Disposition is what the connection driver does once a request (and
// its response) has been fully handled.
type Disposition int

const (
	// Close tears the connection down after the response is sent.
	Close Disposition = iota
	// KeepAlive loops the connection back to parse the next request.
	KeepAlive
	// Upgrade hands the connection to the WebSocket codec.
	Upgrade
)

// Decide inspects the request headers to determine the connection's
// fate once the current exchange completes.
func Decide(req *Request) Disposition {
	if upgrade, ok := req.Headers.Get("upgrade"); ok && strings.EqualFold(strings.TrimSpace(upgrade), "websocket") {
		return Upgrade
	}

	if conn, ok := req.Headers.Get("connection"); ok {
		for _, tok := range strings.Split(conn, ",") {
			if strings.EqualFold(strings.TrimSpace(tok), "close") {
				return Close
			}
			if strings.EqualFold(strings.TrimSpace(tok), "keep-alive") {
				return KeepAlive
			}
		}
	}

	// HTTP/1.1 defaults to persistent connections absent an explicit
	// Connection: close.
	return KeepAlive
}
