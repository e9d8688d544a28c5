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

// Package middleware implements the request pipeline: a recursive
// middleware chain terminating in route resolution and endpoint
// invocation, shared by the HTTP/1.1 and HTTP/2 connection drivers.
package middleware

import (
	"context"
	"io"

	"github.com/wiredhq/wired/httpcore/headermap"
	"github.com/wiredhq/wired/httpcore/response"
	"github.com/wiredhq/wired/httpcore/ws"
)

// Context is the connection context handed through the pipeline: the
// request fields (protocol-agnostic — an HTTP/2 HEADERS-initiated
// substream populates the same fields an HTTP/1.1 parse does), the
// response being built, the raw stream for handlers that write bytes
// directly, a cancellation signal, and an opaque scope for
// middleware-resolved collaborators.
//
// One Context exists per HTTP/1.1 request. For HTTP/2, the connection
// driver allocates one Context per logical stream and reuses it for the
// stream's lifetime.
type Context struct {
	GoCtx context.Context

	Method      string
	Route       string
	QueryString string
	Headers     *headermap.Map
	Body        []byte
	StreamID    int

	Response *response.Response

	// Raw is the underlying byte stream, exposed for endpoints that
	// write to the wire themselves (WebSocket upgrades, custom
	// byte-level responders) instead of returning through Response.
	Raw io.Writer

	// RouteKey is set by the terminal pipeline step once a route has
	// matched, in "<METHOD>_<pattern>" form; empty on NotFound.
	RouteKey string

	// UpgradeAccepted and WSHandler implement the stream-writing pipeline
	// flavor for WebSocket endpoints: an endpoint that wants to accept a
	// pending upgrade sets both, and the connection driver performs the
	// RFC 6455 handshake and runs WSHandler over the switched-protocol
	// stream instead of committing Response.
	UpgradeAccepted bool
	WSHandler       func(*ws.Conn)

	Scope map[string]any
}

// Get resolves a middleware-scoped collaborator by key.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.Scope[key]
	return v, ok
}

// Set stores a middleware-scoped collaborator, lazily allocating Scope.
func (c *Context) Set(key string, value any) {
	if c.Scope == nil {
		c.Scope = make(map[string]any)
	}
	c.Scope[key] = value
}

// Dispose releases the context's pooled resources (its header map and,
// if not already committed and abandoned separately, its response).
// Every pipeline exit path must call this exactly once.
func (c *Context) Dispose() {
	if c.Headers != nil {
		c.Headers.Dispose()
		c.Headers = nil
	}
	if c.Response != nil {
		c.Response.Dispose()
		c.Response = nil
	}
}
