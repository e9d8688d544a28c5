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

package conn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/wiredhq/wired/httpcore/h1"
	"github.com/wiredhq/wired/httpcore/middleware"
	"github.com/wiredhq/wired/httpcore/response"
	"github.com/wiredhq/wired/httpcore/wire"
	"github.com/wiredhq/wired/httpcore/ws"
	"github.com/wiredhq/wired/logger"
)

// serveH1 runs the keep-alive loop for one HTTP/1.1 connection: parse a
// request, dispatch it through the pipeline, commit the response (or
// hand off to the WebSocket codec), repeat until the disposition says
// otherwise.
func (d *Driver) serveH1(pipe *wire.Pipe, connID string) error {
	for {
		start := time.Now()
		req, err := h1.ParseRequest(pipe)
		if err != nil {
			return d.handleParseError(pipe, err)
		}

		disposition := h1.Decide(req)
		ctx := &middleware.Context{
			GoCtx:       context.Background(),
			Method:      req.Method,
			Route:       req.Route,
			QueryString: req.QueryString,
			Headers:     req.Headers,
			Body:        req.Body,
			StreamID:    0,
			Response:    response.New(),
			Raw:         pipe,
		}

		dispatchErr := d.pipeline.Dispatch(ctx)
		d.idle.touch(connID)

		if disposition == h1.Upgrade && ctx.UpgradeAccepted && ctx.WSHandler != nil {
			reqBytes := int64(len(req.Body))
			if err := d.upgradeWebSocket(pipe, req, ctx); err != nil {
				logger.Debugf("websocket session %s ended: %v", connID, err)
			}
			d.onRoundTrip(req.Method, ctx.RouteKey, "websocket", 101, 0, reqBytes, 0, time.Since(start))
			ctx.Dispose()
			return nil
		}

		status, respBytes, commitErr := d.finishResponse(pipe, ctx, dispatchErr)
		d.onRoundTrip(req.Method, ctx.RouteKey, "http/1.1", status, 0, int64(len(req.Body)), respBytes, time.Since(start))
		ctx.Dispose()

		if commitErr != nil {
			return commitErr
		}
		if disposition == h1.Close {
			return nil
		}
	}
}

// finishResponse commits ctx.Response (building an EndpointPanic/500
// response first if dispatch recovered a panic) and reports the status
// code and body size written, for the round-trip event.
func (d *Driver) finishResponse(w io.Writer, ctx *middleware.Context, dispatchErr error) (status int, bytesWritten int64, err error) {
	var ep *middleware.EndpointPanic
	if errors.As(dispatchErr, &ep) {
		logger.Errorf("endpoint panic in %q: %v\n%s", ep.RouteKey, ep.Value, ep.StackTrace)
		if ep.Committed {
			return 0, 0, fmt.Errorf("middleware: %w", ep)
		}
		ctx.Response.SetStatus(500)
		ctx.Response.SetContentType("text/plain; charset=utf-8")
		ctx.Response.SetContent(response.NewBytesContent([]byte("internal server error")))
	} else if dispatchErr != nil {
		logger.Errorf("pipeline dispatch error: %v", dispatchErr)
		if !ctx.Response.Committed() {
			ctx.Response.SetStatus(500)
			ctx.Response.SetContent(response.NewBytesContent([]byte("internal server error")))
		}
	}

	if ctx.Response.Committed() {
		return 0, 0, nil
	}
	status = ctx.Response.StatusCode()
	counter := &countingWriter{w: w}
	if err := ctx.Response.Commit(counter); err != nil {
		return status, counter.n, err
	}
	return status, counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// handleParseError maps a parser error to the connection-fatal handling
// spelled out for HTTP/1.1: a bad Content-Length gets a 400 before the
// connection closes, everything else closes silently.
func (d *Driver) handleParseError(w io.Writer, err error) error {
	if errors.Is(err, h1.ErrBadContentLength) {
		resp := response.New()
		defer resp.Dispose()
		resp.SetStatus(400)
		resp.SetContent(response.NewBytesContent([]byte("bad request")))
		resp.Commit(w)
		return nil
	}
	if errors.Is(err, wire.ErrUnexpectedEnd) {
		return nil
	}
	return err
}

// upgradeWebSocket performs the RFC 6455 handshake response and runs the
// endpoint's handler over the switched-protocol stream until it returns
// or the connection errors.
func (d *Driver) upgradeWebSocket(pipe *wire.Pipe, req *h1.Request, ctx *middleware.Context) error {
	key, ok := req.Headers.Get("sec-websocket-key")
	if !ok {
		resp := response.New()
		defer resp.Dispose()
		resp.SetStatus(400)
		return resp.Commit(pipe)
	}

	accept := ws.AcceptToken(key)
	handshake := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + accept + "\r\n\r\n"
	if _, err := pipe.Write([]byte(handshake)); err != nil {
		return err
	}

	wsConn := ws.NewConn(pipe, pipe, d.cfg.MaxWSPayload)
	ctx.WSHandler(wsConn)
	return nil
}
