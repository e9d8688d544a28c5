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
	"strings"
	"sync"
	"time"

	"github.com/wiredhq/wired/httpcore/h2"
	"github.com/wiredhq/wired/httpcore/headermap"
	"github.com/wiredhq/wired/httpcore/middleware"
	"github.com/wiredhq/wired/httpcore/response"
	"github.com/wiredhq/wired/httpcore/wire"
	"github.com/wiredhq/wired/logger"
)

// h2stream accumulates one HEADERS event (and any DATA that follows it)
// until end-of-stream, at which point the request is complete and can
// be dispatched.
type h2stream struct {
	method, path string
	headers      *headermap.Map
	body         []byte
}

// serveH2 drives one HTTP/2 connection: it performs the connection
// preface handshake, then reads framer events in a single loop,
// dispatching each completed request to its own goroutine so that one
// slow endpoint never blocks the other streams multiplexed over the
// same socket. The framer serializes its own frame writes, including
// HEADERS/CONTINUATION sequences, so no external lock is needed here.
func (d *Driver) serveH2(pipe *wire.Pipe, connID string) error {
	framer := h2.NewFramer(pipe, d.cfg.HTTP2.toSettings())
	if err := framer.Handshake(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	// framer.Close unblocks any dispatch goroutine parked in a send
	// window's take, so it must run before wg.Wait can return; deferred
	// after wg.Wait, it runs first at function exit (LIFO).
	defer wg.Wait()
	defer framer.Close()

	streams := make(map[uint32]*h2stream)

	for {
		ev, err := framer.Next()
		if err != nil {
			return err
		}

		switch ev.Kind {
		case h2.EventGoAway:
			return nil

		case h2.EventStreamClosed:
			delete(streams, ev.StreamID)

		case h2.EventHeaders:
			st := &h2stream{headers: headermap.New()}
			for _, f := range ev.Headers {
				switch f.Name {
				case ":method":
					st.method = f.Value
				case ":path":
					st.path = f.Value
				case ":authority", ":scheme":
					// not needed by the request pipeline
				default:
					st.headers.Set(f.Name, f.Value)
				}
			}
			streams[ev.StreamID] = st
			if ev.EndStream {
				delete(streams, ev.StreamID)
				wg.Add(1)
				go d.dispatchH2Stream(framer, &wg, connID, ev.StreamID, st)
			}

		case h2.EventData:
			st, ok := streams[ev.StreamID]
			if !ok {
				continue
			}
			st.body = append(st.body, ev.Data...)
			if ev.EndStream {
				delete(streams, ev.StreamID)
				wg.Add(1)
				go d.dispatchH2Stream(framer, &wg, connID, ev.StreamID, st)
			}
		}
	}
}

// dispatchH2Stream runs one completed HTTP/2 request through the
// pipeline and writes its response back as HEADERS/DATA frames.
func (d *Driver) dispatchH2Stream(framer *h2.Framer, wg *sync.WaitGroup, connID string, streamID uint32, st *h2stream) {
	defer wg.Done()
	start := time.Now()

	route, query := splitPath(st.path)
	ctx := &middleware.Context{
		GoCtx:       context.Background(),
		Method:      st.method,
		Route:       route,
		QueryString: query,
		Headers:     st.headers,
		Body:        st.body,
		StreamID:    int(streamID),
		Response:    response.New(),
	}

	dispatchErr := d.pipeline.Dispatch(ctx)
	d.idle.touch(connID)

	var ep *middleware.EndpointPanic
	status := 0
	if errors.As(dispatchErr, &ep) {
		logger.Errorf("endpoint panic in %q: %v\n%s", ep.RouteKey, ep.Value, ep.StackTrace)
		if !ep.Committed {
			ctx.Response.SetStatus(500)
			ctx.Response.SetContentType("text/plain; charset=utf-8")
			ctx.Response.SetContent(response.NewBytesContent([]byte("internal server error")))
		}
	} else if dispatchErr != nil {
		logger.Errorf("pipeline dispatch error: %v", dispatchErr)
		if !ctx.Response.Committed() {
			ctx.Response.SetStatus(500)
			ctx.Response.SetContent(response.NewBytesContent([]byte("internal server error")))
		}
	}

	if !ctx.Response.Committed() {
		status = ctx.Response.StatusCode()
		err := ctx.Response.CommitH2(framer, streamID)
		if err != nil {
			logger.Debugf("stream %d on connection %s: write failed: %v", streamID, connID, err)
		}
	}

	d.onRoundTrip(st.method, ctx.RouteKey, "h2", status, int(streamID), int64(len(st.body)), 0, time.Since(start))
	ctx.Dispose()
}

// splitPath separates an HTTP/2 :path pseudo-header into the route and
// its query string, the same split h1.ParseRequest produces from a
// request line.
func splitPath(path string) (route, query string) {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i], path[i+1:]
	}
	return path, ""
}
