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
	"crypto/tls"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wiredhq/wired/httpcore/middleware"
	"github.com/wiredhq/wired/httpcore/wire"
	"github.com/wiredhq/wired/internal/rescue"
	"github.com/wiredhq/wired/logger"
)

// RoundTripFunc is called once per completed HTTP/1.1 request or
// half-closed HTTP/2 stream; controller wires it to the observability
// subscriber's publish method.
type RoundTripFunc func(method, route, protocol string, status int, streamID int, reqBytes, respBytes int64, dur time.Duration)

// Driver runs the accept loop and per-connection tasks for one bound
// address. One Driver exists per listener (the admin server is a
// separate net/http instance entirely).
type Driver struct {
	cfg      Config
	pipeline *middleware.Pipeline
	onRoundTrip RoundTripFunc

	tlsConfig *tls.Config

	listener net.Listener
	idle     *idleTracker

	shutdown chan struct{}
	once     sync.Once
	wg       sync.WaitGroup
}

// New builds a Driver. pipeline must already have its routes registered.
func New(cfg Config, pipeline *middleware.Pipeline, onRoundTrip RoundTripFunc) (*Driver, error) {
	d := &Driver{
		cfg:         cfg,
		pipeline:    pipeline,
		onRoundTrip: onRoundTrip,
		idle:        newIdleTracker(cfg.IdleTimeout),
		shutdown:    make(chan struct{}),
	}
	if onRoundTrip == nil {
		d.onRoundTrip = func(string, string, string, int, int, int64, int64, time.Duration) {}
	}
	if cfg.TLS != nil {
		tc, err := cfg.TLS.toStdlib()
		if err != nil {
			return nil, err
		}
		d.tlsConfig = tc
	}
	return d, nil
}

// ListenAndServe binds the listener and accepts connections until
// Shutdown is called. Every accepted socket is handed off to its own
// fire-and-forget goroutine; the kernel listen backlog itself is left
// at Go's runtime default since net.Listen does not expose a tunable
// one, but cfg.Backlog is retained for documentation and for alternate
// listener constructors that do.
func (d *Driver) ListenAndServe() error {
	l, err := net.Listen("tcp", d.cfg.BindAddress)
	if err != nil {
		return err
	}
	if tc, ok := l.(*net.TCPListener); ok {
		l = tcpKeepAliveListener{tc}
	}
	d.listener = l

	go d.idle.run(d.shutdown)

	for {
		c, err := l.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				return nil
			default:
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			return err
		}

		d.wg.Add(1)
		go d.handle(c)
	}
}

// Shutdown stops accepting new connections and waits for in-flight ones
// to drain, up to cfg.ShutdownGrace.
func (d *Driver) Shutdown(ctx context.Context) error {
	d.once.Do(func() { close(d.shutdown) })
	if d.listener != nil {
		d.listener.Close()
	}
	d.idle.stop()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	tc.SetKeepAlive(true)
	tc.SetKeepAlivePeriod(3 * time.Minute)
	return tc, nil
}

// handle is the per-connection task: TLS mediation, ALPN-based protocol
// dispatch, and unconditional socket close on exit. Panics inside it are
// an internal bug (the pipeline itself recovers endpoint panics), so
// they're only logged here, not converted into a response.
func (d *Driver) handle(raw net.Conn) {
	defer d.wg.Done()
	defer rescue.HandleCrash()

	id := uuid.New().String()
	d.idle.touch(id)
	defer func() {
		raw.Close()
		d.idle.forget(id)
	}()

	var (
		stream   net.Conn = raw
		protocol          = "http/1.1"
	)

	if d.tlsConfig != nil {
		tlsConn := tls.Server(raw, d.tlsConfig)
		hctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := tlsConn.HandshakeContext(hctx)
		cancel()
		if err != nil {
			raw.Write([]byte("TLS Handshake failed. Closing connection.\n"))
			return
		}
		stream = tlsConn
		protocol = tlsConn.ConnectionState().NegotiatedProtocol
		if protocol == "" {
			protocol = "http/1.1"
		}
	}

	bufSize := d.cfg.BufferSizes.Read
	pipe := wire.New(stream, bufSize)

	var err error
	switch protocol {
	case "h2":
		err = d.serveH2(pipe, id)
	default:
		err = d.serveH1(pipe, id)
	}
	if err != nil && !errors.Is(err, wire.ErrUnexpectedEnd) {
		logger.Debugf("connection %s ended: %v", id, err)
	}
}
