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

// Package conn implements the connection driver: the TCP accept loop,
// per-connection task spawning, TLS/ALPN mediation, and dispatch into
// the HTTP/1.1 parser, the HTTP/2 framer, or the WebSocket codec.
package conn

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"time"

	"github.com/wiredhq/wired/httpcore/h2"
)

// TLSConfig carries the certificate material and negotiation policy for
// TLS-terminated listeners.
type TLSConfig struct {
	ServerCert       string   `config:"serverCert"`
	ServerKey        string   `config:"serverKey"`
	TrustStore       string   `config:"trustStore"`
	ClientCertPolicy string   `config:"clientCertPolicy"` // "none" | "request" | "require"
	ALPN             []string `config:"alpn"`
}

func (t *TLSConfig) toStdlib() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(t.ServerCert, t.ServerKey)
	if err != nil {
		return nil, err
	}

	alpn := t.ALPN
	if len(alpn) == 0 {
		alpn = []string{"h2", "http/1.1"}
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   alpn,
		MinVersion:   tls.VersionTLS12,
	}

	switch t.ClientCertPolicy {
	case "request":
		cfg.ClientAuth = tls.VerifyClientCertIfGiven
	case "require":
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
	default:
		cfg.ClientAuth = tls.NoClientCert
	}

	if t.TrustStore != "" {
		pem, err := os.ReadFile(t.TrustStore)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		pool.AppendCertsFromPEM(pem)
		cfg.ClientCAs = pool
	}

	return cfg, nil
}

// BufferSizes sets the read-buffer hints for the byte pipe.
type BufferSizes struct {
	Read int `config:"read"`
}

// ResourceServingConfig enables serving files under a root namespace
// directory ahead of route matching, for any request whose path carries
// a file extension. The provider itself (reading bytes off disk,
// detecting the MIME type) is supplied by the embedding controller, not
// by this package — the core only carries the toggle and the root
// directory as configuration.
type ResourceServingConfig struct {
	Enabled       bool   `config:"enabled"`
	RootNamespace string `config:"rootNamespace"`
}

// HTTP2Config carries the local SETTINGS this server advertises.
type HTTP2Config struct {
	MaxConcurrentStreams uint32 `config:"maxConcurrentStreams"`
	InitialWindowSize    uint32 `config:"initialWindowSize"`
	MaxFrameSize         uint32 `config:"maxFrameSize"`
}

func (c HTTP2Config) toSettings() h2.Settings {
	s := h2.DefaultSettings()
	if c.MaxConcurrentStreams != 0 {
		s.MaxConcurrentStreams = c.MaxConcurrentStreams
	}
	if c.InitialWindowSize != 0 {
		s.InitialWindowSize = c.InitialWindowSize
	}
	if c.MaxFrameSize != 0 {
		s.MaxFrameSize = c.MaxFrameSize
	}
	return s
}

// Config is the connection driver's configuration surface.
type Config struct {
	BindAddress     string                 `config:"bindAddress"`
	Backlog         int                    `config:"backlog"`
	TLS             *TLSConfig             `config:"tls"`
	ResourceServing *ResourceServingConfig `config:"resourceServing"`
	BufferSizes     BufferSizes            `config:"bufferSizes"`
	HTTP2         HTTP2Config   `config:"http2"`
	IdleTimeout   time.Duration `config:"idleTimeout"`
	ShutdownGrace time.Duration `config:"shutdownGrace"`
	MaxWSPayload  int           `config:"maxWsPayload"`
}

// DefaultConfig returns the driver defaults.
func DefaultConfig() Config {
	return Config{
		BindAddress:   "127.0.0.1:9001",
		Backlog:       100,
		BufferSizes:   BufferSizes{Read: 4096},
		IdleTimeout:   90 * time.Second,
		ShutdownGrace: 10 * time.Second,
		MaxWSPayload:  1 << 20,
	}
}
