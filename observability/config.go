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

// Package observability subscribes to the core's abstract RoundTrip
// events and fans them out to OpenTelemetry spans, Prometheus metrics, a
// pluggable raw-record Sinker, and an optional Prometheus remote-write
// push.
package observability

import (
	"net/url"
	"time"
)

const defaultTimeout = 15 * time.Second

// Config is unpacked from the "observability" key of the process
// configuration.
type Config struct {
	Traces     TracesConfig     `config:"traces"`
	Metrics    MetricsConfig    `config:"metrics"`
	RoundTrips RoundTripsConfig `config:"roundtrips"`
	Mongo      MongoConfig      `config:"mongo"`
}

// TracesConfig enables per-round-trip OTel span emission.
type TracesConfig struct {
	Enabled bool `config:"enabled"`
}

// MetricsConfig enables the local Prometheus counter/histogram pair and,
// optionally, a remote-write push mirror.
type MetricsConfig struct {
	Enabled     bool              `config:"enabled"`
	RemoteWrite RemoteWriteConfig `config:"remoteWrite"`
}

// RemoteWriteConfig pushes the same samples registered locally to a
// Prometheus remote-write receiver as snappy-compressed protobuf over
// HTTP.
type RemoteWriteConfig struct {
	Enabled  bool              `config:"enabled"`
	Endpoint string            `config:"endpoint"`
	Header   map[string]string `config:"header"`
	Interval time.Duration     `config:"interval"`
	Timeout  time.Duration     `config:"timeout"`
}

func (rc *RemoteWriteConfig) Validate() error {
	if !rc.Enabled {
		return nil
	}
	if _, err := url.Parse(rc.Endpoint); err != nil {
		return err
	}
	if rc.Timeout <= 0 {
		rc.Timeout = defaultTimeout
	}
	if rc.Interval <= 0 {
		rc.Interval = time.Minute
	}
	return nil
}

// RoundTripsConfig controls the raw-record audit sink: console/file JSON
// by default, or MongoDB when Mongo.Enabled is set instead.
type RoundTripsConfig struct {
	Enabled    bool   `config:"enabled"`
	Console    bool   `config:"console"`
	Filename   string `config:"filename"`
	MaxSize    int    `config:"maxSize"`
	MaxBackups int    `config:"maxBackups"`
	MaxAge     int    `config:"maxAge"`
}

func (rc *RoundTripsConfig) Validate() {
	if rc.Filename == "" {
		rc.Filename = "roundtrips.log"
	}
	if rc.MaxSize <= 0 {
		rc.MaxSize = 100
	}
	if rc.MaxAge <= 0 {
		rc.MaxAge = 7
	}
	if rc.MaxBackups <= 0 {
		rc.MaxBackups = 10
	}
}

// MongoConfig is the optional audit-sink destination. When Enabled, it
// takes over from the file/console Sinker regardless of RoundTrips.Console.
type MongoConfig struct {
	Enabled    bool          `config:"enabled"`
	URI        string        `config:"uri"`
	Database   string        `config:"database"`
	Collection string        `config:"collection"`
	Timeout    time.Duration `config:"timeout"`
}

func (mc *MongoConfig) Validate() {
	if mc.Database == "" {
		mc.Database = "wired"
	}
	if mc.Collection == "" {
		mc.Collection = "roundtrips"
	}
	if mc.Timeout <= 0 {
		mc.Timeout = defaultTimeout
	}
}
