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

package observability

import (
	"context"
	"time"

	"github.com/wiredhq/wired/common"
	"github.com/wiredhq/wired/confengine"
	"github.com/wiredhq/wired/internal/pubsub"
	"github.com/wiredhq/wired/logger"
)

// Observability subscribes to a shared RoundTrip bus and drains it on
// its own goroutine, independent of any core connection task.
type Observability struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg   Config
	queue pubsub.Queue
	bus   *pubsub.PubSub

	traces  *traceEmitter
	metrics *metricsRecorder
	remote  *remoteWriter
	sinker  Sinker
}

// New builds an Observability subscriber against bus. The core itself
// never imports this package or holds a reference to bus beyond
// publishing; controller owns both ends.
func New(conf *confengine.Config, bus *pubsub.PubSub) (*Observability, error) {
	var cfg Config
	if err := conf.UnpackChild("observability", &cfg); err != nil {
		return nil, err
	}
	return build(cfg, bus)
}

func build(cfg Config, bus *pubsub.PubSub) (*Observability, error) {
	var (
		traces  *traceEmitter
		metrics *metricsRecorder
		remote  *remoteWriter
		sinker  Sinker
	)

	if cfg.Traces.Enabled {
		traces = newTraceEmitter()
	}
	if cfg.Metrics.Enabled {
		metrics = getMetricsRecorder()
		if cfg.Metrics.RemoteWrite.Enabled {
			rw, err := newRemoteWriter(cfg.Metrics.RemoteWrite)
			if err != nil {
				return nil, err
			}
			remote = rw
		}
	}
	if cfg.RoundTrips.Enabled {
		s, err := newSinker(cfg)
		if err != nil {
			return nil, err
		}
		sinker = s
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Observability{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		bus:     bus,
		traces:  traces,
		metrics: metrics,
		remote:  remote,
		sinker:  sinker,
	}, nil
}

// Start subscribes to the bus and begins draining events. Safe to call
// once per Observability instance.
func (o *Observability) Start() {
	o.queue = o.bus.Subscribe(256)
	go o.loop()
}

// Close unsubscribes from the bus and releases the sinker.
func (o *Observability) Close() {
	o.cancel()
	if o.queue != nil {
		o.bus.Unsubscribe(o.queue)
		o.queue.Close()
	}
	if o.sinker != nil {
		o.sinker.Close()
	}
}

func (o *Observability) loop() {
	for {
		select {
		case <-o.ctx.Done():
			return
		default:
		}

		msg, ok := o.queue.PopTimeout(time.Second)
		if !ok {
			continue
		}
		rt, ok := msg.(common.RoundTrip)
		if !ok {
			continue
		}
		o.process(rt)
	}
}

func (o *Observability) process(rt common.RoundTrip) {
	if o.traces != nil {
		o.traces.emit(rt)
	}
	if o.metrics != nil {
		o.metrics.observe(rt)
		if o.remote != nil {
			o.remote.push(rt)
		}
	}
	if o.sinker != nil {
		if err := o.sinker.Sink(rt); err != nil {
			logger.Errorf("observability: sink round trip failed: %v", err)
		}
	}
}
