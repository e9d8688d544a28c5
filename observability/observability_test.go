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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiredhq/wired/common"
	"github.com/wiredhq/wired/internal/pubsub"
)

type fakeSinker struct {
	records []common.RoundTrip
}

func (f *fakeSinker) Sink(rt common.RoundTrip) error {
	f.records = append(f.records, rt)
	return nil
}

func (f *fakeSinker) Close() {}

func TestObservabilityProcessFansOutToSinkerAndMetrics(t *testing.T) {
	bus := pubsub.New()
	o, err := build(Config{
		Metrics: MetricsConfig{Enabled: true},
	}, bus)
	require.NoError(t, err)

	sink := &fakeSinker{}
	o.sinker = sink

	rt := common.RoundTrip{
		Method:   "GET",
		Route:    "/widgets",
		RouteKey: "GET_/widgets",
		Protocol: "http/1.1",
		Status:   200,
		Duration: 5 * time.Millisecond,
	}
	o.process(rt)

	require.Len(t, sink.records, 1)
	assert.Equal(t, rt.RouteKey, sink.records[0].RouteKey)
	assert.NotNil(t, o.metrics)
}

func TestObservabilityStartCloseDrainsQueue(t *testing.T) {
	bus := pubsub.New()
	sink := &fakeSinker{}
	o, err := build(Config{}, bus)
	require.NoError(t, err)
	o.sinker = sink

	o.Start()
	bus.Publish(common.RoundTrip{Method: "GET", RouteKey: "GET_/x"})

	deadline := time.After(2 * time.Second)
	for len(sink.records) == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for round trip to drain")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	o.Close()

	assert.Equal(t, "GET_/x", sink.records[0].RouteKey)
}

func TestNewSinkerDefaultsToFile(t *testing.T) {
	s, err := newSinker(Config{RoundTrips: RoundTripsConfig{Console: true}})
	require.NoError(t, err)
	_, ok := s.(*fileSinker)
	assert.True(t, ok)
}
