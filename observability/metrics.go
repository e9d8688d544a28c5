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
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wiredhq/wired/common"
)

// sharedMetrics lazily builds one metricsRecorder for the process: the
// underlying collectors are registered against the default Prometheus
// registry, which panics on a second registration, so a config reload
// that calls New again must reuse the same instance.
var (
	sharedMetricsOnce sync.Once
	sharedMetrics     *metricsRecorder
)

func getMetricsRecorder() *metricsRecorder {
	sharedMetricsOnce.Do(func() {
		sharedMetrics = newMetricsRecorder()
	})
	return sharedMetrics
}

// metricsRecorder registers the request counter and duration histogram
// the admin server's /metrics endpoint exposes, grounded on the
// teacher's http_requests_total / http_request_duration_seconds pair
// from processor/roundtripstometrics.
type metricsRecorder struct {
	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestBytes    *prometheus.HistogramVec
	responseBytes   *prometheus.HistogramVec
}

func newMetricsRecorder() *metricsRecorder {
	labels := []string{"method", "route", "protocol", "status"}
	return &metricsRecorder{
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wired_http_requests_total",
			Help: "Total number of completed HTTP round trips.",
		}, labels),
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wired_http_request_duration_seconds",
			Help:    "Round-trip duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, labels),
		requestBytes: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wired_http_request_body_bytes",
			Help:    "Request body size in bytes.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}, labels),
		responseBytes: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wired_http_response_body_bytes",
			Help:    "Response body size in bytes.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}, labels),
	}
}

func (m *metricsRecorder) observe(rt common.RoundTrip) {
	lbs := prometheus.Labels{
		"method":   rt.Method,
		"route":    rt.Route,
		"protocol": rt.Protocol,
		"status":   strconv.Itoa(rt.Status),
	}
	m.requestTotal.With(lbs).Inc()
	m.requestDuration.With(lbs).Observe(rt.Duration.Seconds())
	m.requestBytes.With(lbs).Observe(float64(rt.RequestBytes))
	m.responseBytes.With(lbs).Observe(float64(rt.ResponseBytes))
}
