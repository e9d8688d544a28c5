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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wiredhq/wired/common"
)

// traceEmitter records one already-completed RoundTrip as a span. The
// exchange is already over by the time the event arrives, so the span
// is started and ended back-to-back with an explicit start time rather
// than wrapping live work.
type traceEmitter struct {
	tracer trace.Tracer
}

func newTraceEmitter() *traceEmitter {
	return &traceEmitter{tracer: otel.Tracer("github.com/wiredhq/wired/observability")}
}

func (t *traceEmitter) emit(rt common.RoundTrip) {
	_, span := t.tracer.Start(context.Background(), rt.RouteKey,
		trace.WithTimestamp(rt.Timestamp.Add(-rt.Duration)),
		trace.WithAttributes(
			attribute.String("http.method", rt.Method),
			attribute.String("http.route", rt.Route),
			attribute.String("http.protocol", rt.Protocol),
			attribute.Int("http.status_code", rt.Status),
			attribute.Int("http.stream_id", rt.StreamID),
		),
	)
	if rt.Status >= 500 {
		span.SetStatus(codes.Error, "endpoint error")
	}
	span.End(trace.WithTimestamp(rt.Timestamp))
}
