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
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gogo/protobuf/proto"
	"github.com/golang/snappy"
	"github.com/prometheus/prometheus/prompb"

	"github.com/wiredhq/wired/common"
	"github.com/wiredhq/wired/logger"
)

// remoteWriter snappy-compresses a protobuf WriteRequest and POSTs it
// to a Prometheus remote-write receiver, one small WriteRequest per
// RoundTrip rather than a batched periodic scrape — there's exactly one
// series family to report here, so batching would only add latency.
type remoteWriter struct {
	cli *http.Client
	cfg RemoteWriteConfig
}

func newRemoteWriter(cfg RemoteWriteConfig) (*remoteWriter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &remoteWriter{
		cfg: cfg,
		cli: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
	}, nil
}

func (w *remoteWriter) push(rt common.RoundTrip) {
	now := rt.Timestamp.UnixMilli()
	lbs := []prompb.Label{
		{Name: "__name__", Value: "wired_http_request_duration_seconds"},
		{Name: "method", Value: rt.Method},
		{Name: "route", Value: rt.Route},
		{Name: "protocol", Value: rt.Protocol},
		{Name: "status", Value: strconv.Itoa(rt.Status)},
	}
	req := &prompb.WriteRequest{
		Timeseries: []prompb.TimeSeries{
			{
				Labels:  lbs,
				Samples: []prompb.Sample{{Value: rt.Duration.Seconds(), Timestamp: now}},
			},
		},
	}

	if err := w.send(req); err != nil {
		logger.Warnf("observability: remote-write push failed: %v", err)
	}
}

func (w *remoteWriter) send(req *prompb.WriteRequest) error {
	b, err := proto.Marshal(req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.Timeout)
	defer cancel()

	compressed := snappy.Encode(nil, b)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.Endpoint, bytes.NewBuffer(compressed))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Encoding", "snappy")
	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set("X-Prometheus-Remote-Write-Version", "0.1.0")
	for k, v := range w.cfg.Header {
		httpReq.Header.Add(k, v)
	}

	rsp, err := w.cli.Do(httpReq)
	if err != nil {
		return err
	}
	defer rsp.Body.Close()
	io.Copy(io.Discard, rsp.Body)

	if rsp.StatusCode >= 400 {
		logger.Warnf("observability: remote-write receiver returned status %d", rsp.StatusCode)
	}
	return nil
}
