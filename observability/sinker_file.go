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
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wiredhq/wired/common"
	"github.com/wiredhq/wired/internal/json"
)

// fileSinker writes one JSON line per RoundTrip to stdout or a rotated
// log file.
type fileSinker struct {
	wr  io.WriteCloser
	cfg RoundTripsConfig
}

func newFileSinker(cfg RoundTripsConfig) (Sinker, error) {
	cfg.Validate()

	var wr io.WriteCloser
	if cfg.Console {
		wr = os.Stdout
	} else {
		wr = &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			LocalTime:  true,
		}
	}
	return &fileSinker{wr: wr, cfg: cfg}, nil
}

type roundTripRecord struct {
	Method       string `json:"method"`
	Route        string `json:"route"`
	RouteKey     string `json:"routeKey"`
	Protocol     string `json:"protocol"`
	Status       int    `json:"status"`
	StreamID     int    `json:"streamId"`
	RequestBytes int64  `json:"requestBytes"`
	ResponseBytes int64 `json:"responseBytes"`
	DurationMS   int64  `json:"durationMs"`
	Timestamp    string `json:"timestamp"`
}

func (s *fileSinker) Sink(rt common.RoundTrip) error {
	b, err := json.Marshal(roundTripRecord{
		Method:        rt.Method,
		Route:         rt.Route,
		RouteKey:      rt.RouteKey,
		Protocol:      rt.Protocol,
		Status:        rt.Status,
		StreamID:      rt.StreamID,
		RequestBytes:  rt.RequestBytes,
		ResponseBytes: rt.ResponseBytes,
		DurationMS:    rt.Duration.Milliseconds(),
		Timestamp:     rt.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = s.wr.Write(b)
	return err
}

func (s *fileSinker) Close() {
	s.wr.Close()
}
