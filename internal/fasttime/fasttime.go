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

package fasttime

import (
	"net/http"
	"sync/atomic"
	"time"
)

func init() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for tm := range ticker.C {
			atomic.StoreInt64(&currentTimestamp, tm.Unix())
			httpDate.Store(tm.UTC().Format(http.TimeFormat))
		}
	}()
}

var currentTimestamp = time.Now().Unix()

var httpDate atomic.Value

func init() {
	httpDate.Store(time.Now().UTC().Format(http.TimeFormat))
}

// UnixTimestamp 获取当前 unix 时间戳 性能更快
func UnixTimestamp() int64 {
	return atomic.LoadInt64(&currentTimestamp)
}

// HTTPDate returns the current time formatted as an RFC 7231 IMF-fixdate
// Date header value, refreshed once a second by the same background
// ticker that maintains UnixTimestamp.
func HTTPDate() string {
	return httpDate.Load().(string)
}
