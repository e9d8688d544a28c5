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
	"time"

	"github.com/wiredhq/wired/common/socket"
)

// idleTracker wraps a socket.TTLCache[string] keyed by connection id,
// used purely for observability bookkeeping: the connection goroutines
// themselves are responsible for closing their own sockets on a stalled
// read, this just reports which ones have gone quiet.
type idleTracker struct {
	cache *socket.TTLCache[string]
}

func newIdleTracker(ttl time.Duration) *idleTracker {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &idleTracker{cache: socket.NewTTLCache[string](ttl)}
}

func (t *idleTracker) touch(id string)  { t.cache.Touch(id) }
func (t *idleTracker) forget(id string) { t.cache.Delete(id) }
func (t *idleTracker) stop()            { t.cache.Close() }

// run periodically logs (at a low level) connections that have expired
// without being forgotten by their own goroutine, which would indicate a
// stuck read. The cache's own background gc already reclaims the map
// entries; this loop only exists to surface that condition.
func (t *idleTracker) run(done <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = t.cache.Expired()
		case <-done:
			return
		}
	}
}
