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

package h2

import "sync"

// window tracks one direction of one flow-control window (connection or
// per-stream). RFC 7540 §6.9 allows the window to be driven negative by
// a SETTINGS_INITIAL_WINDOW_SIZE shrink, but never by a WINDOW_UPDATE or
// by consuming more than is available, which is what this type enforces.
type window struct {
	mu     sync.Mutex
	cond   *sync.Cond
	size   int64
	closed bool
}

func newWindow(initial int64) *window {
	w := &window{size: initial}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// increment applies a WINDOW_UPDATE. RFC 7540 caps the window at
// 2^31-1; exceeding it is a flow-control error.
func (w *window) increment(n int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.size+n > (1<<31)-1 {
		return ErrFlowControlViolation
	}
	w.size += n
	w.cond.Broadcast()
	return nil
}

// consume deducts n bytes of DATA received. Driving the window negative
// here is a real peer flow-control violation, not a pacing signal — the
// receiver advertised this window, so exceeding it is the peer's error
// to own, not something to wait out. Used on the receive-side only; the
// send side paces through take instead (RFC 7540 §6.9.1, §5.2.1).
func (w *window) consume(n int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.size-n < 0 {
		return ErrFlowControlViolation
	}
	w.size -= n
	return nil
}

// take blocks until the window has at least one byte available or is
// closed, then reserves up to want bytes — never more than currently
// available — and returns how many bytes it reserved. This is the
// send-side counterpart to consume: an exhausted send window means
// "wait for a WINDOW_UPDATE", not "protocol error" (RFC 7540 §6.9).
func (w *window) take(want int64) (int64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.size <= 0 {
		if w.closed {
			return 0, ErrFramerClosed
		}
		w.cond.Wait()
	}
	n := want
	if n > w.size {
		n = w.size
	}
	w.size -= n
	return n, nil
}

// refund returns bytes previously granted by take that ended up unused,
// e.g. because a second window on the same chunk (connection vs.
// stream) granted fewer bytes than this one did. Always succeeds: it is
// reversing our own reservation, not applying a peer WINDOW_UPDATE, so
// the §6.9 overflow cap that increment enforces does not apply here.
func (w *window) refund(n int64) {
	if n <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.size += n
	w.cond.Broadcast()
}

// close unblocks any goroutine parked in take, e.g. once the connection
// is shutting down and no further WINDOW_UPDATE will ever arrive.
func (w *window) close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.cond.Broadcast()
}

func (w *window) available() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}
