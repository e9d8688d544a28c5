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

// Package pool wraps valyala/bytebufferpool behind a lease/dispose API that
// enforces the use-after-dispose invariant rather than silently reusing a
// buffer some other goroutine still holds a reference to.
package pool

import (
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// Slab is a pooled byte slab leased from the process-wide pool. Calling any
// method on a Slab after Dispose panics, matching the UseAfterDispose error
// kind: there is no recovering from a pool invariant violation.
type Slab struct {
	buf      *bytebufferpool.ByteBuffer
	disposed atomic.Bool
}

// Lease reserves a slab from the pool. size is a hint used to avoid a grow
// on first write; bytebufferpool tracks calibrated sizes across Gets so the
// hint only matters for the first few leases of a given pool.
func Lease() *Slab {
	return &Slab{buf: bytebufferpool.Get()}
}

func (s *Slab) checkLive() {
	if s.disposed.Load() {
		panic("pool: use after dispose")
	}
}

// B returns the slab's backing bytes. The slice is only valid until the
// next Write or Dispose call.
func (s *Slab) B() []byte {
	s.checkLive()
	return s.buf.B
}

// Write appends p to the slab, growing its backing array as needed.
func (s *Slab) Write(p []byte) (int, error) {
	s.checkLive()
	return s.buf.Write(p)
}

// WriteString appends a string to the slab without an intermediate
// allocation.
func (s *Slab) WriteString(str string) (int, error) {
	s.checkLive()
	return s.buf.WriteString(str)
}

// Reset truncates the slab to zero length without returning it to the pool.
func (s *Slab) Reset() {
	s.checkLive()
	s.buf.Reset()
}

// Len reports the number of bytes currently written to the slab.
func (s *Slab) Len() int {
	s.checkLive()
	return s.buf.Len()
}

// Dispose returns the slab to the pool. It is the caller's responsibility
// to ensure nothing else retains s.B()'s slice after this call: the pool
// is free to hand the backing array to a different lease immediately.
// Calling Dispose twice panics (PoolDoubleFree).
func (s *Slab) Dispose() {
	if !s.disposed.CompareAndSwap(false, true) {
		panic("pool: double free")
	}
	bytebufferpool.Put(s.buf)
}
