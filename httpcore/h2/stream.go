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

import "github.com/wiredhq/wired/internal/pubsub"

// Stream is one HTTP/2 stream's connection-side state: a FIFO of
// pending frames belonging to that stream, a half-closed-remote flag,
// and the flow-control windows for each direction.
type Stream struct {
	ID               uint32
	sendWindow       *window
	recvWindow       *window
	halfClosedRemote bool
	queue            pubsub.Queue
}

// Queue exposes the stream's frame FIFO to the dispatched task (the
// Request Pipeline handler for this stream).
func (s *Stream) Queue() pubsub.Queue { return s.queue }

// HalfClosedRemote reports whether END_STREAM has been observed on
// frames received from the peer for this stream.
func (s *Stream) HalfClosedRemote() bool { return s.halfClosedRemote }
