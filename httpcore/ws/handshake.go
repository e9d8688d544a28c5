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

package ws

import (
	"crypto/sha1"
	"encoding/base64"
)

// handshakeGUID is the RFC 6455 §1.3 magic string concatenated onto the
// client's Sec-WebSocket-Key before hashing.
const handshakeGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// AcceptToken computes the Sec-WebSocket-Accept value for a given
// Sec-WebSocket-Key: base64(sha1(key + GUID)).
func AcceptToken(key string) string {
	h := sha1.New()
	h.Write([]byte(key))
	h.Write([]byte(handshakeGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
