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

// Package ws implements the RFC 6455 WebSocket handshake accept-token
// computation and frame encode/decode, including masking.
package ws

import "errors"

// ErrPayloadTooLarge reports a frame whose declared length exceeds the
// caller-provided buffer capacity.
var ErrPayloadTooLarge = errors.New("ws: payload too large")

// ErrControlFrameTooLarge reports a control frame (close/ping/pong) with
// a payload over 125 bytes, forbidden by RFC 6455 §5.5.
var ErrControlFrameTooLarge = errors.New("ws: control frame payload exceeds 125 bytes")

// ErrUnmaskedClientFrame reports a client-to-server frame missing the
// mandatory mask bit.
var ErrUnmaskedClientFrame = errors.New("ws: client frame must be masked")
