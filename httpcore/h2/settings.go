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

import "encoding/binary"

// Settings identifiers, RFC 7540 §6.5.2.
const (
	settingHeaderTableSize      uint16 = 0x1
	settingEnablePush           uint16 = 0x2
	settingMaxConcurrentStreams uint16 = 0x3
	settingInitialWindowSize    uint16 = 0x4
	settingMaxFrameSize         uint16 = 0x5
	settingMaxHeaderListSize    uint16 = 0x6
)

// Settings holds the RFC 7540 §6.5.2 connection parameters, overridable
// via the server's http2 configuration section.
type Settings struct {
	HeaderTableSize      uint32
	EnablePush           bool
	MaxConcurrentStreams uint32
	InitialWindowSize    uint32
	MaxFrameSize         uint32
	MaxHeaderListSize    uint32
}

// DefaultSettings returns the RFC 7540 §6.5.2 defaults.
func DefaultSettings() Settings {
	return Settings{
		HeaderTableSize:      4096,
		EnablePush:           true,
		MaxConcurrentStreams: 1 << 31, // unset -> treated as effectively unlimited
		InitialWindowSize:    65535,
		MaxFrameSize:         16384,
		MaxHeaderListSize:    1 << 31,
	}
}

// ApplySettingsFrame decodes a SETTINGS frame payload (a sequence of
// 6-byte id/value pairs) and applies each to s in order.
func (s *Settings) ApplySettingsFrame(payload []byte) error {
	for len(payload) >= 6 {
		id := binary.BigEndian.Uint16(payload[0:2])
		val := binary.BigEndian.Uint32(payload[2:6])
		payload = payload[6:]

		switch id {
		case settingHeaderTableSize:
			s.HeaderTableSize = val
		case settingEnablePush:
			s.EnablePush = val != 0
		case settingMaxConcurrentStreams:
			s.MaxConcurrentStreams = val
		case settingInitialWindowSize:
			s.InitialWindowSize = val
		case settingMaxFrameSize:
			s.MaxFrameSize = val
		case settingMaxHeaderListSize:
			s.MaxHeaderListSize = val
		default:
			// unknown settings identifiers are ignored, per RFC 7540 §6.5.2.
		}
	}
	return nil
}

// AppendSettingsFrame appends a complete SETTINGS frame (header +
// payload) advertising s to dst.
func AppendSettingsFrame(dst []byte, s Settings) []byte {
	var payload []byte
	payload = appendSetting(payload, settingHeaderTableSize, s.HeaderTableSize)
	payload = appendSetting(payload, settingEnablePush, boolToUint32(s.EnablePush))
	payload = appendSetting(payload, settingMaxConcurrentStreams, s.MaxConcurrentStreams)
	payload = appendSetting(payload, settingInitialWindowSize, s.InitialWindowSize)
	payload = appendSetting(payload, settingMaxFrameSize, s.MaxFrameSize)
	payload = appendSetting(payload, settingMaxHeaderListSize, s.MaxHeaderListSize)

	dst = AppendFrameHeader(dst, FrameHeader{Length: uint32(len(payload)), Type: FrameSettings})
	return append(dst, payload...)
}

// AppendSettingsAck appends an empty SETTINGS frame with the ACK flag
// set, as required after processing a peer's SETTINGS frame.
func AppendSettingsAck(dst []byte) []byte {
	return AppendFrameHeader(dst, FrameHeader{Type: FrameSettings, Flags: FlagAck})
}

func appendSetting(dst []byte, id uint16, val uint32) []byte {
	var b [6]byte
	binary.BigEndian.PutUint16(b[0:2], id)
	binary.BigEndian.PutUint32(b[2:6], val)
	return append(dst, b[:]...)
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
