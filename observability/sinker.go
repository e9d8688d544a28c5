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

import "github.com/wiredhq/wired/common"

// Sinker writes a raw RoundTrip record to a configured destination.
type Sinker interface {
	Sink(rt common.RoundTrip) error
	Close()
}

// newSinker picks the round-trip sinker per configuration: Mongo when
// enabled, otherwise the file/console JSON sinker.
func newSinker(cfg Config) (Sinker, error) {
	if cfg.Mongo.Enabled {
		return newMongoSinker(cfg.Mongo)
	}
	return newFileSinker(cfg.RoundTrips)
}
