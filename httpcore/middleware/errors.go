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

package middleware

import "fmt"

// EndpointPanic wraps a recovered panic from user middleware or an
// endpoint. Dispatch converts it to a 500 response when the response
// hasn't been committed yet, or propagates it to the connection driver
// (which must close the connection) when it has.
type EndpointPanic struct {
	Value      any
	RouteKey   string
	Committed  bool
	StackTrace []byte
}

func (e *EndpointPanic) Error() string {
	return fmt.Sprintf("middleware: endpoint panic in %q: %v", e.RouteKey, e.Value)
}
