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

package response

import "errors"

// ErrHeaderInjection is returned by AddHeader when a value carries a CR,
// LF or NUL byte that could be used to smuggle extra header lines or
// terminate the header block early.
var ErrHeaderInjection = errors.New("response: header value contains CR, LF or NUL")

// ErrStatusNotSet is returned by AddHeader/Commit when called before
// SetStatus.
var ErrStatusNotSet = errors.New("response: status must be set before headers are added")

// ErrAlreadyCommitted is returned by any mutating call made after Commit.
var ErrAlreadyCommitted = errors.New("response: already committed")
