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

package controller

import (
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/wiredhq/wired/httpcore/middleware"
)

// newFileProvider implements the static-resource extension hook by
// reading files straight off disk under root. There is no library in
// this module's dependency stack for embedded-filesystem serving or MIME
// sniffing, so this one function is built on net/http's mime package
// and os.ReadFile rather than forced onto a third-party dependency that
// doesn't fit.
func newFileProvider(root string) middleware.StaticResource {
	root = filepath.Clean(root)
	return func(route string) ([]byte, string, bool) {
		if filepath.Ext(route) == "" {
			return nil, "", false
		}

		cleaned := filepath.Clean(filepath.Join(root, filepath.FromSlash(route)))
		if !strings.HasPrefix(cleaned, root+string(filepath.Separator)) && cleaned != root {
			return nil, "", false
		}

		b, err := os.ReadFile(cleaned)
		if err != nil {
			return nil, "", false
		}

		mimeType := mime.TypeByExtension(filepath.Ext(cleaned))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		return b, mimeType, true
	}
}
