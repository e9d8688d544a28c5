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
	"os"
	"path/filepath"
	"testing"
)

func TestFileProviderServesFileUnderRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	provide := newFileProvider(root)

	content, mimeType, ok := provide("/app.css")
	if !ok {
		t.Fatal("expected app.css to be found")
	}
	if string(content) != "body{}" {
		t.Fatalf("got content %q", content)
	}
	if mimeType != "text/css; charset=utf-8" {
		t.Fatalf("got mime type %q", mimeType)
	}
}

func TestFileProviderRejectsPathTraversal(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(filepath.Dir(root), "secret.txt")
	if err := os.WriteFile(outside, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(outside)

	provide := newFileProvider(root)

	if _, _, ok := provide("/../secret.txt"); ok {
		t.Fatal("expected path traversal to be rejected")
	}
}

func TestFileProviderRejectsExtensionlessRoutes(t *testing.T) {
	root := t.TempDir()
	provide := newFileProvider(root)

	if _, _, ok := provide("/api/widgets"); ok {
		t.Fatal("expected extensionless route to fall through to routing")
	}
}

func TestFileProviderMissingFile(t *testing.T) {
	root := t.TempDir()
	provide := newFileProvider(root)

	if _, _, ok := provide("/missing.js"); ok {
		t.Fatal("expected missing file to report not found")
	}
}
