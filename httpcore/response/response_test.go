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

import (
	"bytes"
	"strings"
	"testing"
)

func TestCommitKnownLengthBody(t *testing.T) {
	r := New()
	r.SetStatus(200)
	if err := r.AddHeader("X-Test", "yes"); err != nil {
		t.Fatalf("AddHeader: %v", err)
	}
	r.SetContentType("text/plain")
	r.SetContent(NewBytesContent([]byte("hello")))

	var buf bytes.Buffer
	if err := r.Commit(&buf); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	defer r.Dispose()

	out := buf.String()
	if !strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("missing status line: %q", out)
	}
	if !strings.Contains(out, "Content-Length: 5\r\n") {
		t.Fatalf("missing content-length: %q", out)
	}
	if !strings.Contains(out, "X-Test: yes\r\n") {
		t.Fatalf("missing caller header: %q", out)
	}
	if !strings.HasSuffix(out, "\r\n\r\nhello") {
		t.Fatalf("missing blank line + body: %q", out)
	}
}

func TestCommitNoBodyUsesContentLengthZero(t *testing.T) {
	r := New()
	r.SetStatus(204)

	var buf bytes.Buffer
	if err := r.Commit(&buf); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	defer r.Dispose()

	if !strings.Contains(buf.String(), "Content-Length: 0\r\n") {
		t.Fatalf("expected Content-Length: 0, got %q", buf.String())
	}
}

func TestCommitUnknownLengthGoesChunked(t *testing.T) {
	r := New()
	r.SetStatus(200)
	r.SetContent(NewStreamContent(strings.NewReader("abcdef")))

	var buf bytes.Buffer
	if err := r.Commit(&buf); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	defer r.Dispose()

	out := buf.String()
	if !strings.Contains(out, "Transfer-Encoding: chunked\r\n") {
		t.Fatalf("expected chunked encoding, got %q", out)
	}
	if !strings.HasSuffix(out, "6\r\nabcdef\r\n0\r\n\r\n") {
		t.Fatalf("expected chunk framing, got %q", out)
	}
}

func TestAddHeaderRejectsInjection(t *testing.T) {
	r := New()
	defer r.Dispose()
	r.SetStatus(200)
	if err := r.AddHeader("X-Evil", "a\r\nSet-Cookie: x=y"); err != ErrHeaderInjection {
		t.Fatalf("expected ErrHeaderInjection, got %v", err)
	}
}

func TestAddHeaderRequiresStatus(t *testing.T) {
	r := New()
	defer r.Dispose()
	if err := r.AddHeader("X-Test", "a"); err != ErrStatusNotSet {
		t.Fatalf("expected ErrStatusNotSet, got %v", err)
	}
}

func TestCommitTwiceFails(t *testing.T) {
	r := New()
	defer r.Dispose()
	r.SetStatus(200)

	var buf bytes.Buffer
	if err := r.Commit(&buf); err != nil {
		t.Fatalf("first Commit: %v", err)
	}
	if err := r.Commit(&buf); err != ErrAlreadyCommitted {
		t.Fatalf("expected ErrAlreadyCommitted, got %v", err)
	}
}

func TestCallerHeaderSuppressesStandardOne(t *testing.T) {
	r := New()
	defer r.Dispose()
	r.SetStatus(200)
	if err := r.AddHeader("Server", "custom/1"); err != nil {
		t.Fatalf("AddHeader: %v", err)
	}

	var buf bytes.Buffer
	if err := r.Commit(&buf); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	out := buf.String()
	if strings.Count(out, "Server:") != 1 {
		t.Fatalf("expected exactly one Server header, got %q", out)
	}
	if !strings.Contains(out, "Server: custom/1\r\n") {
		t.Fatalf("caller's Server header was not honored: %q", out)
	}
}

func TestWellKnownStatusUsesPrecomputedLine(t *testing.T) {
	r := New()
	defer r.Dispose()
	r.SetStatus(404)

	var buf bytes.Buffer
	if err := r.Commit(&buf); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "HTTP/1.1 404 Not Found\r\n") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestUnknownStatusFormatsLine(t *testing.T) {
	r := New()
	defer r.Dispose()
	r.SetStatus(599, "Custom Thing")

	var buf bytes.Buffer
	if err := r.Commit(&buf); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "HTTP/1.1 599 Custom Thing\r\n") {
		t.Fatalf("got %q", buf.String())
	}
}
