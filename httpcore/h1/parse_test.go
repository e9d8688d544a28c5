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

package h1

import (
	"bytes"
	"testing"

	"github.com/wiredhq/wired/httpcore/wire"
)

// rwBuffer glues a bytes.Reader's worth of input to a discard sink so it
// satisfies wire.Source (io.Reader + io.Writer).
type rwBuffer struct {
	*bytes.Buffer
}

func (rwBuffer) Write(p []byte) (int, error) { return len(p), nil }

func newPipe(raw string) *wire.Pipe {
	return wire.New(rwBuffer{bytes.NewBufferString(raw)}, 64)
}

func TestParseRequestLineAndHeaders(t *testing.T) {
	raw := "GET /widgets?page=2 HTTP/1.1\r\nHost: example.com\r\nX-Trace: abc\r\n\r\n"
	req, err := ParseRequest(newPipe(raw))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	defer req.Dispose()

	if req.Method != "GET" || req.Route != "/widgets" || req.QueryString != "page=2" {
		t.Fatalf("got method=%q route=%q query=%q", req.Method, req.Route, req.QueryString)
	}
	if v, ok := req.Headers.Get("host"); !ok || v != "example.com" {
		t.Fatalf("host header: got %q ok=%v", v, ok)
	}
	if v, ok := req.Headers.Get("x-trace"); !ok || v != "abc" {
		t.Fatalf("x-trace header: got %q ok=%v", v, ok)
	}
	if len(req.Body) != 0 {
		t.Fatalf("expected empty body, got %q", req.Body)
	}
}

func TestParseRequestContentLengthBody(t *testing.T) {
	raw := "POST /items HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello"
	req, err := ParseRequest(newPipe(raw))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	defer req.Dispose()
	if string(req.Body) != "hello" {
		t.Fatalf("got body %q", req.Body)
	}
}

func TestParseRequestChunkedBody(t *testing.T) {
	raw := "POST /items HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"
	req, err := ParseRequest(newPipe(raw))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	defer req.Dispose()
	if string(req.Body) != "Wikipedia" {
		t.Fatalf("got body %q", req.Body)
	}
}

func TestParseRequestBadLine(t *testing.T) {
	raw := "GARBAGE\r\n\r\n"
	if _, err := ParseRequest(newPipe(raw)); err != ErrBadRequestLine {
		t.Fatalf("expected ErrBadRequestLine, got %v", err)
	}
}

func TestParseRequestBadContentLength(t *testing.T) {
	raw := "POST /x HTTP/1.1\r\nContent-Length: banana\r\n\r\n"
	if _, err := ParseRequest(newPipe(raw)); err != ErrBadContentLength {
		t.Fatalf("expected ErrBadContentLength, got %v", err)
	}
}

func TestDecideDisposition(t *testing.T) {
	cases := []struct {
		raw  string
		want Disposition
	}{
		{"GET /a HTTP/1.1\r\n\r\n", KeepAlive},
		{"GET /a HTTP/1.1\r\nConnection: close\r\n\r\n", Close},
		{"GET /a HTTP/1.1\r\nConnection: keep-alive\r\n\r\n", KeepAlive},
		{"GET /a HTTP/1.1\r\nUpgrade: websocket\r\nConnection: Upgrade\r\n\r\n", Upgrade},
	}
	for _, c := range cases {
		req, err := ParseRequest(newPipe(c.raw))
		if err != nil {
			t.Fatalf("%q: ParseRequest: %v", c.raw, err)
		}
		if got := Decide(req); got != c.want {
			t.Errorf("%q: got %v want %v", c.raw, got, c.want)
		}
		req.Dispose()
	}
}

func TestParseRequestTwoInARowOnSameConnection(t *testing.T) {
	raw := "GET /a HTTP/1.1\r\nContent-Length: 2\r\n\r\nhiGET /b HTTP/1.1\r\n\r\n"
	p := newPipe(raw)

	first, err := ParseRequest(p)
	if err != nil {
		t.Fatalf("first ParseRequest: %v", err)
	}
	firstBody := append([]byte(nil), first.Body...)
	first.Dispose()

	second, err := ParseRequest(p)
	if err != nil {
		t.Fatalf("second ParseRequest: %v", err)
	}
	defer second.Dispose()

	if string(firstBody) != "hi" {
		t.Fatalf("first body corrupted by second parse: %q", firstBody)
	}
	if second.Route != "/b" {
		t.Fatalf("second route: got %q", second.Route)
	}
}
