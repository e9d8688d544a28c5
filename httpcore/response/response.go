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

// Package response builds the status line, headers and body for an
// outgoing HTTP/1.1 message (or, for HTTP/2, the header field list and
// body chunks handed to the framer), batching small header blocks
// through a pooled buffer and falling back to direct writes for large
// ones.
package response

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/wiredhq/wired/common"
	"github.com/wiredhq/wired/httpcore/chunked"
	"github.com/wiredhq/wired/httpcore/headermap"
	"github.com/wiredhq/wired/internal/fasttime"
	"github.com/wiredhq/wired/internal/pool"
)

// batchThreshold is the header-block size, in bytes, under which Commit
// writes the whole block as one pooled segment rather than one Write
// call per header.
const batchThreshold = 4096

// serverHeader is the value written for the Server header when the
// caller hasn't set one explicitly.
var serverHeader = common.App + "/" + common.Version

// Content is the producer a Response body is read from. Len reports a
// known byte length and true, or (0, false) when the length can't be
// determined up front (the body is then sent chunked).
type Content interface {
	io.Reader
	Len() (int64, bool)
}

// BytesContent adapts a byte slice already in memory to Content.
type BytesContent struct {
	b   []byte
	pos int
}

// NewBytesContent wraps b as a Content with a known length.
func NewBytesContent(b []byte) *BytesContent {
	return &BytesContent{b: b}
}

func (c *BytesContent) Len() (int64, bool) { return int64(len(c.b)), true }

func (c *BytesContent) Read(p []byte) (int, error) {
	if c.pos >= len(c.b) {
		return 0, io.EOF
	}
	n := copy(p, c.b[c.pos:])
	c.pos += n
	return n, nil
}

// StreamContent adapts an io.Reader of unknown length to Content.
type StreamContent struct {
	r io.Reader
}

// NewStreamContent wraps r as a Content of unknown length, to be sent
// chunked.
func NewStreamContent(r io.Reader) *StreamContent {
	return &StreamContent{r: r}
}

func (c *StreamContent) Len() (int64, bool)        { return 0, false }
func (c *StreamContent) Read(p []byte) (int, error) { return c.r.Read(p) }

// Response is mutable until Commit is called. The zero value is not
// usable; construct with New.
type Response struct {
	headers *headermap.Map

	statusSet bool
	code      int
	reason    string

	content         Content
	contentType     string
	contentEncoding string

	lastModified    time.Time
	hasLastModified bool
	expires         time.Time
	hasExpires      bool

	committed bool
}

// New returns an empty Response with a freshly leased header map.
func New() *Response {
	return &Response{headers: headermap.New()}
}

// SetStatus sets the status code and, optionally, an explicit reason
// phrase (falling back to the well-known phrase, or an empty one, when
// omitted). Must be called before AddHeader or any Set* method.
func (r *Response) SetStatus(code int, reason ...string) {
	r.code = code
	if len(reason) > 0 {
		r.reason = reason[0]
	}
	r.statusSet = true
}

// AddHeader appends a caller header, validating it against response
// splitting and rejecting mutation once the response has been
// committed or before a status has been set.
func (r *Response) AddHeader(key, value string) error {
	if r.committed {
		return ErrAlreadyCommitted
	}
	if !r.statusSet {
		return ErrStatusNotSet
	}
	if strings.ContainsAny(value, "\r\n\x00") {
		return ErrHeaderInjection
	}
	return r.headers.Set(key, value)
}

// SetContent attaches the body producer.
func (r *Response) SetContent(c Content) { r.content = c }

// SetContentType sets the Content-Type standard header value.
func (r *Response) SetContentType(v string) { r.contentType = v }

// SetContentEncoding sets the Content-Encoding standard header value.
func (r *Response) SetContentEncoding(v string) { r.contentEncoding = v }

// SetLastModified sets the Last-Modified standard header value.
func (r *Response) SetLastModified(t time.Time) {
	r.lastModified = t
	r.hasLastModified = true
}

// SetExpires sets the Expires standard header value.
func (r *Response) SetExpires(t time.Time) {
	r.expires = t
	r.hasExpires = true
}

// Committed reports whether Commit has already been called.
func (r *Response) Committed() bool { return r.committed }

// StatusCode reports the code set by SetStatus, or 0 if none has been
// set yet.
func (r *Response) StatusCode() int { return r.code }

// Dispose releases the response's header map back to its pool. Safe to
// call exactly once, after Commit (or instead of Commit, if the
// response is being abandoned without ever reaching the wire).
func (r *Response) Dispose() {
	if r.headers != nil {
		r.headers.Dispose()
		r.headers = nil
	}
}

// headerLine renders one "Name: value\r\n" line.
func headerLine(name, value string) []byte {
	line := make([]byte, 0, len(name)+len(value)+4)
	line = append(line, name...)
	line = append(line, ':', ' ')
	line = append(line, value...)
	line = append(line, '\r', '\n')
	return line
}

// buildLines assembles every header line (standard headers the caller
// hasn't set, then caller headers in insertion order) plus the known
// content length when applicable, returning the lines and whether the
// body must be sent chunked.
func (r *Response) buildLines() (lines [][]byte, chunkedBody bool) {
	has := func(name string) bool {
		_, ok := r.headers.Get(name)
		return ok
	}

	if !has("Server") {
		lines = append(lines, headerLine("Server", serverHeader))
	}
	if !has("Date") {
		lines = append(lines, headerLine("Date", fasttime.HTTPDate()))
	}
	if r.contentType != "" && !has("Content-Type") {
		lines = append(lines, headerLine("Content-Type", r.contentType))
	}
	if r.contentEncoding != "" && !has("Content-Encoding") {
		lines = append(lines, headerLine("Content-Encoding", r.contentEncoding))
	}
	if r.hasLastModified && !has("Last-Modified") {
		lines = append(lines, headerLine("Last-Modified", r.lastModified.UTC().Format(http1123)))
	}
	if r.hasExpires && !has("Expires") {
		lines = append(lines, headerLine("Expires", r.expires.UTC().Format(http1123)))
	}

	if !has("Content-Length") && !has("Transfer-Encoding") {
		if r.content == nil {
			lines = append(lines, headerLine("Content-Length", "0"))
		} else if n, ok := r.content.Len(); ok {
			lines = append(lines, headerLine("Content-Length", strconv.FormatInt(n, 10)))
		} else {
			lines = append(lines, headerLine("Transfer-Encoding", "chunked"))
			chunkedBody = true
		}
	} else if !has("Content-Length") && has("Transfer-Encoding") {
		chunkedBody = true
	}

	r.headers.Range(func(key, value string) bool {
		lines = append(lines, headerLine(key, value))
		return true
	})

	return lines, chunkedBody
}

// http1123 is the RFC 1123 layout used for Date-like headers; equal to
// net/http's TimeFormat, reproduced here to avoid importing net/http
// just for the constant.
const http1123 = "Mon, 02 Jan 2006 15:04:05 GMT"

// Commit writes the status line, headers and body to w in order and
// marks the response committed. No further header mutation is
// permitted once Commit returns (successfully or not). Commit does not
// dispose the response; callers must still call Dispose.
func (r *Response) Commit(w io.Writer) error {
	if r.committed {
		return ErrAlreadyCommitted
	}
	r.committed = true

	lines, chunkedBody := r.buildLines()

	total := statusLineLen(r.code, r.reason)
	for _, l := range lines {
		total += len(l)
	}
	total += 2 // blank line

	if total <= batchThreshold {
		slab := pool.Lease()
		defer slab.Dispose()
		buf := appendStatusLine(nil, r.code, r.reason)
		for _, l := range lines {
			buf = append(buf, l...)
		}
		buf = append(buf, '\r', '\n')
		if _, err := slab.Write(buf); err != nil {
			return err
		}
		if _, err := w.Write(slab.B()); err != nil {
			return err
		}
	} else {
		if _, err := w.Write(appendStatusLine(nil, r.code, r.reason)); err != nil {
			return err
		}
		for _, l := range lines {
			if _, err := w.Write(l); err != nil {
				return err
			}
		}
		if _, err := w.Write([]byte("\r\n")); err != nil {
			return err
		}
	}

	return r.writeBody(w, chunkedBody)
}

func (r *Response) writeBody(w io.Writer, chunkedBody bool) error {
	if r.content == nil {
		return nil
	}
	if !chunkedBody {
		_, err := io.Copy(w, r.content)
		return err
	}
	cw := chunked.NewWriter(w)
	buf := make([]byte, 32*1024)
	for {
		n, rerr := r.content.Read(buf)
		if n > 0 {
			if _, werr := cw.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}
	return cw.Finish()
}

func statusLineLen(code int, reason string) int {
	return len(appendStatusLine(nil, code, reason))
}
