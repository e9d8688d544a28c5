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
	"io"
	"strconv"

	"github.com/wiredhq/wired/httpcore/h2"
	"github.com/wiredhq/wired/httpcore/hpack"
)

// h2Fields renders the response as an HTTP/2 header field list: the
// :status pseudo-header first, then the same standard/caller headers
// buildLines would emit, lower-cased per RFC 7540 §8.1.2 and with
// Transfer-Encoding dropped (HTTP/2 never sends a chunked body).
func (r *Response) h2Fields(bodyLen int64) []hpack.HeaderField {
	fields := make([]hpack.HeaderField, 0, r.headers.Len()+6)
	fields = append(fields, hpack.HeaderField{Name: ":status", Value: strconv.Itoa(r.code)})

	has := func(name string) bool {
		_, ok := r.headers.Get(name)
		return ok
	}

	if !has("Content-Type") && r.contentType != "" {
		fields = append(fields, hpack.HeaderField{Name: "content-type", Value: r.contentType})
	}
	if !has("Content-Encoding") && r.contentEncoding != "" {
		fields = append(fields, hpack.HeaderField{Name: "content-encoding", Value: r.contentEncoding})
	}
	if !has("Last-Modified") && r.hasLastModified {
		fields = append(fields, hpack.HeaderField{Name: "last-modified", Value: r.lastModified.UTC().Format(http1123)})
	}
	if !has("Expires") && r.hasExpires {
		fields = append(fields, hpack.HeaderField{Name: "expires", Value: r.expires.UTC().Format(http1123)})
	}
	if !has("Content-Length") {
		fields = append(fields, hpack.HeaderField{Name: "content-length", Value: strconv.FormatInt(bodyLen, 10)})
	}

	r.headers.Range(func(key, value string) bool {
		if key == "Transfer-Encoding" {
			return true
		}
		fields = append(fields, hpack.HeaderField{Name: toLower(key), Value: value})
		return true
	})

	return fields
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// CommitH2 serializes the response as one HEADERS frame (carrying
// :status and the header set) followed by zero or more DATA frames,
// since HTTP/2 framing has no use for the status line or chunked
// transfer coding an HTTP/1.1 Commit would produce. The body is read
// into memory first since WriteData needs a known length to split on
// frame-size boundaries.
func (r *Response) CommitH2(framer *h2.Framer, streamID uint32) error {
	if r.committed {
		return ErrAlreadyCommitted
	}
	r.committed = true

	var body []byte
	if r.content != nil {
		b, err := io.ReadAll(r.content)
		if err != nil {
			return err
		}
		body = b
	}

	fields := r.h2Fields(int64(len(body)))
	if err := framer.WriteHeaders(streamID, fields, len(body) == 0); err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return framer.WriteData(streamID, body, true)
}
