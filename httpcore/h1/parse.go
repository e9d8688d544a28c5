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
	"regexp"
	"strconv"
	"strings"

	"github.com/wiredhq/wired/httpcore/chunked"
	"github.com/wiredhq/wired/httpcore/headermap"
)

// Source is the subset of httpcore/wire.Pipe that the parser needs.
type Source interface {
	ReadUntil(delimiter []byte) ([]byte, error)
	ReadExact(n int) ([]byte, error)
}

var requestLineRE = regexp.MustCompile(
	`^\s*(GET|POST|PUT|DELETE|PATCH|HEAD|OPTIONS)\s+(/[^\s]*)\s+HTTP/\d\.\d\s*$`,
)

// ParseRequest reads one complete HTTP/1.1 request from src: the request
// line, the header block, and whatever body the headers describe.
func ParseRequest(src Source) (*Request, error) {
	block, err := src.ReadUntil([]byte("\r\n\r\n"))
	if err != nil {
		return nil, err
	}

	lines := bytes.Split(block, []byte("\r\n"))
	if len(lines) == 0 {
		return nil, ErrBadRequestLine
	}

	m := requestLineRE.FindSubmatch(lines[0])
	if m == nil {
		return nil, ErrBadRequestLine
	}
	method := string(m[1])
	rawTarget := string(m[2])

	route, query, _ := strings.Cut(rawTarget, "?")

	headers := headermap.New()
	for _, line := range lines[1:] {
		if len(line) == 0 {
			continue
		}
		name, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(string(name)))
		val := strings.TrimSpace(string(value))
		_ = headers.Set(key, val) // last one wins for repeated header lines
	}

	body, err := readBody(src, headers)
	if err != nil {
		headers.Dispose()
		return nil, err
	}

	return &Request{
		Method:      method,
		Route:       route,
		QueryString: query,
		Headers:     headers,
		Body:        body,
	}, nil
}

func readBody(src Source, headers *headermap.Map) ([]byte, error) {
	if te, ok := headers.Get("transfer-encoding"); ok && strings.EqualFold(strings.TrimSpace(te), "chunked") {
		return chunked.Decode(src)
	}

	cl, ok := headers.Get("content-length")
	if !ok {
		return nil, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(cl), 10, 63)
	if err != nil {
		return nil, ErrBadContentLength
	}
	if n == 0 {
		return nil, nil
	}
	raw, err := src.ReadExact(int(n))
	if err != nil {
		return nil, err
	}
	// ReadExact's slice is only valid until the pipe's next mutating
	// call (the next request on this connection); the body must outlive
	// that.
	body := make([]byte, len(raw))
	copy(body, raw)
	return body, nil
}
