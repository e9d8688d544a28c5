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

import "strconv"

// statusLines holds a precomputed "HTTP/1.1 <code> <reason>\r\n" line for
// each well-known status code, avoiding a strconv/format pass on the hot
// path for the codes that matter.
var statusLines = map[int][]byte{
	200: []byte("HTTP/1.1 200 OK\r\n"),
	201: []byte("HTTP/1.1 201 Created\r\n"),
	202: []byte("HTTP/1.1 202 Accepted\r\n"),
	204: []byte("HTTP/1.1 204 No Content\r\n"),
	301: []byte("HTTP/1.1 301 Moved Permanently\r\n"),
	302: []byte("HTTP/1.1 302 Found\r\n"),
	304: []byte("HTTP/1.1 304 Not Modified\r\n"),
	400: []byte("HTTP/1.1 400 Bad Request\r\n"),
	401: []byte("HTTP/1.1 401 Unauthorized\r\n"),
	403: []byte("HTTP/1.1 403 Forbidden\r\n"),
	404: []byte("HTTP/1.1 404 Not Found\r\n"),
	405: []byte("HTTP/1.1 405 Method Not Allowed\r\n"),
	500: []byte("HTTP/1.1 500 Internal Server Error\r\n"),
	502: []byte("HTTP/1.1 502 Bad Gateway\r\n"),
	503: []byte("HTTP/1.1 503 Service Unavailable\r\n"),
}

var reasonPhrases = map[int]string{
	200: "OK", 201: "Created", 202: "Accepted", 204: "No Content",
	301: "Moved Permanently", 302: "Found", 304: "Not Modified",
	400: "Bad Request", 401: "Unauthorized", 403: "Forbidden",
	404: "Not Found", 405: "Method Not Allowed",
	500: "Internal Server Error", 502: "Bad Gateway", 503: "Service Unavailable",
}

// statusLine appends the status line for code/reason to dst. It uses the
// precomputed table when reason is empty and code is well-known;
// otherwise it falls back to formatting "HTTP/1.1 <code> <reason>\r\n".
func appendStatusLine(dst []byte, code int, reason string) []byte {
	if reason == "" {
		if line, ok := statusLines[code]; ok {
			return append(dst, line...)
		}
		reason = reasonPhrases[code]
	}
	dst = append(dst, "HTTP/1.1 "...)
	dst = strconv.AppendInt(dst, int64(code), 10)
	dst = append(dst, ' ')
	dst = append(dst, reason...)
	dst = append(dst, '\r', '\n')
	return dst
}
