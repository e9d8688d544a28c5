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

package wire

import (
	"bytes"
	"io"

	"github.com/wiredhq/wired/internal/splitio"
)

// DefaultBufferSize is the pipe's default internal buffer size: 64 KiB,
// overridable via New's size argument.
const DefaultBufferSize = 64 * 1024

// Source is the minimal read/write surface the pipe needs. net.Conn and
// crypto/tls.Conn both satisfy it.
type Source interface {
	io.Reader
	io.Writer
}

// Pipe is a buffered duplex reader over a Source, offering the three
// operations specified for the Byte Pipe component: ReadUntil, ReadExact
// and PeekAvailable. A slice returned by any of these methods is only
// valid until the next call that mutates the pipe's buffer — callers that
// need to retain data past that point must copy it.
type Pipe struct {
	src Source

	buf  []byte
	read int // consumed prefix of buf
	fill int // valid bytes in buf

	maxBuf int
}

// New wraps src in a Pipe with the given initial buffer size. size <= 0
// selects DefaultBufferSize.
func New(src Source, size int) *Pipe {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Pipe{
		src:    src,
		buf:    make([]byte, size),
		maxBuf: size,
	}
}

func (p *Pipe) compact() {
	if p.read == 0 {
		return
	}
	n := copy(p.buf, p.buf[p.read:p.fill])
	p.read = 0
	p.fill = n
}

// fillAtLeast ensures the buffer holds at least n unread bytes, growing
// and refilling from src as needed. It returns ErrUnexpectedEnd if src is
// exhausted first.
func (p *Pipe) fillAtLeast(n int) error {
	for p.fill-p.read < n {
		p.compact()
		if p.fill+1 > len(p.buf) {
			grown := make([]byte, len(p.buf)*2)
			if len(grown) < n {
				grown = make([]byte, n)
			}
			copy(grown, p.buf[:p.fill])
			p.buf = grown
		}
		read, err := p.src.Read(p.buf[p.fill:])
		p.fill += read
		if read == 0 {
			if err == nil {
				err = io.EOF
			}
			if err == io.EOF {
				return ErrUnexpectedEnd
			}
			return err
		}
	}
	return nil
}

// ReadUntil reads until the exact byte sequence delimiter is found,
// advancing the read cursor past it, and returns the bytes before the
// delimiter (not including it). The search may span multiple refills.
func (p *Pipe) ReadUntil(delimiter []byte) ([]byte, error) {
	if len(delimiter) == 0 {
		return nil, nil
	}
	if delimiter[len(delimiter)-1] == '\n' {
		return p.readUntilLineDelimiter(delimiter)
	}
	return p.readUntilAnyDelimiter(delimiter)
}

// readUntilLineDelimiter handles the delimiters every caller actually
// passes (CRLF, CRLF CRLF, chunk-size lines): all of them end in '\n', so
// a match can only end where splitio.Scanner already stops. Walking line
// boundaries instead of re-running bytes.Index over the whole buffered
// window on every refill means bytes already ruled out never get rescanned.
func (p *Pipe) readUntilLineDelimiter(delimiter []byte) ([]byte, error) {
	scanned := p.read
	for {
		scanner := splitio.NewScanner(p.buf[scanned:p.fill])
		for scanner.Scan() {
			scanned += len(scanner.Bytes())
			have := scanned - p.read
			if have < len(delimiter) {
				continue
			}
			if bytes.HasSuffix(p.buf[p.read:scanned], delimiter) {
				before := p.buf[p.read : scanned-len(delimiter)]
				p.read = scanned
				return before, nil
			}
		}
		before := p.fill - p.read
		if err := p.fillAtLeast(before + 1); err != nil {
			return nil, err
		}
	}
}

// readUntilAnyDelimiter is the fallback for a delimiter that doesn't end
// in '\n', kept for callers outside the HTTP/1.1 line-oriented grammar.
func (p *Pipe) readUntilAnyDelimiter(delimiter []byte) ([]byte, error) {
	searchFrom := 0
	for {
		window := p.buf[p.read:p.fill]
		if idx := bytes.Index(window[searchFrom:], delimiter); idx >= 0 {
			end := searchFrom + idx
			before := window[:end]
			p.read += end + len(delimiter)
			return before, nil
		}
		// keep from re-scanning bytes we've already ruled out, minus a
		// safety margin for a delimiter that straddles the refill boundary.
		if margin := len(window) - len(delimiter) + 1; margin > searchFrom {
			searchFrom = margin
		}
		before := p.fill - p.read
		if err := p.fillAtLeast(before + 1); err != nil {
			return nil, err
		}
	}
}

// ReadExact reads exactly n bytes or fails with ErrUnexpectedEnd.
func (p *Pipe) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if err := p.fillAtLeast(n); err != nil {
		return nil, err
	}
	b := p.buf[p.read : p.read+n]
	p.read += n
	return b, nil
}

// PeekAvailable returns the currently-buffered, unread bytes without
// advancing the read cursor. It never blocks on src.
func (p *Pipe) PeekAvailable() []byte {
	return p.buf[p.read:p.fill]
}

// Discard advances the read cursor by n bytes of already-buffered data
// (as returned by PeekAvailable), without touching src.
func (p *Pipe) Discard(n int) {
	if p.read+n > p.fill {
		n = p.fill - p.read
	}
	p.read += n
}

// Write passes bytes straight through to the underlying source; the pipe
// does no output buffering of its own (httpcore/response owns its own
// pooled write-batching).
func (p *Pipe) Write(b []byte) (int, error) {
	return p.src.Write(b)
}
