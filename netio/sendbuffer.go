/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package netio

import (
	"fmt"
	"net"
)

// DefaultBufferSize is the fixed capacity of a SendBuffer, flushed to the
// wire whenever a write would overflow it.
const DefaultBufferSize = 8192

// SendBuffer accumulates outgoing bytes for one connection and flushes them
// either as-is or framed as HTTP/1.1 chunks, mirroring send_buffer_t and its
// write/flush helpers.
type SendBuffer struct {
	conn    net.Conn
	buf     []byte
	pos     int
	chunked bool
}

// NewSendBuffer allocates a SendBuffer of DefaultBufferSize bound to conn.
func NewSendBuffer(conn net.Conn) *SendBuffer {
	return &SendBuffer{conn: conn, buf: make([]byte, DefaultBufferSize)}
}

// SetChunked toggles chunked-transfer framing for every subsequent Flush.
func (s *SendBuffer) SetChunked(v bool) {
	s.chunked = v
}

// Chunked reports whether chunked framing is active.
func (s *SendBuffer) Chunked() bool {
	return s.chunked
}

// Write appends p to the buffer, flushing as many times as needed when it
// would overflow capacity.
func (s *SendBuffer) Write(p []byte) (int, error) {
	total := len(p)

	for len(p) > 0 {
		room := len(s.buf) - s.pos
		if room == 0 {
			if err := s.Flush(); err != nil {
				return total - len(p), err
			}
			room = len(s.buf)
		}

		n := room
		if n > len(p) {
			n = len(p)
		}
		copy(s.buf[s.pos:], p[:n])
		s.pos += n
		p = p[n:]
	}

	return total, nil
}

// WriteByte appends a single byte.
func (s *SendBuffer) WriteByte(b byte) error {
	_, err := s.Write([]byte{b})
	return err
}

// WriteString appends a string.
func (s *SendBuffer) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// WriteJSONEscaped writes str escaping '"' and '\n', matching
// write_json_ascii's escaping rule for embedding text inside a script-host
// echo() call.
func (s *SendBuffer) WriteJSONEscaped(str string) error {
	for i := 0; i < len(str); i++ {
		switch c := str[i]; c {
		case '"':
			if _, err := s.WriteString(`\"`); err != nil {
				return err
			}
		case '\n':
			if _, err := s.WriteString(`\n`); err != nil {
				return err
			}
		default:
			if err := s.WriteByte(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Flush writes buffered bytes to the connection, framing them as one
// chunk (hex length, CRLF, bytes, CRLF) when chunked is set.
func (s *SendBuffer) Flush() error {
	if s.pos == 0 {
		return nil
	}

	if s.chunked {
		if _, err := fmt.Fprintf(s.conn, "%x\r\n", s.pos); err != nil {
			return err
		}
	}

	if _, err := s.conn.Write(s.buf[:s.pos]); err != nil {
		return err
	}

	if s.chunked {
		if _, err := s.conn.Write([]byte("\r\n")); err != nil {
			return err
		}
	}

	s.pos = 0
	return nil
}

// FlushLast flushes any remaining bytes, then, when chunked, writes the
// terminal "0\r\n\r\n" marker that ends the chunked body.
func (s *SendBuffer) FlushLast() error {
	if err := s.Flush(); err != nil {
		return err
	}
	if s.chunked {
		_, err := s.conn.Write([]byte("0\r\n\r\n"))
		return err
	}
	return nil
}
