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

// Package netio implements the connection-level byte primitives the HTTP
// engine is built on: a timed receive that distinguishes timeout from a
// closed/broken connection, and a fixed-capacity send buffer with optional
// chunked-transfer framing.
package netio

import (
	"errors"
	"net"
	"time"
)

// DefaultRecvTimeout is the budget every blocking read in the system uses
// unless a caller overrides it, covering request lines, headers and
// chunked body reads.
const DefaultRecvTimeout = 10 * time.Second

// ErrRecvTimeout is returned by RecvTimed when the deadline elapses with no
// data read, distinguished from a closed connection or any other I/O error.
var ErrRecvTimeout = errors.New("netio: receive timed out")

// RecvTimed reads up to len(buf) bytes from conn, failing with
// ErrRecvTimeout if nothing arrives before timeout elapses. It distinguishes
// three outcomes: a successful read (n>0, err==nil), a timeout
// (err==ErrRecvTimeout), and any other socket error (err wraps the
// underlying net error, including io.EOF on an orderly close).
func RecvTimed(conn net.Conn, buf []byte, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		timeout = DefaultRecvTimeout
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	defer conn.SetReadDeadline(time.Time{})

	n, err := conn.Read(buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return n, ErrRecvTimeout
		}
		return n, err
	}

	return n, nil
}
