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

package httpmsg

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// chunkedReader decodes an inbound "Transfer-Encoding: chunked" body into a
// plain byte stream, the receive-side counterpart of
// netio.SendBuffer's chunked framing on the way out.
type chunkedReader struct {
	br   *bufio.Reader
	left int
	done bool
}

func newChunkedReader(br *bufio.Reader) *chunkedReader {
	return &chunkedReader{br: br}
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.done {
		return 0, io.EOF
	}

	if c.left == 0 {
		line, err := c.br.ReadString('\n')
		if err != nil {
			return 0, err
		}
		line = strings.TrimRight(line, "\r\n")
		if semi := strings.IndexByte(line, ';'); semi >= 0 {
			line = line[:semi]
		}
		n, err := strconv.ParseInt(strings.TrimSpace(line), 16, 64)
		if err != nil {
			return 0, newParseErr(ErrMalformedRequest, "invalid chunk size")
		}
		if n == 0 {
			c.done = true
			// consume the trailing CRLF (and any trailer headers up to the
			// final blank line)
			for {
				l, err := c.br.ReadString('\n')
				if err != nil || l == "\r\n" || l == "\n" {
					break
				}
			}
			return 0, io.EOF
		}
		c.left = int(n)
	}

	if len(p) > c.left {
		p = p[:c.left]
	}

	n, err := c.br.Read(p)
	c.left -= n
	if c.left == 0 && err == nil {
		// consume the CRLF that terminates this chunk's data
		_, _ = c.br.Discard(2)
	}

	return n, err
}
