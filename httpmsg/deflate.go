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
	"io"

	"github.com/klauspost/compress/flate"
)

// deflateWriter wraps klauspost/compress/flate to produce a raw DEFLATE
// stream (RFC1951, no zlib wrapper) directly into the chunked send buffer,
// gated by the caller on Accept-Encoding, the MIME compressible flag and
// the configured compression level.
type deflateWriter struct {
	fw *flate.Writer
}

func newDeflateWriter(dst io.Writer, level int) (*deflateWriter, error) {
	if level < 1 || level > 9 {
		level = flate.DefaultCompression
	}
	fw, err := flate.NewWriter(dst, level)
	if err != nil {
		return nil, err
	}
	return &deflateWriter{fw: fw}, nil
}

func (d *deflateWriter) Write(p []byte) (int, error) {
	return d.fw.Write(p)
}

func (d *deflateWriter) Close() error {
	return d.fw.Close()
}
