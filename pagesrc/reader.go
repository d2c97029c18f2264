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

// Package pagesrc implements the server-page preprocessor: a byte-level
// state machine that turns literal text interleaved with <? ?>, <?= ?> and
// <?# ?> tags into a stream of interpreter-ready statements, one echo(...)
// call per literal span.
package pagesrc

import (
	"io"
	"os"
)

// Reader is a pull-based single-byte source with one byte of pushback,
// shared by the two input sources the preprocessor state machine reads
// from (an open file, or an in-memory blob).
type Reader interface {
	NextByte() (b byte, ok bool)
	PushBack(b byte)
}

// FileReader wraps an io.Reader (typically an *os.File) a byte at a time.
type FileReader struct {
	r    io.Reader
	buf  [1]byte
	back []byte
}

// NewFileReader builds a FileReader over r.
func NewFileReader(r io.Reader) *FileReader {
	return &FileReader{r: r}
}

// OpenFile opens path and wraps it in a FileReader; the caller must Close
// the returned file when done reading.
func OpenFile(path string) (*FileReader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return NewFileReader(f), f, nil
}

func (f *FileReader) NextByte() (byte, bool) {
	if n := len(f.back); n > 0 {
		b := f.back[n-1]
		f.back = f.back[:n-1]
		return b, true
	}

	n, err := f.r.Read(f.buf[:])
	if n == 0 || err != nil {
		return 0, false
	}
	return f.buf[0], true
}

func (f *FileReader) PushBack(b byte) {
	f.back = append(f.back, b)
}

// BlobReader wraps an in-memory byte slice.
type BlobReader struct {
	data []byte
	pos  int
	back []byte
}

// NewBlobReader builds a BlobReader over data.
func NewBlobReader(data []byte) *BlobReader {
	return &BlobReader{data: data}
}

func (b *BlobReader) NextByte() (byte, bool) {
	if n := len(b.back); n > 0 {
		c := b.back[n-1]
		b.back = b.back[:n-1]
		return c, true
	}

	if b.pos >= len(b.data) {
		return 0, false
	}
	c := b.data[b.pos]
	b.pos++
	return c, true
}

func (b *BlobReader) PushBack(c byte) {
	b.back = append(b.back, c)
}
