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
	"mime"
	"strconv"
	"strings"

	"github.com/nabbar/emberhttp/kv"
)

// FormFile is one uploaded multipart/form-data file field.
type FormFile struct {
	Name        string
	Filename    string
	ContentType string
	Data        []byte
}

// ReadBody consumes the request body according to Content-Length/
// Transfer-Encoding/Content-Type, populating PostVars and Files. It must be
// called at most once per request, after headers have been parsed. Only
// POST requests carry a body in this server's model; any other method is a
// no-op.
func (r *Request) ReadBody() error {
	if r.Method != MethodPOST {
		return nil
	}

	te, hasTE := r.Headers.Find("Transfer-Encoding", true)

	var body io.Reader

	switch {
	case hasTE && strings.EqualFold(strings.TrimSpace(te.Value), "chunked"):
		body = newChunkedReader(r.br)
	case hasTE:
		return newParseErr(ErrUnsupportedTransferEncoding, "transfer-encoding not supported")
	default:
		cl, hasLen := r.Headers.Find("Content-Length", true)
		if !hasLen {
			return newParseErr(ErrMissingContentLength, "missing content length")
		}
		n, err := strconv.Atoi(strings.TrimSpace(cl.Value))
		if err != nil || n < 0 {
			return newParseErr(ErrMalformedRequest, "invalid Content-Length")
		}
		if n > MaxFormFieldBytes*16 {
			return newParseErr(ErrBodyTooLarge, "Content-Length exceeds server limit")
		}
		body = io.LimitReader(r.br, int64(n))
	}

	ct, hasCT := r.Headers.Find("Content-Type", true)
	var mediaType string
	var params map[string]string
	if hasCT {
		mediaType, params, _ = mime.ParseMediaType(ct.Value)
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		return r.readURLEncoded(body)
	case "multipart/form-data":
		return r.readMultipart(body, params["boundary"])
	default:
		return newParseErr(ErrUnsupportedContentType, "content-type not supported")
	}
}

// readURLEncoded streams an application/x-www-form-urlencoded body,
// growing its read buffer in 2 KiB steps up to MaxFormFieldBytes.
func (r *Request) readURLEncoded(body io.Reader) error {
	const step = 2048

	var buf []byte
	chunk := make([]byte, step)

	for {
		n, err := body.Read(chunk)
		if n > 0 {
			if len(buf)+n > MaxFormFieldBytes {
				return newParseErr(ErrBodyTooLarge, "urlencoded body exceeds cap")
			}
			buf = append(buf, chunk[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	r.PostVars = kv.ParseQuery(string(buf))
	return nil
}
