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
	"fmt"
	"strings"

	"github.com/nabbar/emberhttp/httptime"
	"github.com/nabbar/emberhttp/kv"
	"github.com/nabbar/emberhttp/netio"
)

// statusTable maps status codes to their reason phrase.
var statusTable = map[int]string{
	200: "OK",
	204: "No Content",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	400: "Bad Request",
	401: "Unauthorized",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	408: "Request Timeout",
	411: "Length Required",
	413: "Payload Too Large",
	414: "URI Too Long",
	500: "Internal Server Error",
	505: "HTTP Version Not Supported",
}

// Reason returns the reason phrase for code, or "" when unknown.
func Reason(code int) string {
	return statusTable[code]
}

// Reply accumulates a response's status/headers, then streams its body
// through a netio.SendBuffer, optionally deflate-compressed.
type Reply struct {
	sb      *netio.SendBuffer
	status  int
	headers kv.List
	http11  bool
	started bool

	deflate *deflateWriter
}

// NewReply builds a Reply writing into sb for a request whose version is
// http11; default status is 200.
func NewReply(sb *netio.SendBuffer, http11 bool) *Reply {
	return &Reply{sb: sb, status: 200, http11: http11}
}

// SetStatus implements scripthost.ResponseWriter.
func (r *Reply) SetStatus(code int) {
	r.status = code
}

// StatusCode returns the status currently set on the reply.
func (r *Reply) StatusCode() int {
	return r.status
}

// SetHeader implements scripthost.ResponseWriter.
func (r *Reply) SetHeader(name, value string) {
	r.headers.Set(name, value, true)
}

// GetHeader returns the current value set for name, if any.
func (r *Reply) GetHeader(name string) (string, bool) {
	p, ok := r.headers.Find(name, true)
	if !ok {
		return "", false
	}
	return p.Value, true
}

// DeleteHeader removes any value set for name.
func (r *Reply) DeleteHeader(name string) {
	r.headers.Del(name, true)
}

// EnableDeflate wraps subsequent Write calls in a raw-deflate compressor at
// level (1-9); the caller must have already confirmed Accept-Encoding and
// the MIME type's compressible flag before calling this.
func (r *Reply) EnableDeflate(level int) error {
	dw, err := newDeflateWriter(r.sb, level)
	if err != nil {
		return err
	}
	r.deflate = dw
	r.SetHeader("Content-Encoding", "deflate")
	return nil
}

// writeHeaders emits the status line and header block, flushing immediately
// so chunk framing on the body starts cleanly at the first body byte.
func (r *Reply) writeHeaders() error {
	if r.started {
		return nil
	}
	r.started = true

	reason := Reason(r.status)
	if _, err := fmt.Fprintf(r.sb, "HTTP/%s %d %s\r\n", httpVersionString(r.http11), r.status, reason); err != nil {
		return err
	}

	if _, ok := r.headers.Find("Date", true); !ok {
		r.headers.Set("Date", httptime.Now(), true)
	}
	if r.http11 {
		r.headers.Set("Connection", "close", true)
		if r.sb.Chunked() {
			r.headers.Set("Transfer-Encoding", "chunked", true)
		}
	}

	for _, h := range r.headers {
		if _, err := fmt.Fprintf(r.sb, "%s: %s\r\n", h.Key, h.Value); err != nil {
			return err
		}
	}
	if _, err := r.sb.WriteString("\r\n"); err != nil {
		return err
	}

	return r.sb.Flush()
}

// Write streams body bytes, flushing headers on first call.
func (r *Reply) Write(p []byte) (int, error) {
	if err := r.writeHeaders(); err != nil {
		return 0, err
	}
	if r.deflate != nil {
		return r.deflate.Write(p)
	}
	return r.sb.Write(p)
}

// Close finalizes the reply: flushes headers if no body was ever written,
// flushes any pending deflate output, and writes the terminal chunk marker
// when chunked framing is active.
func (r *Reply) Close() error {
	if err := r.writeHeaders(); err != nil {
		return err
	}
	if r.deflate != nil {
		if err := r.deflate.Close(); err != nil {
			return err
		}
	}
	return r.sb.FlushLast()
}

func httpVersionString(http11 bool) string {
	if http11 {
		return "1.1"
	}
	return "1.0"
}

// RenderErrorPage writes a minimal HTML error body through w, matching the
// original's status/message/optional-filename/footer error page shape.
func RenderErrorPage(w interface{ Write([]byte) (int, error) }, code int, filename string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%d %s</title></head><body>", code, Reason(code))
	fmt.Fprintf(&b, "<h1>%d %s</h1>", code, Reason(code))
	if filename != "" {
		fmt.Fprintf(&b, "<p>%s</p>", filename)
	}
	b.WriteString("<hr><address>emberhttpd</address></body></html>")

	_, err := w.Write([]byte(b.String()))
	return err
}
