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

// Package httpmsg implements the raw HTTP/1.0-1.1 request parser and reply
// emitter this server is built around: request-line/header/cookie/body
// parsing, MIME inference, and a status/date/chunked-aware response writer
// with an optional raw-deflate compression pipeline.
package httpmsg

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/nabbar/emberhttp/kv"
	"github.com/nabbar/emberhttp/netio"
)

// Size limits applied while parsing a request.
const (
	MaxHeaderLine     = 4096
	MaxFormFieldBytes = 65536
)

// Method enumerates the request methods this server recognizes.
type Method int

const (
	MethodUnknown Method = iota
	MethodGET
	MethodPOST
	MethodHEAD
	MethodPUT
	MethodDELETE
	MethodLINK
	MethodUNLINK
)

var methodTable = map[string]Method{
	"GET":    MethodGET,
	"POST":   MethodPOST,
	"HEAD":   MethodHEAD,
	"PUT":    MethodPUT,
	"DELETE": MethodDELETE,
	"LINK":   MethodLINK,
	"UNLINK": MethodUNLINK,
}

// ErrKind enumerates the parse-failure taxonomy a caller can switch on.
type ErrKind int

const (
	ErrNone ErrKind = iota
	ErrMalformedRequest
	ErrHeaderTooLong
	ErrBodyTooLarge
	ErrSocketTimeout
	ErrSocketClosed
	ErrUnsupportedMethod
	ErrMissingContentLength
	ErrUnsupportedTransferEncoding
	ErrUnsupportedContentType
)

// ParseError is returned by ParseRequest on any failure.
type ParseError struct {
	Kind ErrKind
	Msg  string
}

func (e *ParseError) Error() string {
	return e.Msg
}

func newParseErr(k ErrKind, msg string) *ParseError {
	return &ParseError{Kind: k, Msg: msg}
}

// Request is the fully-parsed representation of one HTTP request.
type Request struct {
	Method      Method
	RawMethod   string
	Path        string // percent-decoded, leading '/' stripped
	RawPath     string
	Query       kv.List
	HTTP11      bool
	Headers     kv.List
	Cookies     kv.List
	PostVars    kv.List
	Files       []FormFile
	MimeType       string
	Scripting      bool
	Compressible   bool
	AcceptsDeflate bool

	conn net.Conn
	br   *bufio.Reader
}

// ParseConfig controls optional parse behaviour.
type ParseConfig struct {
	ScriptingEnabled bool
	RecvTimeoutSec   int
}

// ParseRequest reads and parses one request from conn.
func ParseRequest(conn net.Conn, cfg ParseConfig) (*Request, error) {
	br := bufio.NewReaderSize(conn, MaxHeaderLine)

	line, err := readLimitedLine(br, conn, MaxHeaderLine)
	if err != nil {
		return nil, err
	}
	if len(line) < 4 {
		return nil, newParseErr(ErrMalformedRequest, "request line too short")
	}

	req := &Request{conn: conn, br: br}

	methodTok, rest, ok := strings.Cut(line, " ")
	if !ok {
		return nil, newParseErr(ErrMalformedRequest, "missing URI")
	}
	req.RawMethod = methodTok
	req.Method = methodTable[strings.ToUpper(methodTok)] // zero value MethodUnknown on no match

	// An absent version token leaves verTok empty, which reads as HTTP/1.0.
	uriTok, verTok, _ := strings.Cut(rest, " ")
	verTok = strings.TrimSuffix(verTok, "\r")
	req.HTTP11 = verTok == "HTTP/1.1"

	req.parseURI(strings.TrimPrefix(uriTok, "/"), cfg)

	if err := req.readHeaders(br); err != nil {
		return nil, err
	}

	if c, ok := req.Headers.Find("Cookie", true); ok {
		req.Cookies = kv.ParseCookies(c.Value)
	}

	if ae, ok := req.Headers.Find("Accept-Encoding", true); ok {
		req.AcceptsDeflate = strings.Contains(strings.ToLower(ae.Value), "deflate")
	}

	inferMime(req)

	return req, nil
}

func (r *Request) parseURI(uri string, cfg ParseConfig) {
	if uri == "" || uri[0] == '?' {
		if cfg.ScriptingEnabled {
			uri = "index.lsp" + uri
		} else {
			uri = "index.html" + uri
		}
	}

	path, query, hasQuery := strings.Cut(uri, "?")
	r.RawPath = path
	r.Path = kv.URLDecode(path, false)

	if hasQuery {
		r.Query = kv.ParseQuery(query)
	}
}

func (r *Request) readHeaders(br *bufio.Reader) error {
	for {
		line, err := readLimitedLine(br, r.conn, MaxHeaderLine)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimPrefix(value, " ")
		r.Headers.Add(strings.TrimSpace(name), value)
	}
}

// readLimitedLine reads one CRLF-terminated line (CRLF stripped), using a
// timed receive budget and failing with ErrHeaderTooLong past maxLen bytes.
func readLimitedLine(br *bufio.Reader, conn net.Conn, maxLen int) (string, error) {
	if err := conn.SetReadDeadline(time.Now().Add(netio.DefaultRecvTimeout)); err != nil {
		return "", err
	}
	defer conn.SetReadDeadline(time.Time{})

	line, err := br.ReadString('\n')
	if err != nil {
		if line == "" {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return "", newParseErr(ErrSocketTimeout, "timed out reading line")
			}
			return "", newParseErr(ErrSocketClosed, "connection closed while reading line")
		}
	}
	if len(line) > maxLen {
		return "", newParseErr(ErrHeaderTooLong, "header line exceeds limit")
	}

	return strings.TrimRight(line, "\r\n"), nil
}

var mimeTable = []struct {
	Ext          string
	Mime         string
	Scripting    bool
	Compressible bool
}{
	{"", "text/html", false, true},
	{".html", "text/html", false, true},
	{".htm", "text/html", false, true},
	{".css", "text/css", false, true},
	{".js", "application/javascript", false, true},
	{".ico", "image/x-icon", false, false},
	{".png", "image/png", false, false},
	{".jpg", "image/jpeg", false, false},
	{".jpeg", "image/jpeg", false, false},
	{".gif", "image/gif", false, false},
	{".tiff", "image/tiff", false, false},
	{".zip", "application/zip", false, false},
	{".tar", "application/x-tar", false, false},
	{".gz", "application/gzip", false, false},
	{".tgz", "application/gzip", false, false},
	{".pdf", "application/pdf", false, false},
	{".swf", "application/x-shockwave-flash", false, false},
	{".c", "text/plain", false, true},
	{".cpp", "text/plain", false, true},
	{".avi", "video/x-msvideo", false, false},
	{".mpeg", "video/mpeg", false, false},
	{".mkv", "video/x-matroska", false, false},
	{".mp3", "audio/mpeg", false, false},
	{".ogg", "audio/ogg", false, false},
	{".doc", "application/msword", false, false},
	{".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", false, false},
	{".xls", "application/vnd.ms-excel", false, false},
	{".txt", "text/plain", false, true},
	{".log", "text/plain", false, true},
	{".json", "application/json", false, true},
	{".lsp", "text/html", true, true},
	{".lua", "text/plain", false, true},
}

// inferMime assigns MimeType/Scripting/Compressible by matching the path's
// extension against mimeTable; no match falls back to entry zero (HTML),
// without marking the fallback as a scripting type.
func inferMime(r *Request) {
	dot := strings.LastIndexByte(r.Path, '.')
	ext := ""
	if dot >= 0 {
		ext = r.Path[dot:]
	}

	for _, e := range mimeTable {
		if e.Ext != "" && strings.EqualFold(e.Ext, ext) {
			r.MimeType = e.Mime
			r.Scripting = e.Scripting
			r.Compressible = e.Compressible
			return
		}
	}

	r.MimeType = mimeTable[0].Mime
	r.Scripting = false
	r.Compressible = mimeTable[0].Compressible
}
