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

// Package scripthost exposes the callback surface a server-page script
// evaluates against: echo, response status/headers, and session access. The
// scripting language itself is an out-of-scope collaborator, represented
// here only by the Interpreter boundary interface.
package scripthost

import (
	"fmt"
	"strings"

	"github.com/nabbar/emberhttp/pagesrc"
	"github.com/nabbar/emberhttp/session"
)

// Interpreter is the opaque scripting-language boundary: given preprocessed
// statements and a bound Host, it evaluates them, invoking the Host's
// methods as the script calls echo/http_header/session_start/etc. No
// concrete language is implemented in this repository.
type Interpreter interface {
	Eval(src *pagesrc.Preprocessor, h *Host) error
}

// ResponseWriter is the subset of the reply machinery a Host drives: status
// line, headers and body bytes, flushed lazily on first write.
type ResponseWriter interface {
	SetStatus(code int)
	StatusCode() int
	SetHeader(name, value string)
	GetHeader(name string) (string, bool)
	DeleteHeader(name string)
	Write(p []byte) (int, error)
}

// Host binds one in-flight response and (optionally) one session to the
// callback surface a script evaluates against.
type Host struct {
	resp           ResponseWriter
	store          *session.Store
	sess           *session.Session
	flushed        bool
	errOutput      bool
	contentTypeSet bool
}

// New builds a Host writing into resp, optionally backed by store for
// session operations. errOutput (scripting.error_output_socket) is stored
// on the Host; no Host method writes evaluation errors into the response.
func New(resp ResponseWriter, store *session.Store, errOutput bool) *Host {
	return &Host{resp: resp, store: store, errOutput: errOutput}
}

// Session returns the currently bound session, if any.
func (h *Host) Session() *session.Session {
	return h.sess
}

// Echo writes each argument's string form to the response body, flushing
// the default header set on first call (cache-defeating triple,
// Content-Type: text/html), matching the header-flush-before-first-body-byte
// rule. The Host does not choose the transfer framing; that is left to resp.
func (h *Host) Echo(args ...any) {
	h.ensureFlushed()
	for _, a := range args {
		fmt.Fprint(h.resp, a)
	}
}

func (h *Host) ensureFlushed() {
	if h.flushed {
		return
	}
	h.flushed = true

	h.resp.SetHeader("Cache-Control", "no-cache, no-store, must-revalidate")
	h.resp.SetHeader("Pragma", "no-cache")
	h.resp.SetHeader("Expires", "0")
	if !h.contentTypeSet {
		h.resp.SetHeader("Content-Type", "text/html")
	}
}

// ResponseCode implements http_response_code(code?): passing a non-positive
// code only queries the current pending status; a positive code also sets
// it. Either way, the current (possibly just-updated) status is returned.
func (h *Host) ResponseCode(code int) int {
	if code > 0 {
		h.resp.SetStatus(code)
	}
	return h.resp.StatusCode()
}

// Header implements http_header(name, value?): value == nil queries the
// current header value (nil if unset); a non-nil empty value deletes the
// header; any other value sets it. The header's current value is always
// returned (nil after a delete or when querying an unset header).
func (h *Host) Header(name string, value *string) *string {
	if value == nil {
		v, ok := h.resp.GetHeader(name)
		if !ok {
			return nil
		}
		return &v
	}

	if *value == "" {
		h.resp.DeleteHeader(name)
		return nil
	}

	if strings.EqualFold(name, "Content-Type") {
		h.contentTypeSet = true
	}
	h.resp.SetHeader(name, *value)
	return value
}

// SessionStart starts (or extends) a session bound to this host, using sid
// as the client-presented cookie value (possibly empty). It emits the
// Set-Cookie response header carrying the (possibly new) sid and the
// store's configured Max-Age.
func (h *Host) SessionStart(sid string) string {
	if h.store == nil {
		return ""
	}
	h.sess = h.store.Start(sid)
	h.resp.SetHeader("Set-Cookie", fmt.Sprintf("%s=%s; Max-Age=%d", session.CookieName, h.sess.Sid, h.store.TTLSeconds()))
	return h.sess.Sid
}

// SessionVar is a convenience surface for script-visible session
// attachments keyed by name rather than by the lower-level integer ids
// RegisterData/GetData use internally.
func (h *Host) SessionVar(name string, value *string) *string {
	if h.sess == nil {
		return nil
	}

	id := sessionVarID(name)
	if value != nil {
		if _, ok := h.sess.RegisterData(id, *value, nil); !ok {
			h.sess.UnregisterData(id)
			_, _ = h.sess.RegisterData(id, *value, nil)
		}
		return value
	}

	if slot, ok := h.sess.GetData(id); ok {
		if s, ok2 := slot.Value.(string); ok2 {
			return &s
		}
	}
	return nil
}

// SessionDestroy destroys the host's bound session, if any, and emits a
// Set-Cookie that clears it on the client (empty value, Expires in the
// past).
func (h *Host) SessionDestroy() bool {
	if h.store == nil || h.sess == nil {
		return false
	}
	ok := h.store.Destroy(h.sess)
	h.resp.SetHeader("Set-Cookie", fmt.Sprintf("%s=; Expires=Thu, 01 Jan 1970 00:00:00 GMT", session.CookieName))
	return ok
}

// sessionVarID hashes a script-visible variable name into the integer id
// space session.DataSlot uses, keeping the session package name-agnostic.
func sessionVarID(name string) int {
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return int(h & 0x7fffffff)
}
