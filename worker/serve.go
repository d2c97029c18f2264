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

package worker

import (
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/nabbar/emberhttp/httpmsg"
	"github.com/nabbar/emberhttp/netio"
	"github.com/nabbar/emberhttp/pagesrc"
	"github.com/nabbar/emberhttp/scripthost"
	"github.com/nabbar/emberhttp/wmetrics"
)

// ScriptInterpreter evaluates a preprocessed server page against a Host.
// It is the same contract as scripthost.Interpreter, named locally so
// callers that only need to wire a worker do not need to import
// scripthost directly.
type ScriptInterpreter = scripthost.Interpreter

// Serve handles exactly one accepted connection: parse the request,
// route it, render a reply, and close. Panics inside routing are
// recovered and mapped to a 500 so one malformed request never takes
// the accept loop down with it.
func Serve(conn net.Conn, cfg Config, deps Deps) {
	start := time.Now()

	if deps.Metrics != nil {
		deps.Metrics.ActiveConns.Inc()
		defer deps.Metrics.ActiveConns.Dec()
	}

	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			deps.log("worker: recovered panic: %v", r)
			writeSimpleStatus(conn, false, 500)
		}
	}()

	req, err := httpmsg.ParseRequest(conn, httpmsg.ParseConfig{
		ScriptingEnabled: cfg.ScriptingEnabled,
		RecvTimeoutSec:   int(cfg.RecvTimeout.Seconds()),
	})
	if err != nil {
		respondForParseErr(conn, err)
		return
	}

	if req.Method != httpmsg.MethodGET && req.Method != httpmsg.MethodPOST {
		writeSimpleStatus(conn, req.HTTP11, 405)
		recordRequest(deps, 405, start)
		return
	}

	if err = req.ReadBody(); err != nil {
		code := statusForParseErr(err)
		writeSimpleStatus(conn, req.HTTP11, code)
		recordRequest(deps, code, start)
		return
	}

	sb := netio.NewSendBuffer(conn)
	reply := httpmsg.NewReply(sb, req.HTTP11)
	if cfg.DeflateLevel > 0 && req.Compressible && req.AcceptsDeflate {
		_ = reply.EnableDeflate(cfg.DeflateLevel)
	}

	route(req, reply, cfg, deps)

	_ = reply.Close()
	recordRequest(deps, reply.StatusCode(), start)
}

// recordRequest is a no-op when deps.Metrics is nil, keeping instrumentation
// entirely optional for callers that never construct a Collector.
func recordRequest(deps Deps, status int, start time.Time) {
	if deps.Metrics == nil {
		return
	}
	deps.Metrics.RequestsTotal.WithLabelValues(wmetrics.StatusClass(status)).Inc()
	deps.Metrics.RequestDuration.Observe(time.Since(start).Seconds())
}

// route dispatches a parsed, body-read request to the built-in command
// table, the server-page engine, the embedded-resource provider, or the
// static filesystem, in that priority order.
func route(req *httpmsg.Request, reply *httpmsg.Reply, cfg Config, deps Deps) {
	if cmd, ok := builtinCommands[req.Path]; ok {
		cmd(req, reply, deps)
		return
	}

	if req.Scripting && cfg.ScriptingEnabled {
		serveScriptPage(req, reply, cfg, deps)
		return
	}

	if deps.Resources != nil && deps.Resources.Exists(req.Path) {
		serveEmbedded(req, reply, deps)
		return
	}

	serveStaticFile(req, reply, cfg)
}

func serveScriptPage(req *httpmsg.Request, reply *httpmsg.Reply, cfg Config, deps Deps) {
	full := filepath.Join(cfg.WWWRoot, filepath.FromSlash(req.Path))

	fr, f, err := pagesrc.OpenFile(full)
	if err != nil {
		reply.SetStatus(404)
		_ = httpmsg.RenderErrorPage(reply, 404, req.Path)
		return
	}
	defer f.Close()

	pp := pagesrc.New(fr)
	host := scripthost.New(reply, deps.Sessions, false)

	sid := ""
	if c, ok := req.Cookies.Find("WSESSID", false); ok {
		sid = c.Value
	}
	if sid != "" {
		host.SessionStart(sid)
	}

	if deps.Interpreter == nil {
		reply.SetStatus(500)
		_ = httpmsg.RenderErrorPage(reply, 500, req.Path)
		return
	}
	if err = deps.Interpreter.Eval(pp, host); err != nil {
		deps.log("worker: script evaluation failed for %s: %v", req.Path, err)
	}
}

func serveEmbedded(req *httpmsg.Request, reply *httpmsg.Reply, deps Deps) {
	f, err := deps.Resources.Open(req.Path)
	if err != nil {
		reply.SetStatus(404)
		_ = httpmsg.RenderErrorPage(reply, 404, req.Path)
		return
	}
	defer f.Close()

	reply.SetHeader("Content-Type", req.MimeType)
	buf := make([]byte, 8192)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := reply.Write(buf[:n]); werr != nil {
				return
			}
		}
		if rerr != nil {
			return
		}
	}
}

func serveStaticFile(req *httpmsg.Request, reply *httpmsg.Reply, cfg Config) {
	full := filepath.Join(cfg.WWWRoot, filepath.FromSlash(req.Path))

	info, err := os.Stat(full)
	if err != nil {
		reply.SetStatus(404)
		_ = httpmsg.RenderErrorPage(reply, 404, req.Path)
		return
	}
	if !info.Mode().IsRegular() {
		reply.SetStatus(403)
		_ = httpmsg.RenderErrorPage(reply, 403, req.Path)
		return
	}

	f, err := os.Open(full)
	if err != nil {
		reply.SetStatus(403)
		_ = httpmsg.RenderErrorPage(reply, 403, req.Path)
		return
	}
	defer f.Close()

	reply.SetHeader("Content-Type", req.MimeType)
	buf := make([]byte, 8192)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if _, werr := reply.Write(buf[:n]); werr != nil {
				return
			}
		}
		if rerr != nil {
			return
		}
	}
}

// respondForParseErr maps the httpmsg.ParseError taxonomy to response
// codes. A connection that never produced a usable request line cannot be
// answered on, so transport-level failures just close; everything else
// gets a best-effort status line.
func respondForParseErr(conn net.Conn, err error) {
	var pe *httpmsg.ParseError
	if !asParseError(err, &pe) {
		return
	}
	if pe.Kind == httpmsg.ErrSocketClosed {
		return
	}
	writeSimpleStatus(conn, false, statusForParseErr(err))
}

// statusForParseErr maps the httpmsg.ParseError taxonomy to a response
// status code. Callers that already know the connection is still usable
// (e.g. a body-read failure after a valid request line) use this directly;
// respondForParseErr additionally screens out transport-level failures that
// cannot be answered on at all.
func statusForParseErr(err error) int {
	var pe *httpmsg.ParseError
	if !asParseError(err, &pe) {
		return 400
	}

	switch pe.Kind {
	case httpmsg.ErrSocketTimeout:
		return 408
	case httpmsg.ErrHeaderTooLong:
		return 414
	case httpmsg.ErrBodyTooLarge:
		return 413
	case httpmsg.ErrUnsupportedMethod:
		return 405
	case httpmsg.ErrMissingContentLength:
		return 411
	default:
		return 400
	}
}

func asParseError(err error, target **httpmsg.ParseError) bool {
	if pe, ok := err.(*httpmsg.ParseError); ok {
		*target = pe
		return true
	}
	return false
}

func writeSimpleStatus(conn net.Conn, http11 bool, code int) {
	sb := netio.NewSendBuffer(conn)
	reply := httpmsg.NewReply(sb, http11)
	reply.SetStatus(code)
	_ = httpmsg.RenderErrorPage(reply, code, "")
	_ = reply.Close()
}

// builtinCommands holds the built-in command table, keyed by the request
// path that triggers each one.
var builtinCommands = map[string]func(req *httpmsg.Request, reply *httpmsg.Reply, deps Deps){
	"cgi-bin/status": serveStatusCommand,
}

func serveStatusCommand(req *httpmsg.Request, reply *httpmsg.Reply, deps Deps) {
	reply.SetHeader("Content-Type", "text/plain")
	_, _ = reply.Write([]byte("ok\n"))
}
