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

// Package worker implements the per-connection request lifecycle: parse,
// route, render, flush. One Serve call handles exactly one accepted
// connection end to end and never touches another connection's state.
package worker

import (
	"time"

	"github.com/nabbar/emberhttp/resource"
	"github.com/nabbar/emberhttp/session"
	"github.com/nabbar/emberhttp/wmetrics"
)

// Config is the immutable snapshot every worker call shares. It is built
// once at startup from webconfig.Options and never mutated afterward.
type Config struct {
	WWWRoot          string
	DefaultFile      string
	ScriptingEnabled bool
	DeflateLevel     int
	RecvTimeout      time.Duration
}

// Deps bundles the collaborators a worker needs beyond its Config: the
// shared session store, the embedded-resource provider, and the
// interpreter that evaluates server pages.
type Deps struct {
	Sessions    *session.Store
	Resources   resource.Provider
	Interpreter ScriptInterpreter
	OnLog       func(format string, args ...any)

	// Metrics is optional; a nil Collector disables instrumentation.
	Metrics *wmetrics.Collector
}

func (d Deps) log(format string, args ...any) {
	if d.OnLog != nil {
		d.OnLog(format, args...)
	}
}
