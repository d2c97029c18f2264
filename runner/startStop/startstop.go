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

// Package startStop implements a restartable background-goroutine runner:
// Start launches a run function and blocks until it signals readiness (via
// a channel stashed in the context it receives) or two seconds pass, Stop
// cancels it and waits for a close function to finish.
package startStop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrStillRunning is returned by Start when the runner is already running.
var ErrStillRunning = errors.New("startStop: runner already running")

type ctxKey string

// StartSignalKey is the context key a run function can use to retrieve the
// channel Start is waiting on, to report readiness (nil) or an early
// failure before blocking in its main loop.
const StartSignalKey ctxKey = "startSignal"

const maxErrors = 32

// StartStop is a restartable background-goroutine lifecycle.
type StartStop interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	IsRunning() bool
	Uptime() time.Duration
	ErrorsLast() error
	ErrorsList() []error
}

type runnable struct {
	run   func(ctx context.Context) error
	close func(ctx context.Context) error

	mu      sync.Mutex
	cancel  context.CancelFunc
	running atomic.Bool
	started atomic.Value // time.Time

	errMu sync.Mutex
	errs  []error
}

// New builds a StartStop driving run in the background on Start and close
// on Stop. Neither function is called until Start is invoked.
func New(run func(ctx context.Context) error, close func(ctx context.Context) error) StartStop {
	return &runnable{run: run, close: close}
}

func (r *runnable) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running.Load() {
		r.mu.Unlock()
		return ErrStillRunning
	}

	if ctx == nil {
		ctx = context.Background()
	}
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.mu.Unlock()

	sig := make(chan error, 1)
	cctx = context.WithValue(cctx, StartSignalKey, sig)

	r.running.Store(true)
	r.started.Store(time.Now())

	go func() {
		err := r.run(cctx)
		r.running.Store(false)
		if err != nil {
			r.addError(err)
		}
		// the run function may have returned before ever signalling
		// readiness (an early failure); make sure Start doesn't hang.
		select {
		case sig <- err:
		default:
		}
	}()

	select {
	case err := <-sig:
		return err
	case <-time.After(2 * time.Second):
		return nil
	}
}

func (r *runnable) Stop(ctx context.Context) error {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	deadline := time.Now().Add(5 * time.Second)
	for r.running.Load() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if r.close == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if err := r.close(ctx); err != nil {
		r.addError(err)
		return err
	}
	return nil
}

func (r *runnable) IsRunning() bool {
	return r.running.Load()
}

func (r *runnable) Uptime() time.Duration {
	if !r.running.Load() {
		return 0
	}
	t, _ := r.started.Load().(time.Time)
	return time.Since(t)
}

func (r *runnable) addError(err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.errs = append(r.errs, err)
	if len(r.errs) > maxErrors {
		r.errs = r.errs[len(r.errs)-maxErrors:]
	}
}

func (r *runnable) ErrorsLast() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	if len(r.errs) == 0 {
		return nil
	}
	return r.errs[len(r.errs)-1]
}

func (r *runnable) ErrorsList() []error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	out := make([]error, len(r.errs))
	copy(out, r.errs)
	return out
}
