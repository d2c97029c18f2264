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

// Package semaphore bounds the number of concurrent background workers a
// periodic callback may have in flight, optionally rendering a terminal
// progress bar of cumulative worker starts.
package semaphore

import (
	"context"
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	xsem "golang.org/x/sync/semaphore"
)

// Semaphore bounds concurrent workers spawned from a single caller.
type Semaphore interface {
	// NewWorkerTry acquires one worker slot without blocking, returning
	// false immediately if the limit has already been reached.
	NewWorkerTry() bool

	// NewWorker blocks until a worker slot is available or ctx is done.
	NewWorker(ctx context.Context) error

	// DeferWorker releases one worker slot; pair with a successful
	// NewWorkerTry/NewWorker, typically via defer.
	DeferWorker()

	// DeferMain blocks until every outstanding worker slot has been
	// released, then tears down the progress bar if one was requested.
	DeferMain()
}

type sema struct {
	w   *xsem.Weighted
	max int64

	started atomic.Int64

	prog *mpb.Progress
	bar  *mpb.Bar
}

// New builds a Semaphore bounding concurrency to max simultaneous workers.
// max <= 0 means unlimited (NewWorkerTry always succeeds, NewWorker never
// blocks). When withBar is true, each acquired worker also advances a
// terminal progress bar tracking cumulative worker starts.
func New(ctx context.Context, max int, withBar bool) Semaphore {
	if ctx == nil {
		ctx = context.Background()
	}

	n := int64(max)
	if n <= 0 {
		n = 1 << 30
	}

	s := &sema{w: xsem.NewWeighted(n), max: n}

	if withBar {
		s.prog = mpb.NewWithContext(ctx)
		s.bar = s.prog.AddBar(n)
	}

	return s
}

func (s *sema) NewWorkerTry() bool {
	if !s.w.TryAcquire(1) {
		return false
	}
	s.onAcquire()
	return true
}

func (s *sema) NewWorker(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.w.Acquire(ctx, 1); err != nil {
		return err
	}
	s.onAcquire()
	return nil
}

func (s *sema) onAcquire() {
	n := s.started.Add(1)
	if s.bar != nil {
		s.bar.SetCurrent(n % (s.max + 1))
	}
}

func (s *sema) DeferWorker() {
	s.w.Release(1)
}

func (s *sema) DeferMain() {
	_ = s.w.Acquire(context.Background(), s.max)
	if s.prog != nil {
		s.prog.Wait()
	}
}
