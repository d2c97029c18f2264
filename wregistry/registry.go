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

// Package wregistry tracks the set of live connection workers so a
// dispatcher can wait for them to drain on shutdown.
package wregistry

import (
	"context"
	"sync"
	"time"
)

// pollInterval is how often Shutdown re-checks the live count while waiting
// for workers to drain.
const pollInterval = 333 * time.Millisecond

// Entry describes one tracked worker.
type Entry struct {
	ID    uint64
	Start time.Time
}

// Registry is a mutex-guarded set of live workers, kept consistent with its
// own Count invariant (Count always equals the number of registered IDs).
type Registry struct {
	mu   sync.Mutex
	live map[uint64]Entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{live: make(map[uint64]Entry)}
}

// Register adds id to the live set with the given start time.
func (r *Registry) Register(id uint64, start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[id] = Entry{ID: id, Start: start}
}

// Unregister removes id from the live set.
func (r *Registry) Unregister(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, id)
}

// Count returns the number of currently live workers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Snapshot returns a copy of the currently live entries.
func (r *Registry) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, 0, len(r.live))
	for _, e := range r.live {
		out = append(out, e)
	}
	return out
}

// Shutdown polls every pollInterval, up to ctx's deadline (or 10s if ctx
// carries none), until the registry drains to zero. It returns nil once
// drained, or ctx.Err() if the wait times out first.
func (r *Registry) Shutdown(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if r.Count() == 0 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
