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

// Package rwpref implements a writer-preference reader/writer lock with a
// bounded reader count: once a writer is waiting, no new reader is admitted
// until that writer has run.
package rwpref

import "sync"

// Lock is a writer-preference RW-lock bounded to maxReaders concurrent
// readers.
//
// It is built on a mutex-guarded counting pair (active readers, waiting
// writers) plus two condition variables: writers signal their presence
// before trying to acquire exclusivity, which blocks any reader that has
// not already been admitted, and readers are additionally capped at
// maxReaders concurrent holders.
type Lock struct {
	mu   sync.Mutex
	rc   *sync.Cond
	wc   *sync.Cond
	max  int
	rd   int
	wWaiting int
	wActive  bool
}

// New builds a Lock that admits at most maxReaders concurrent readers.
func New(maxReaders int) *Lock {
	if maxReaders <= 0 {
		maxReaders = 1
	}

	l := &Lock{max: maxReaders}
	l.rc = sync.NewCond(&l.mu)
	l.wc = sync.NewCond(&l.mu)
	return l
}

// RLock blocks while a writer is active or waiting, and while the reader
// cap has been reached.
func (l *Lock) RLock() {
	l.mu.Lock()
	for l.wActive || l.wWaiting > 0 || l.rd >= l.max {
		l.rc.Wait()
	}
	l.rd++
	l.mu.Unlock()
}

// RUnlock releases a read token.
func (l *Lock) RUnlock() {
	l.mu.Lock()
	l.rd--
	l.rc.Signal()
	if l.rd == 0 {
		l.wc.Signal()
	}
	l.mu.Unlock()
}

// Lock acquires exclusive access, blocking until no writer and no reader is
// active. A waiting writer immediately stops new readers from being
// admitted, giving writers preference over a continuous stream of readers.
func (l *Lock) Lock() {
	l.mu.Lock()
	l.wWaiting++
	for l.wActive || l.rd > 0 {
		l.wc.Wait()
	}
	l.wWaiting--
	l.wActive = true
	l.mu.Unlock()
}

// Unlock releases exclusive access.
func (l *Lock) Unlock() {
	l.mu.Lock()
	l.wActive = false
	l.wc.Signal()
	l.rc.Broadcast()
	l.mu.Unlock()
}
