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

package dispatch

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/nabbar/emberhttp/wregistry"
)

// Handler serves one accepted connection. worker.Serve satisfies this.
type Handler func(conn net.Conn)

// Dispatcher owns the bound listeners and the accept loops feeding a
// Handler, tracking in-flight connections via a wregistry.Registry so
// Shutdown can wait for them to drain.
type Dispatcher struct {
	listeners *Listeners
	registry  *wregistry.Registry
	handler   Handler
	onLog     func(format string, args ...any)

	nextID uint64
	wg     sync.WaitGroup
}

// New builds a Dispatcher bound to ls, serving every accepted connection
// with handler.
func New(ls *Listeners, handler Handler, onLog func(format string, args ...any)) *Dispatcher {
	return &Dispatcher{
		listeners: ls,
		registry:  wregistry.New(),
		handler:   handler,
		onLog:     onLog,
	}
}

func (d *Dispatcher) log(format string, args ...any) {
	if d.onLog != nil {
		d.onLog(format, args...)
	}
}

// Run starts one accept loop per bound listener and blocks until ctx is
// canceled, at which point every listener is closed and Run waits (up to
// its own internal bound, see Registry.Shutdown) for in-flight
// connections to finish.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.listeners.Each(func(l net.Listener) {
		d.wg.Add(1)
		go d.acceptLoop(l)
	})

	<-ctx.Done()

	err := d.listeners.Close()
	d.wg.Wait()
	if serr := d.registry.Shutdown(context.Background()); err == nil {
		err = serr
	}
	return err
}

func (d *Dispatcher) acceptLoop(l net.Listener) {
	defer d.wg.Done()

	for {
		conn, err := l.Accept()
		if err != nil {
			if isClosedError(err) {
				return
			}
			d.log("dispatch: accept error on %s: %v", l.Addr(), err)
			continue
		}

		handle := atomic.AddUint64(&d.nextID, 1)
		d.registry.Register(handle, time.Now())
		go func() {
			defer d.registry.Unregister(handle)
			d.handler(conn)
		}()
	}
}

// Shutdown waits for every registered in-flight connection to unregister,
// bounded by ctx's deadline (or Registry's own default if ctx carries
// none).
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	return d.registry.Shutdown(ctx)
}

func isClosedError(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

// WaitForSignal blocks until SIGINT or SIGTERM arrives (or parent is
// canceled), then returns — the caller cancels its own context in
// response, triggering Run's shutdown path. SIGABRT is POSIX-only and is
// registered separately, see signal_unix.go.
func WaitForSignal(parent context.Context) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	registerPlatformSignals(ch)
	defer signal.Stop(ch)

	select {
	case <-ch:
	case <-parent.Done():
	}
}
