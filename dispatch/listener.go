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

// Package dispatch owns the listen/accept loop: it binds the configured
// port on every requested address family, hands each accepted connection
// to a worker in its own goroutine, and tears everything down cleanly on
// signal or on Shutdown.
package dispatch

import (
	"context"
	"fmt"
	"net"
)

// Backlog is the nominal pending-connection queue length. Listen does not
// pass it to the socket; the queue length is the Go runtime's OS default.
const Backlog = 64

// Listeners holds every socket bound for one dispatcher: always IPv4,
// plus IPv6 when requested and available.
type Listeners struct {
	v4 net.Listener
	v6 net.Listener
}

// Listen binds "0.0.0.0:port", and additionally "[::]:port" when ipv6 is
// true. A v6 bind failure is tolerated silently (the returned Listeners
// then hold only the IPv4 socket) so a host with IPv6 disabled at the
// kernel level still serves IPv4.
func Listen(port int, ipv6 bool) (*Listeners, error) {
	lc := net.ListenConfig{Control: reuseAddrControl}

	v4, err := lc.Listen(context.Background(), "tcp4", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return nil, fmt.Errorf("dispatch: binding IPv4 port %d: %w", port, err)
	}

	ls := &Listeners{v4: v4}

	if ipv6 {
		v6, v6err := lc.Listen(context.Background(), "tcp6", fmt.Sprintf("[::]:%d", port))
		if v6err == nil {
			ls.v6 = v6
		}
	}

	return ls, nil
}

// Close closes every bound listener.
func (l *Listeners) Close() error {
	var err error
	if l.v4 != nil {
		if e := l.v4.Close(); e != nil {
			err = e
		}
	}
	if l.v6 != nil {
		if e := l.v6.Close(); e != nil {
			err = e
		}
	}
	return err
}

// Each calls fn once per bound listener (v4 and, when present, v6).
func (l *Listeners) Each(fn func(net.Listener)) {
	if l.v4 != nil {
		fn(l.v4)
	}
	if l.v6 != nil {
		fn(l.v6)
	}
}
