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

// Package session implements the server-side session store: opaque sid
// handles, a two-phase live/tombstone reclamation sweep, and a per-session
// attachment list with destructors, guarded by a writer-preference RW-lock.
package session

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nabbar/emberhttp/rwpref"
)

// CookieName is the name of the cookie carrying the session id.
const CookieName = "WSESSID"

// tombstoneGrace is the extra lifetime granted to an expired session before
// it is actually freed.
const tombstoneGrace = 1200 * time.Second

// cleanupEvery triggers a sweep after this many Start calls even when no
// expired session was observed.
const cleanupEvery = 1024

// maxReaders bounds concurrent readers of the live list.
const maxReaders = 20

// DataSlot is one attachment registered against a session.
type DataSlot struct {
	ID    int
	Value any
	free  func(any)
}

type node struct {
	handle     uint64
	secret     uint32
	validUntil time.Time

	dataMu sync.Mutex
	data   []*DataSlot
}

// Session is a handle returned to callers; it carries the sid string used
// in the cookie and a reference to the backing node for data operations.
type Session struct {
	Sid string
	n   *node
}

// Store is the process-wide session table.
type Store struct {
	ttl time.Duration

	lock   *rwpref.Lock
	live   []*node
	nextID uint64

	tombMu sync.Mutex
	tomb   []*node

	cleanupCounter int
	rng            *rand.Rand
}

// New builds an empty Store. ttl is the idle lifetime granted to a session
// on every successful Start.
func New(ttl time.Duration) *Store {
	var seed [32]byte
	_, _ = crand.Read(seed[:])

	return &Store{
		ttl:  ttl,
		lock: rwpref.New(maxReaders),
		rng:  rand.New(rand.NewChaCha8(seed)),
	}
}

// Close frees every live and tombstoned session, invoking each attachment's
// destructor.
func (s *Store) Close() {
	s.lock.Lock()
	live := s.live
	s.live = nil
	s.lock.Unlock()

	s.tombMu.Lock()
	tomb := s.tomb
	s.tomb = nil
	s.tombMu.Unlock()

	for _, n := range live {
		freeNode(n)
	}
	for _, n := range tomb {
		freeNode(n)
	}
}

func freeNode(n *node) {
	n.dataMu.Lock()
	defer n.dataMu.Unlock()
	for _, d := range n.data {
		if d.free != nil {
			d.free(d.Value)
		}
	}
	n.data = nil
}

// Start either extends a matching live session from a client-presented sid
// (which may be empty or stale) or allocates a new one, returning a Session
// wrapping the (possibly new) sid.
func (s *Store) Start(sid string) *Session {
	if h, secret, ok := parseSid(sid); ok {
		if n := s.extend(h, secret); n != nil {
			return &Session{Sid: formatSid(h, n.secret), n: n}
		}
	} else {
		// Handle 0 is never issued, so this only counts the call and
		// scans for expired entries.
		s.extend(0, 0)
	}

	return s.allocate()
}

// extend scans the live list under the read lock, extending validUntil on a
// match. It returns the matching node, or nil. Any expired entry observed
// along the way, or the cleanup counter crossing cleanupEvery, triggers a
// cleanup sweep.
func (s *Store) extend(handle uint64, secret uint32) *node {
	s.lock.RLock()
	var found *node
	sawExpired := false
	now := time.Now()

	for _, n := range s.live {
		if n.validUntil.Before(now) {
			sawExpired = true
			continue
		}
		if n.handle == handle && n.secret == secret {
			n.validUntil = now.Add(s.ttl)
			found = n
		}
	}
	s.lock.RUnlock()

	s.lock.Lock()
	s.cleanupCounter++
	trigger := sawExpired || s.cleanupCounter >= cleanupEvery
	if trigger {
		s.cleanupCounter = 0
	}
	s.lock.Unlock()

	if trigger {
		s.cleanup()
	}

	return found
}

func (s *Store) allocate() *Session {
	n := &node{
		handle:     s.newHandle(),
		secret:     s.newSecret(),
		validUntil: time.Now().Add(s.ttl),
	}

	s.lock.Lock()
	s.live = append([]*node{n}, s.live...)
	s.lock.Unlock()

	return &Session{Sid: formatSid(n.handle, n.secret), n: n}
}

func (s *Store) newHandle() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.nextID++
	return s.nextID
}

// newSecret draws from a Store-lifetime RNG seeded once from crypto/rand,
// rather than reseeding on every call.
func (s *Store) newSecret() uint32 {
	return uint32(s.rng.IntN(99999998) + 1)
}

// cleanup promotes expired live sessions to the tombstone list (phase one,
// under the write lock), then frees tombstones whose extended expiry has
// passed (phase two, under the tombstone mutex only). Keeping live and
// tombstoned entries in two distinct slices keeps the two phases
// unambiguous.
func (s *Store) cleanup() {
	now := time.Now()

	s.lock.Lock()
	keep := s.live[:0]
	var expired []*node
	for _, n := range s.live {
		if n.validUntil.Before(now) {
			n.validUntil = now.Add(tombstoneGrace)
			expired = append(expired, n)
		} else {
			keep = append(keep, n)
		}
	}
	s.live = keep
	s.lock.Unlock()

	if len(expired) > 0 {
		s.tombMu.Lock()
		s.tomb = append(s.tomb, expired...)
		s.tombMu.Unlock()
	}

	s.tombMu.Lock()
	remain := s.tomb[:0]
	var freed []*node
	for _, n := range s.tomb {
		if n.validUntil.Before(now) {
			freed = append(freed, n)
		} else {
			remain = append(remain, n)
		}
	}
	s.tomb = remain
	s.tombMu.Unlock()

	for _, n := range freed {
		freeNode(n)
	}
}

// Destroy marks a session invalid immediately: a write-lock scan for the
// matching node, expiring it in place.
func (s *Store) Destroy(sess *Session) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, n := range s.live {
		if n == sess.n {
			n.validUntil = time.Time{}
			return true
		}
	}
	return false
}

// TTLSeconds returns the idle lifetime granted to a session on Start, in
// whole seconds, for callers that need it to build a Max-Age cookie
// attribute.
func (s *Store) TTLSeconds() int {
	return int(s.ttl.Seconds())
}

// Count returns the number of sessions that have not yet expired. Expired
// entries remain in the live list until the next cleanup sweep promotes
// them to the tombstone list, so Count filters by validUntil rather than
// returning len(live) directly.
func (s *Store) Count() int {
	s.lock.RLock()
	defer s.lock.RUnlock()

	now := time.Now()
	n := 0
	for _, node := range s.live {
		if node.validUntil.After(now) {
			n++
		}
	}
	return n
}

func parseSid(sid string) (handle uint64, secret uint32, ok bool) {
	if len(sid) != 24 {
		return 0, 0, false
	}

	h, err := parseHex16(sid[:16])
	if err != nil {
		return 0, 0, false
	}
	sec, err := parseDecimal8(sid[16:])
	if err != nil {
		return 0, 0, false
	}

	return h, uint32(sec), true
}

func formatSid(handle uint64, secret uint32) string {
	return fmt.Sprintf("%016X%08d", handle, secret)
}

func parseHex16(s string) (uint64, error) {
	var v uint64
	_, err := fmt.Sscanf(s, "%016x", &v)
	return v, err
}

func parseDecimal8(s string) (uint32, error) {
	var v uint32
	_, err := fmt.Sscanf(s, "%08d", &v)
	return v, err
}
