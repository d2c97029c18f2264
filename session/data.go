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

package session

// RegisterData attaches value under id, prepending it to the session's
// attachment list. It fails (returns nil, false) if an entry with the same
// id is already registered; callers that want to replace a slot must
// UnregisterData it first. destructor, if non-nil, is invoked with value
// when the slot is removed (by UnregisterData or by the session being
// freed).
func (s *Session) RegisterData(id int, value any, destructor func(any)) (*DataSlot, bool) {
	s.n.dataMu.Lock()
	defer s.n.dataMu.Unlock()

	for _, d := range s.n.data {
		if d.ID == id {
			return nil, false
		}
	}

	slot := &DataSlot{ID: id, Value: value, free: destructor}
	s.n.data = append([]*DataSlot{slot}, s.n.data...)

	return slot, true
}

// GetData returns the first attachment registered under id. It takes the
// session's attachment mutex, so lookups are serialized against concurrent
// RegisterData/UnregisterData calls on the same session.
func (s *Session) GetData(id int) (*DataSlot, bool) {
	s.n.dataMu.Lock()
	defer s.n.dataMu.Unlock()

	for _, d := range s.n.data {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// UnregisterData removes the first attachment registered under id, invoking
// its destructor if one was supplied.
func (s *Session) UnregisterData(id int) bool {
	s.n.dataMu.Lock()
	defer s.n.dataMu.Unlock()

	for i, d := range s.n.data {
		if d.ID == id {
			s.n.data = append(s.n.data[:i], s.n.data[i+1:]...)
			if d.free != nil {
				d.free(d.Value)
			}
			return true
		}
	}
	return false
}
