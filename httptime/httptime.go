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

// Package httptime formats and parses the HTTP date grammar this server
// accepts: RFC1123 for emission, plus RFC1123/asctime/RFC850 (2-digit year)
// for parsing of client-supplied dates such as If-Modified-Since.
package httptime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layouts accepted when parsing, tried in this order.
const (
	layoutRFC1123 = "Mon, 02 Jan 2006 15:04:05 GMT"
	layoutAsctime = "Mon Jan  2 15:04:05 2006"
	layoutRFC850  = "Monday, 02-Jan-06 15:04:05 GMT"
)

// ErrMalformed is returned when none of the accepted layouts parse s.
var ErrMalformed = errors.New("httptime: malformed date")

// Format renders t as an RFC1123 HTTP date in GMT, the only format this
// server ever emits.
func Format(t time.Time) string {
	return t.UTC().Format(layoutRFC1123)
}

// Now is a convenience for Format(time.Now()).
func Now() string {
	return Format(time.Now())
}

// Parse accepts RFC1123, asctime, or RFC850 with a 2-digit year (normalized
// to 20xx).
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(layoutRFC1123, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(layoutAsctime, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(layoutRFC850, s); err == nil {
		return normalizeCentury(t), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformed, s)
}

// normalizeCentury treats every two-digit year as 20xx, whatever century
// Go's layoutRFC850 parse picked for it.
func normalizeCentury(t time.Time) time.Time {
	y := t.Year() % 100
	return time.Date(2000+y, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// ParseUnix is a convenience wrapper returning a Unix timestamp, used by
// callers that only need epoch seconds (e.g. If-Modified-Since comparisons).
func ParseUnix(s string) (int64, error) {
	t, err := Parse(s)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// FormatUnix is the inverse convenience for ParseUnix.
func FormatUnix(sec int64) string {
	return Format(time.Unix(sec, 0))
}
