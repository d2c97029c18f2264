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

package kv

import "strings"

// ParsePairs tokenizes s on pairSep, then each token on kvSep, stripping one
// leading space from each token (so from its key) when skipOneSpace is set. This mirrors
// kvlist.c's kv_iter behaviour for both query strings ("&"/"=") and cookie
// headers (";"/"=", one leading space skipped per key).
func ParsePairs(s string, pairSep, kvSep byte, skipOneSpace bool) List {
	var out List
	if s == "" {
		return out
	}

	for _, tok := range strings.Split(s, string(pairSep)) {
		if skipOneSpace {
			tok = strings.TrimPrefix(tok, " ")
		}
		if tok == "" {
			continue
		}

		k, v, found := strings.Cut(tok, string(kvSep))
		if !found {
			out.Add(k, "")
			continue
		}
		out.Add(k, v)
	}

	return out
}

// ParseQuery tokenizes a URL query string ("a=1&b=2") into a List of
// URL-decoded pairs.
func ParseQuery(s string) List {
	raw := ParsePairs(s, '&', '=', false)
	out := make(List, 0, len(raw))
	for _, p := range raw {
		out.Add(URLDecode(p.Key, true), URLDecode(p.Value, true))
	}
	return out
}

// ParseCookies tokenizes a Cookie header ("a=1; b=2") into a List, skipping
// one leading space per key.
func ParseCookies(s string) List {
	return ParsePairs(s, ';', '=', true)
}
