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

// Package kv implements the ordered, duplicate-key-permitting attribute list
// shared by headers, cookies, query strings, form bodies and session
// variables, the Go replacement for an intrusive key/value linked list.
package kv

import "strings"

// Pair is one key/value entry of a List, in wire/insertion order.
type Pair struct {
	Key   string
	Value string
}

// List is an ordered collection of Pair values. Duplicate keys are allowed;
// Find and Values always consider entries in insertion order.
type List []Pair

// Add appends a new pair, even if key already exists.
func (l *List) Add(key, value string) {
	*l = append(*l, Pair{Key: key, Value: value})
}

// Set replaces the first pair matching key (fold controls case sensitivity),
// or appends a new one when no match exists.
func (l *List) Set(key, value string, fold bool) {
	for i := range *l {
		if sameKey((*l)[i].Key, key, fold) {
			(*l)[i].Value = value
			return
		}
	}
	l.Add(key, value)
}

// Del removes every pair matching key.
func (l *List) Del(key string, fold bool) {
	out := (*l)[:0]
	for _, p := range *l {
		if !sameKey(p.Key, key, fold) {
			out = append(out, p)
		}
	}
	*l = out
}

// Find returns the first pair matching key, in insertion order.
func (l List) Find(key string, fold bool) (Pair, bool) {
	for _, p := range l {
		if sameKey(p.Key, key, fold) {
			return p, true
		}
	}
	return Pair{}, false
}

// Values returns every value for key, in insertion order.
func (l List) Values(key string, fold bool) []string {
	var res []string
	for _, p := range l {
		if sameKey(p.Key, key, fold) {
			res = append(res, p.Value)
		}
	}
	return res
}

// Len returns the number of pairs.
func (l List) Len() int {
	return len(l)
}

func sameKey(a, b string, fold bool) bool {
	if fold {
		return strings.EqualFold(a, b)
	}
	return a == b
}
