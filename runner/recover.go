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

// Package runner provides the background-goroutine lifecycle primitives
// shared by the logger hooks and the io aggregator: panic recovery logging
// and (in the startStop subpackage) a restartable runner.
package runner

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
)

// RecoveryCaller logs a panic recovered from a background goroutine along
// with its stack trace, tagging the line with component so the offending
// call site can be identified. A nil recovered value is a no-op, matching
// the common `if r := recover(); r != nil { RecoveryCaller(...) }` call
// site shape used throughout the logger hooks and the aggregator.
func RecoveryCaller(component string, recovered any, context ...string) {
	if recovered == nil {
		return
	}

	msg := fmt.Sprintf("panic recovered in %s: %v", component, recovered)
	if len(context) > 0 {
		msg += " (" + strings.Join(context, "; ") + ")"
	}

	fmt.Fprintln(os.Stderr, msg)
	fmt.Fprintln(os.Stderr, string(debug.Stack()))
}
