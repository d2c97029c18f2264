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

package pagesrc

// state names the byte-level state machine's positions.
type state int

const (
	stCharOut  state = iota // copying literal text into the open echo() call
	stLt                    // saw '<', deciding whether a tag follows
	stLtQ                   // saw '<?', deciding between stmt/var-echo/comment
	stStmt                  // inside <? ... ?>, copying verbatim
	stStmtQ                 // inside stmt, saw '?', deciding end-of-tag
	stVarEcho               // inside <?= ... ?>
	stVarEchoQ              // saw '?' inside var-echo
	stComment               // inside <?# ... ?>, discarding
	stCommentQ              // saw '?' inside comment
	stSwallowCR             // just closed a tag, eating an optional trailing
	                        // space run then the single following newline
)

// escapeTable holds how a literal byte is rendered inside a single-quoted
// echo('...') argument.
var escapeTable [256]string

func init() {
	for i := 0; i < 256; i++ {
		switch b := byte(i); {
		case b == '\'':
			escapeTable[i] = `\'`
		case b == '"':
			escapeTable[i] = `\"`
		case b == '\\':
			escapeTable[i] = `\\`
		case b == '\n':
			escapeTable[i] = "\\\n"
		case b == '\r':
			escapeTable[i] = "\\r"
		case b == '\t':
			escapeTable[i] = "\\t"
		case b == 0x07:
			escapeTable[i] = "\\a"
		case b == 0x08:
			escapeTable[i] = "\\b"
		case b == 0x0b:
			escapeTable[i] = "\\v"
		case b == 0x0c:
			escapeTable[i] = "\\f"
		case b < 0x20 || b == 0x7f:
			escapeTable[i] = "."
		default:
			escapeTable[i] = string(b)
		}
	}
}
