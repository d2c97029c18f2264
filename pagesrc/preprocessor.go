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

// FillWindow is the nominal size of one generator pull.
const FillWindow = 1024

// Preprocessor turns tagged server-page source into a stream of
// interpreter-ready statements. It is pull-based: each call to Fill
// advances the state machine just far enough to produce up to len(dst)
// bytes, so a caller can interleave evaluation of emitted statements with
// reading more of the page. It behaves like a coroutine-style reader but
// is expressed as a plain iterator carrying its own state.
type Preprocessor struct {
	src   Reader
	st    state
	line  int
	open  bool // an echo('...') literal span is currently open and needs closing
	out   []byte
	done  bool
}

// New builds a Preprocessor pulling from src.
func New(src Reader) *Preprocessor {
	return &Preprocessor{src: src, st: stCharOut, line: 1}
}

// Line returns the current 1-based input line number, kept in sync with the
// source even across swallowed trailing newlines, so an interpreter's own
// error messages point at the right line.
func (p *Preprocessor) Line() int {
	return p.line
}

// Fill advances the state machine, writing up to len(dst) bytes into dst.
// It returns the number of bytes written and whether the source has been
// fully consumed (no more output will ever be produced).
func (p *Preprocessor) Fill(dst []byte) (int, bool) {
	for len(p.out) < len(dst) && !p.done {
		p.step()
	}

	n := copy(dst, p.out)
	p.out = p.out[n:]

	return n, p.done && len(p.out) == 0
}

// pushBack returns b to the source, undoing its line count so it is
// counted once when read again.
func (p *Preprocessor) pushBack(b byte) {
	if b == '\n' {
		p.line--
	}
	p.src.PushBack(b)
}

func (p *Preprocessor) emit(s string) {
	p.out = append(p.out, s...)
}

func (p *Preprocessor) openEcho() {
	if !p.open {
		p.emit("echo('")
		p.open = true
	}
}

func (p *Preprocessor) closeEcho() {
	if p.open {
		p.emit("')\n")
		p.open = false
	}
}

// step runs one byte-at-a-time transition of the state machine.
func (p *Preprocessor) step() {
	b, ok := p.src.NextByte()
	if !ok {
		p.atEOF()
		return
	}

	if b == '\n' {
		p.line++
	}

	switch p.st {
	case stCharOut:
		if b == '<' {
			p.st = stLt
			return
		}
		p.openEcho()
		p.emit(escapeTable[b])

	case stLt:
		if b == '?' {
			p.st = stLtQ
			return
		}
		p.openEcho()
		p.emit(escapeTable['<'])
		p.pushBack(b)
		p.st = stCharOut

	case stLtQ:
		p.closeEcho()
		switch b {
		case '=':
			p.emit("echo(")
			p.st = stVarEcho
		case '#':
			p.st = stComment
		default:
			p.pushBack(b)
			p.st = stStmt
		}

	case stStmt:
		if b == '?' {
			p.st = stStmtQ
			return
		}
		p.out = append(p.out, b)

	case stStmtQ:
		if b == '>' {
			p.emit("\n")
			p.st = stSwallowCR
			return
		}
		p.out = append(p.out, '?', b)
		p.st = stStmt

	case stVarEcho:
		if b == '?' {
			p.st = stVarEchoQ
			return
		}
		p.out = append(p.out, b)

	case stVarEchoQ:
		if b == '>' {
			p.emit(")\n")
			p.st = stSwallowCR
			return
		}
		p.out = append(p.out, '?', b)
		p.st = stVarEcho

	case stComment:
		if b == '?' {
			p.st = stCommentQ
		}

	case stCommentQ:
		if b == '>' {
			p.st = stSwallowCR
			return
		}
		if b != '?' {
			p.st = stComment
		}

	case stSwallowCR:
		if b == ' ' || b == '\t' {
			return
		}
		if b == '\n' {
			p.st = stCharOut
			return
		}
		p.pushBack(b)
		p.st = stCharOut
	}
}

func (p *Preprocessor) atEOF() {
	p.closeEcho()
	p.done = true
}
