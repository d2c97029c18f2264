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

// Package resource is the embedded-resource lookup collaborator: a small
// seam in front of an embed.FS so the worker can serve built-in assets
// (default error pages, a favicon, etc.) the same way it serves files from
// disk, without committing to where those assets come from.
package resource

import (
	"embed"
	"io/fs"
)

// Provider looks up an embedded resource by its server-visible path.
type Provider interface {
	Open(path string) (fs.File, error)
	Exists(path string) bool
}

// FSProvider adapts an embed.FS (or any fs.FS) rooted at root to Provider.
type FSProvider struct {
	fsys fs.FS
	root string
}

// NewFSProvider builds a Provider serving files under root inside fsys.
func NewFSProvider(fsys embed.FS, root string) *FSProvider {
	return &FSProvider{fsys: fsys, root: root}
}

func (p *FSProvider) join(path string) string {
	if p.root == "" {
		return path
	}
	return p.root + "/" + path
}

func (p *FSProvider) Open(path string) (fs.File, error) {
	return p.fsys.Open(p.join(path))
}

func (p *FSProvider) Exists(path string) bool {
	f, err := p.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}

// Disabled is a Provider with no embedded assets, used when the server is
// configured with embedded-resource support turned off.
type Disabled struct{}

func (Disabled) Open(path string) (fs.File, error) { return nil, fs.ErrNotExist }
func (Disabled) Exists(path string) bool           { return false }
