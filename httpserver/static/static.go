/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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

// Package static registers one handler.Entry per regular file under a
// filesystem root, the "static file collaborator" of spec §4.9 (an
// expansion of the external-collaborator note in §6). Every generated
// handler re-reads its file from disk on each request.
package static

import (
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/sabouaram/evloop/handler"
)

// PathSecurity bounds what the walker will publish, grounded on the
// teacher static package's path-security configuration (dot-files,
// traversal, blocked name patterns).
type PathSecurity struct {
	AllowDotFiles   bool
	BlockedPatterns []string
}

// DefaultPathSecurity blocks dot-files and the common secret-bearing
// directory names, matching the teacher's DefaultPathSecurityConfig.
func DefaultPathSecurity() PathSecurity {
	return PathSecurity{
		AllowDotFiles:   false,
		BlockedPatterns: []string{".git", ".env", "node_modules"},
	}
}

func (p PathSecurity) isSafe(relPath string) bool {
	for _, part := range strings.Split(relPath, string(filepath.Separator)) {
		if part == ".." {
			return false
		}
		if !p.AllowDotFiles && strings.HasPrefix(part, ".") && part != "." {
			return false
		}
		for _, blocked := range p.BlockedPatterns {
			if part == blocked {
				return false
			}
		}
	}
	return true
}

// Register walks root and registers a handler.Entry under reg for every
// regular file found, with stem prepended to the file's root-relative
// path to form its URI. Files rejected by sec are skipped entirely
// (never registered), rather than registered and then 403'd at request
// time, since this core's handler signature has no dedicated "forbidden"
// outcome.
func Register(reg *handler.Registry, root, stem string, sec PathSecurity) error {
	return fs.WalkDir(os.DirFS(root), ".", func(relPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !sec.isSafe(relPath) {
			return nil
		}

		uri := joinURI(stem, relPath)
		diskPath := filepath.Join(root, filepath.FromSlash(relPath))
		contentType := mimeFor(relPath)

		reg.Register(handler.Closing(uri, contentType, nil, fileBody(diskPath)))
		return nil
	})
}

// fileBody reads diskPath fresh on every call, so edits to the file on
// disk are visible without restarting the server.
func fileBody(diskPath string) handler.Body {
	return func(env *handler.Env) (interface{}, error) {
		return os.ReadFile(diskPath)
	}
}

func mimeFor(relPath string) string {
	if ct := mime.TypeByExtension(filepath.Ext(relPath)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func joinURI(stem, relPath string) string {
	stem = strings.TrimSuffix(stem, "/")
	rel := filepath.ToSlash(relPath)
	if stem == "" || stem == "/" {
		return "/" + rel
	}
	return stem + "/" + rel
}
