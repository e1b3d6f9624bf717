/*
MIT License

Copyright (c) 2019 Nicolas JUHEL

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

// Package logger is a thin, component-scoped wrapper around logrus.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger logs entries tagged with a component name, at or above a minimum
// level set with SetLevel.
type Logger interface {
	SetLevel(l Level)
	Logf(l Level, format string, args ...interface{})
	Log(l Level, msg string)
}

type entry struct {
	name string
	min  Level
	log  *logrus.Logger
}

// New returns a Logger tagged with the given component name, logging to
// stderr at InfoLevel by default.
func New(name string) Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &entry{name: name, min: InfoLevel, log: l}
}

func (e *entry) SetLevel(l Level) {
	e.min = l
	e.log.SetLevel(l.logrus())
}

func (e *entry) Logf(l Level, format string, args ...interface{}) {
	if l == NilLevel || e.min == NilLevel || l > e.min {
		return
	}
	e.log.WithField("component", e.name).Logf(l.logrus(), format, args...)
}

func (e *entry) Log(l Level, msg string) {
	e.Logf(l, "%s", msg)
}
