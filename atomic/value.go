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

// Package atomic provides a generic, type-safe wrapper over sync/atomic.Value.
package atomic

import "sync/atomic"

// Value is a generic atomically-swappable container for T.
type Value[T any] interface {
	Load() T
	Store(v T)
	Swap(v T) (old T)
}

type val[T any] struct {
	av atomic.Value
}

type box[T any] struct {
	v T
}

// NewValue returns an empty Value[T]; Load returns the zero value of T
// until the first Store.
func NewValue[T any]() Value[T] {
	return &val[T]{}
}

func (o *val[T]) Load() T {
	i := o.av.Load()
	if i == nil {
		var zero T
		return zero
	}
	return i.(*box[T]).v
}

func (o *val[T]) Store(v T) {
	o.av.Store(&box[T]{v: v})
}

// Swap atomically stores v and returns the previously-stored value,
// using sync/atomic.Value.Swap rather than a separate Load+Store so
// concurrent callers never observe a torn update.
func (o *val[T]) Swap(v T) T {
	old := o.av.Swap(&box[T]{v: v})
	if old == nil {
		var zero T
		return zero
	}
	return old.(*box[T]).v
}
