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

package htype

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// registerBuiltins installs the six built-in types named in the spec.
func registerBuiltins() {
	Define("string", 0, nil, nil)

	Define("integer", 0, convertInteger, func(v interface{}) bool {
		_, ok := v.(int64)
		return ok
	})

	Define("json", 0, convertJSON, nil)

	Define("keyword", 0, func(raw string) (interface{}, error) {
		return Keyword(strings.ToLower(raw)), nil
	}, nil)

	Define("list-of-keyword", 0, convertListOfKeyword, nil)

	Define("list-of-integer", 0, convertListOfAny, func(v interface{}) bool {
		items, ok := v.([]interface{})
		if !ok {
			return false
		}
		for _, it := range items {
			if _, ok := it.(float64); !ok {
				return false
			}
		}
		return true
	})
}

// convertInteger parses a leading signed decimal integer, stopping at the
// first non-digit character ("junk-allowed" per spec §4.4).
func convertInteger(raw string) (interface{}, error) {
	s := strings.TrimSpace(raw)
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	var n int64
	saturated := false
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		d := int64(s[i] - '0')
		if n > (math.MaxInt64-d)/10 {
			n = math.MaxInt64
			saturated = true
		} else {
			n = n*10 + d
		}
		i++
	}
	if i == start {
		return nil, fmt.Errorf("htype: %q is not an integer", raw)
	}
	if neg {
		if saturated {
			n = math.MinInt64
		} else {
			n = -n
		}
	}
	return n, nil
}

func convertJSON(raw string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func convertListOfAny(raw string) (interface{}, error) {
	var v []interface{}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func convertListOfKeyword(raw string) (interface{}, error) {
	var raws []interface{}
	if err := json.Unmarshal([]byte(raw), &raws); err != nil {
		return nil, err
	}
	out := make([]Keyword, 0, len(raws))
	for _, e := range raws {
		s, ok := e.(string)
		if !ok {
			return nil, fmt.Errorf("htype: list-of-keyword element %v is not a string", e)
		}
		out = append(out, Keyword(strings.ToLower(s)))
	}
	return out, nil
}
