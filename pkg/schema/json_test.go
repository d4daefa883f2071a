// Copyright 2026, Pulumi Corporation.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package schema

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestIsJSON(t *testing.T) {
	t.Parallel()

	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	cyclicSlice := []any{nil}
	cyclicSlice[0] = cyclicSlice

	shared := []any{1, 2}

	prefix := make([]any, 2)
	prefix[0] = "x"
	prefix[1] = prefix[:1]

	var nilMap map[string]any

	cases := []struct {
		name     string
		value    any
		expected bool
	}{
		{"null", nil, true},
		{"string", "x", true},
		{"bool", false, true},
		{"int", 12, true},
		{"float", 1.25, true},
		{"named", color("blue"), true},
		{"nested", map[string]any{"a": []any{map[string]any{"b": nil}}}, true},
		{"typed slice", []string{"a", "b"}, true},
		{"typed map", map[string]int{"a": 1}, true},
		{"shared subvalue", []any{shared, shared}, true},
		{"re-sliced prefix", prefix, true},
		{"nil map", nilMap, true},
		{"NaN", math.NaN(), false},
		{"infinity", math.Inf(1), false},
		{"undefined", Undefined, false},
		{"function", func() {}, false},
		{"channel", make(chan struct{}), false},
		{"struct", struct{ A int }{1}, false},
		{"int keys", map[int]any{1: "a"}, false},
		{"nested function", map[string]any{"f": func() {}}, false},
		{"cyclic map", cyclic, false},
		{"cyclic slice", cyclicSlice, false},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, c.expected, IsJSON(c.value))
		})
	}
}

func TestIsJSONNumbers(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Float64().Draw(t, "n")
		expected := !math.IsNaN(n) && !math.IsInf(n, 0)
		if IsJSON(n) != expected {
			t.Fatalf("IsJSON(%v) = %v", n, !expected)
		}
		if IsJSON([]any{"x", n}) != expected {
			t.Fatalf("IsJSON([x, %v]) = %v", n, !expected)
		}
	})
}
