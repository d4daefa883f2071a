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

import "math"

// IsJSON reports whether value is JSON-serializable: a string, boolean, nil, finite number, or a sequence or
// string-keyed map of JSON values. Functions, channels, non-finite numbers, Undefined and cyclic values are not.
func IsJSON(value any) bool {
	return isJSON(value, stack{})
}

func isJSON(value any, active stack) bool {
	switch value.(type) {
	case nil, string, bool:
		return true
	case absent:
		return false
	}
	if isNilMap(value) {
		return true
	}
	if n, ok := asNumber(value); ok {
		return !math.IsNaN(n) && !math.IsInf(n, 0)
	}
	if _, ok := asString(value); ok {
		return true
	}
	if _, ok := asBool(value); ok {
		return true
	}

	var elems []any
	if seq, ok := asSequence(value); ok {
		elems = seq
	} else if rec, ok := asRecord(value); ok {
		elems = make([]any, 0, len(rec))
		for _, v := range rec {
			elems = append(elems, v)
		}
	} else {
		return false
	}

	id, ok := active.push(value)
	if !ok {
		return false
	}
	defer active.pop(id)
	for _, e := range elems {
		if !isJSON(e, active) {
			return false
		}
	}
	return true
}
