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
	"fmt"
	"reflect"
	"sort"
)

type absent struct{}

// Undefined marks a map entry that is present but holds no value. Such an entry does not satisfy a required
// property and is skipped when declared properties are validated.
var Undefined any = absent{}

func isUndefined(v any) bool {
	_, ok := v.(absent)
	return ok
}

// kindOf names the kind of an untyped value for use in messages.
func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case absent:
		return "undefined"
	}
	if isNilMap(v) {
		return "null"
	}
	if _, ok := asString(v); ok {
		return "string"
	}
	if _, ok := asNumber(v); ok {
		return "number"
	}
	if _, ok := asBool(v); ok {
		return "boolean"
	}
	if _, ok := asSequence(v); ok {
		return "array"
	}
	if _, ok := asRecord(v); ok {
		return "object"
	}
	if reflect.ValueOf(v).Kind() == reflect.Func {
		return "function"
	}
	return fmt.Sprintf("%T", v)
}

func asString(v any) (string, bool) {
	if s, ok := v.(string); ok {
		return s, true
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func asBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Bool {
		return rv.Bool(), true
	}
	return false, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// asSequence returns the elements of a slice or array value.
func asSequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// isNilMap reports whether v is a typed nil map, which stands for null like an untyped nil.
func isNilMap(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.IsNil()
}

// asRecord returns the entries of a non-nil map keyed by strings.
func asRecord(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, m != nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String || rv.IsNil() {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// valueID identifies a map or slice by the memory it refers to. Slices also carry their length, since a
// shorter re-slice of an ancestor shares its address without containing it.
type valueID struct {
	kind reflect.Kind
	ptr  uintptr
	len  int
}

func identity(v any) (valueID, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return valueID{}, false
		}
	case reflect.Slice:
		if rv.Len() == 0 {
			return valueID{}, false
		}
		return valueID{kind: reflect.Slice, ptr: rv.Pointer(), len: rv.Len()}, true
	default:
		return valueID{}, false
	}
	return valueID{kind: reflect.Map, ptr: rv.Pointer()}, true
}

// stack tracks the maps and slices on the current descent so that cyclic values are detected instead of
// recursed into forever.
type stack map[valueID]struct{}

// push records v as being visited. It returns false if v is already on the stack.
func (s stack) push(v any) (valueID, bool) {
	id, ok := identity(v)
	if !ok {
		return valueID{}, true
	}
	if _, seen := s[id]; seen {
		return id, false
	}
	s[id] = struct{}{}
	return id, true
}

func (s stack) pop(id valueID) {
	delete(s, id)
}
