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
	"slices"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
)

// Validate checks value against s, resolving bare references through dict. On success it returns the validated
// value: primitives unchanged, sequences as []any and objects as map[string]any holding only the validated
// entries. On failure the error is a *ParseError.
func Validate(value any, s Schema, dict Dictionary) (any, error) {
	return ValidateAt(value, s, dict, nil)
}

// ValidateAt is Validate with the failure path rooted at path.
func ValidateAt(value any, s Schema, dict Dictionary, path resource.PropertyPath) (any, error) {
	v := newValidator(dict)
	out, perr := v.validate(value, s, path)
	if perr != nil {
		return nil, perr
	}
	return out, nil
}

// ValidateObject checks value against the object schema s.
func ValidateObject(value any, s *ObjectSchema, dict Dictionary) (map[string]any, error) {
	v := newValidator(dict)
	out, perr := v.object(value, s, nil)
	if perr != nil {
		return nil, perr
	}
	return out, nil
}

// validator is the state of a single validation call.
type validator struct {
	dict   Dictionary
	active stack
}

func newValidator(dict Dictionary) *validator {
	return &validator{dict: dict, active: stack{}}
}

func (v *validator) validate(value any, s Schema, path resource.PropertyPath) (any, *ParseError) {
	if isNil(s) {
		return nil, parseErrorf(UnsupportedSchema, path, "Unsupported schema: %s", Label(s))
	}

	switch s := s.(type) {
	case *OneOfSchema:
		return v.oneOf(value, s, path)
	case *ObjectSchema:
		return v.objectValue(value, s, path)
	case *RefSchema:
		return v.ref(value, s, path)
	case AnySchema:
		return value, nil
	case JSONSchema:
		return v.json(value, s, path)
	case *StringSchema:
		str, ok := asString(value)
		if !ok {
			return nil, parseErrorf(TypeMismatch, path, "Expected string, got %s for schema %s", kindOf(value), Label(s))
		}
		if len(s.Enum) > 0 && !slices.Contains(s.Enum, str) {
			return nil, parseErrorf(EnumMismatch, path, "Expected string enum (%s), got %s for schema %s",
				strings.Join(s.Enum, ", "), str, Label(s))
		}
		return value, nil
	case *NumberSchema:
		n, ok := asNumber(value)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, parseErrorf(TypeMismatch, path, "Expected number, got %s for schema %s", numberKind(value), Label(s))
		}
		return value, nil
	case *BooleanSchema:
		if _, ok := asBool(value); !ok {
			return nil, parseErrorf(TypeMismatch, path, "Expected boolean, got %s for schema %s", kindOf(value), Label(s))
		}
		return value, nil
	case *ArraySchema:
		return v.array(value, s, path)
	default:
		return nil, parseErrorf(UnsupportedSchema, path, "Unsupported schema: %s", Label(s))
	}
}

// numberKind distinguishes non-finite numbers from other kinds in messages.
func numberKind(value any) string {
	if n, ok := asNumber(value); ok {
		switch {
		case math.IsNaN(n):
			return "NaN"
		case math.IsInf(n, 0):
			return "non-finite number"
		}
	}
	return kindOf(value)
}

func (v *validator) objectValue(value any, s *ObjectSchema, path resource.PropertyPath) (any, *ParseError) {
	out, err := v.object(value, s, path)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (v *validator) ref(value any, s *RefSchema, path resource.PropertyPath) (any, *ParseError) {
	if s.Definition != nil {
		return v.objectValue(value, s.Definition, path)
	}

	switch s.Ref {
	case AnyRef:
		return value, nil
	case JSONRef:
		return v.json(value, s, path)
	}

	resolved, ok := v.dict[s.Ref]
	if !ok || resolved == nil {
		return nil, parseErrorf(UnresolvedRef, path, "Unknown $ref %q", s.Ref)
	}
	return v.objectValue(value, resolved, path)
}

func (v *validator) json(value any, s Schema, path resource.PropertyPath) (any, *ParseError) {
	if !IsJSON(value) {
		return nil, parseErrorf(NotJSON, path, "Expected JSON-serializable value, got %s for schema %s",
			kindOf(value), Label(s))
	}
	return value, nil
}

func (v *validator) array(value any, s *ArraySchema, path resource.PropertyPath) (any, *ParseError) {
	elems, ok := asSequence(value)
	if !ok {
		return nil, parseErrorf(TypeMismatch, path, "Expected array, got %s for schema %s", kindOf(value), Label(s))
	}

	id, ok := v.active.push(value)
	if !ok {
		return nil, parseErrorf(CyclicValue, path, "Cyclic value for schema %s", Label(s))
	}
	defer v.active.pop(id)

	out := make([]any, 0, len(elems))
	for i, elem := range elems {
		item, err := v.validate(elem, s.Items, appendPath(path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}
