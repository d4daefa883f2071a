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
	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
)

// object matches a keyed map against s. Required names are checked for presence first, then declared properties
// are validated in declaration order, then every remaining key is validated against additionalProperties or
// rejected. Remaining keys are visited in sorted order and the first failure is returned.
func (v *validator) object(value any, s *ObjectSchema, path resource.PropertyPath) (map[string]any, *ParseError) {
	if s == nil {
		return nil, parseErrorf(UnsupportedSchema, path, "Unsupported schema: %s", Label(nil))
	}

	rec, ok := asRecord(value)
	if !ok {
		return nil, parseErrorf(TypeMismatch, path, "Expected object for schema ref(%s), got %s", path, kindOf(value))
	}

	id, ok := v.active.push(value)
	if !ok {
		return nil, parseErrorf(CyclicValue, path, "Cyclic value for schema ref(%s)", path)
	}
	defer v.active.pop(id)

	for _, name := range s.Required {
		if x, has := rec[name]; !has || isUndefined(x) {
			return nil, parseErrorf(MissingProperty, path,
				"Missing required property %q for schema ref(%s)", name, path)
		}
	}

	out := make(map[string]any, len(rec))
	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			x, has := rec[pair.Key]
			if !has || isUndefined(x) {
				continue
			}
			parsed, err := v.validate(x, pair.Value, appendPath(path, pair.Key))
			if err != nil {
				return nil, err
			}
			out[pair.Key] = parsed
		}
	}

	for _, key := range sortedKeys(rec) {
		if _, declared := s.Property(key); declared {
			continue
		}
		if s.AdditionalProperties == nil {
			return nil, parseErrorf(UnknownProperty, appendPath(path, key),
				"Unknown property %q for schema ref(%s)", key, path)
		}
		parsed, err := v.validate(rec[key], s.AdditionalProperties, appendPath(path, key))
		if err != nil {
			return nil, err
		}
		out[key] = parsed
	}

	return out, nil
}
