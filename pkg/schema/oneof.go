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
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
)

// oneOf resolves a oneOf schema. A discriminator with a mapping selects a single alternative directly. Otherwise
// every alternative is tried and exactly one must match; a discriminator without a mapping only adds the shape
// checks on the discriminator property before that search.
func (v *validator) oneOf(value any, s *OneOfSchema, path resource.PropertyPath) (any, *ParseError) {
	if d := s.Discriminator; d != nil {
		rec, ok := asRecord(value)
		if !ok {
			return nil, parseErrorf(DiscriminatorShape, path,
				"Expected object for discriminator %q in oneOf", d.PropertyName)
		}
		tag, ok := rec[d.PropertyName]
		if !ok {
			return nil, parseErrorf(DiscriminatorShape, path, "Missing discriminator %q in oneOf", d.PropertyName)
		}
		if d.Mapping != nil {
			return v.discriminated(value, tag, s, path)
		}
	}

	var matches []any
	for _, alt := range s.OneOf {
		out, err := v.validate(value, alt, path)
		if err == nil {
			matches = append(matches, out)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		labels := make([]string, len(s.OneOf))
		for i, alt := range s.OneOf {
			labels[i] = Label(alt)
		}
		return nil, parseErrorf(NoMatchingAlternative, path,
			"No matching oneOf schemas (%s)", strings.Join(labels, ", "))
	default:
		return nil, parseErrorf(AmbiguousAlternatives, path, "Ambiguous oneOf: matched %d schemas", len(matches))
	}
}

func (v *validator) discriminated(value, tag any, s *OneOfSchema, path resource.PropertyPath) (any, *ParseError) {
	d := s.Discriminator
	str, ok := asString(tag)
	if !ok {
		return nil, parseErrorf(DiscriminatorShape, path,
			"Expected discriminator %q to be string in oneOf", d.PropertyName)
	}
	mapped := d.Mapping[str]
	if mapped == "" {
		return nil, parseErrorf(DiscriminatorUnknown, path, "Unknown discriminator %q for oneOf", str)
	}
	for _, alt := range s.OneOf {
		if name, ok := refName(alt); ok && name == mapped {
			return v.validate(value, alt, path)
		}
	}
	return nil, parseErrorf(DiscriminatorTarget, path, "Discriminator mapping %q not found in oneOf", mapped)
}
