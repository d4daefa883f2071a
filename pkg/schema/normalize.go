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

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

const typesPrefix = "#/types/"

// CanonicalRef turns an authoring reference name into a schema pointer. Names that already contain a '#' are
// taken to be pointers and are returned unchanged.
func CanonicalRef(name string) string {
	if strings.Contains(name, "#") {
		return name
	}
	return typesPrefix + name
}

// Normalize converts an authoring schema into its normalized form. Every reference that carries an inline
// definition becomes a pure $ref, and the definition is hoisted into the returned dictionary under its original
// name. Bare references are never looked up, so mutually recursive schemas normalize in a single pass.
//
// Dictionaries from sibling branches are merged with TypeDictionary.Merge, so a later definition of a name wins.
func Normalize(s Schema) (TypeSpec, TypeDictionary) {
	switch s := s.(type) {
	case *StringSchema:
		contract.Assertf(s != nil, "nil string schema")
		return TypeSpec{
			Type:        "string",
			Enum:        append([]string(nil), s.Enum...),
			Description: s.Description,
			Default:     s.Default,
		}, TypeDictionary{}
	case *NumberSchema:
		contract.Assertf(s != nil, "nil number schema")
		return TypeSpec{Type: "number", Description: s.Description, Default: s.Default}, TypeDictionary{}
	case *BooleanSchema:
		contract.Assertf(s != nil, "nil boolean schema")
		return TypeSpec{Type: "boolean", Description: s.Description, Default: s.Default}, TypeDictionary{}
	case AnySchema:
		return TypeSpec{Ref: AnyRef}, TypeDictionary{}
	case JSONSchema:
		return TypeSpec{Ref: JSONRef}, TypeDictionary{}
	case *ArraySchema:
		contract.Assertf(s != nil, "nil array schema")
		items, types := Normalize(s.Items)
		return TypeSpec{Type: "array", Items: &items}, types
	case *RefSchema:
		contract.Assertf(s != nil, "nil ref schema")
		ref := TypeSpec{Ref: CanonicalRef(s.Ref)}
		if s.Definition == nil {
			return ref, TypeDictionary{}
		}
		obj, types := NormalizeObject(s.Definition)
		return ref, types.Merge(TypeDictionary{s.Ref: obj})
	case *ObjectSchema:
		obj, types := NormalizeObject(s)
		spec := TypeSpec{
			Type:                 obj.Type,
			Required:             obj.Required,
			Description:          obj.Description,
			AdditionalProperties: obj.AdditionalProperties,
		}
		// An object with no declared properties is a map.
		if obj.Properties.Len() > 0 {
			spec.Properties = obj.Properties
		}
		return spec, types
	case *OneOfSchema:
		contract.Assertf(s != nil, "nil oneOf schema")
		alternatives := make([]TypeSpec, len(s.OneOf))
		types := TypeDictionary{}
		for i, alt := range s.OneOf {
			var altTypes TypeDictionary
			alternatives[i], altTypes = Normalize(alt)
			types = types.Merge(altTypes)
		}
		return TypeSpec{OneOf: alternatives, Discriminator: s.Discriminator}, types
	default:
		contract.Failf("unsupported schema: %s", Label(s))
		return TypeSpec{}, nil
	}
}

// NormalizeObject normalizes every property and the additionalProperties schema of o, returning the normalized
// definition together with everything hoisted out of it.
func NormalizeObject(o *ObjectSchema) (ObjectTypeSpec, TypeDictionary) {
	contract.Requiref(o != nil, "o", "must not be nil")

	properties := orderedmap.New[string, TypeSpec]()
	types := TypeDictionary{}
	if o.Properties != nil {
		for pair := o.Properties.Oldest(); pair != nil; pair = pair.Next() {
			property, propertyTypes := Normalize(pair.Value)
			properties.Set(pair.Key, property)
			types = types.Merge(propertyTypes)
		}
	}

	var additional *TypeSpec
	if o.AdditionalProperties != nil {
		spec, additionalTypes := Normalize(o.AdditionalProperties)
		additional = &spec
		types = types.Merge(additionalTypes)
	}

	return ObjectTypeSpec{
		Type:                 "object",
		Properties:           properties,
		Required:             append([]string{}, o.Required...),
		Description:          o.Description,
		AdditionalProperties: additional,
	}, types
}
