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

// Package schema describes the typed shapes a provider's resources accept and produce. It validates untyped
// values against those shapes and normalizes authoring schemas into the flat form of a Pulumi package schema.
//
// Schemas are immutable once constructed. Validate and Normalize hold no shared state and may be called
// concurrently against the same schema and dictionary.
package schema

import (
	"fmt"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

const (
	// AnyRef is the built-in reference that accepts any value unmodified.
	AnyRef = "pulumi.json#/Any"
	// JSONRef is the built-in reference that accepts any JSON-serializable value.
	JSONRef = "pulumi.json#/Json"
)

// Kind identifies the form of a Schema.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindAny
	KindJSON
	KindArray
	KindRef
	KindObject
	KindOneOf
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindAny:
		return "any"
	case KindJSON:
		return "json"
	case KindArray:
		return "array"
	case KindRef:
		return "ref"
	case KindObject:
		return "object"
	case KindOneOf:
		return "oneOf"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Schema is one of *StringSchema, *NumberSchema, *BooleanSchema, AnySchema, JSONSchema, *ArraySchema, *RefSchema,
// *ObjectSchema or *OneOfSchema.
type Schema interface {
	Kind() Kind

	isSchema()
}

// StringSchema matches a string. If Enum is non-empty the string must be one of its members.
type StringSchema struct {
	Enum []string

	Description string
	Default     any
}

// NumberSchema matches a finite number.
type NumberSchema struct {
	Description string
	Default     any
}

// BooleanSchema matches a boolean.
type BooleanSchema struct {
	Description string
	Default     any
}

// AnySchema matches every value and returns it unmodified.
type AnySchema struct{}

// JSONSchema matches any JSON-serializable value.
type JSONSchema struct{}

// ArraySchema matches a sequence whose elements all match Items.
type ArraySchema struct {
	Items Schema
}

// RefSchema points at a named object schema. A bare reference is resolved against a Dictionary at validation
// time. A reference that carries its own Definition is self-contained.
type RefSchema struct {
	Ref        string
	Definition *ObjectSchema
}

// ObjectSchema matches a keyed map.
//
// Required is declared independently of Properties. A required name that is not a declared property is still
// checked for presence, and is then rejected as an unknown property unless AdditionalProperties is set.
type ObjectSchema struct {
	Properties           *orderedmap.OrderedMap[string, Schema]
	Required             []string
	Description          string
	AdditionalProperties Schema
}

// Discriminator names the property that selects a oneOf alternative. Mapping, if present, maps discriminator
// values to the reference names of the alternatives.
type Discriminator struct {
	PropertyName string            `json:"propertyName" yaml:"propertyName"`
	Mapping      map[string]string `json:"mapping,omitempty" yaml:"mapping,omitempty"`
}

// OneOfSchema matches a value that matches exactly one of its alternatives.
type OneOfSchema struct {
	OneOf         []Schema
	Discriminator *Discriminator
}

// Dictionary resolves bare references during validation. Entries may refer to each other and to themselves.
type Dictionary map[string]*ObjectSchema

func (*StringSchema) Kind() Kind  { return KindString }
func (*NumberSchema) Kind() Kind  { return KindNumber }
func (*BooleanSchema) Kind() Kind { return KindBoolean }
func (AnySchema) Kind() Kind      { return KindAny }
func (JSONSchema) Kind() Kind     { return KindJSON }
func (*ArraySchema) Kind() Kind   { return KindArray }
func (*RefSchema) Kind() Kind     { return KindRef }
func (*ObjectSchema) Kind() Kind  { return KindObject }
func (*OneOfSchema) Kind() Kind   { return KindOneOf }

func (*StringSchema) isSchema()  {}
func (*NumberSchema) isSchema()  {}
func (*BooleanSchema) isSchema() {}
func (AnySchema) isSchema()      {}
func (JSONSchema) isSchema()     {}
func (*ArraySchema) isSchema()   {}
func (*RefSchema) isSchema()     {}
func (*ObjectSchema) isSchema()  {}
func (*OneOfSchema) isSchema()   {}

// String returns a string schema, restricted to the given values if any are supplied.
func String(enum ...string) *StringSchema {
	if len(enum) == 0 {
		return &StringSchema{}
	}
	return &StringSchema{Enum: append([]string(nil), enum...)}
}

// Number returns a number schema.
func Number() *NumberSchema { return &NumberSchema{} }

// Boolean returns a boolean schema.
func Boolean() *BooleanSchema { return &BooleanSchema{} }

// Any returns the built-in Any schema.
func Any() AnySchema { return AnySchema{} }

// JSON returns the built-in Json schema.
func JSON() JSONSchema { return JSONSchema{} }

// Array returns an array schema over items.
func Array(items Schema) *ArraySchema {
	contract.Requiref(!isNil(items), "items", "must not be nil")
	return &ArraySchema{Items: items}
}

// Ref returns a bare reference to name.
func Ref(name string) *RefSchema {
	contract.Requiref(name != "", "name", "must not be empty")
	return &RefSchema{Ref: name}
}

// RefTo returns a reference to name that carries its own definition.
func RefTo(name string, definition *ObjectSchema) *RefSchema {
	contract.Requiref(name != "", "name", "must not be empty")
	contract.Requiref(definition != nil, "definition", "must not be nil")
	return &RefSchema{Ref: name, Definition: definition}
}

// Property is a single named entry of an object schema.
type Property struct {
	Name   string
	Schema Schema
}

// Prop pairs a property name with its schema.
func Prop(name string, s Schema) Property {
	return Property{Name: name, Schema: s}
}

// Object returns an object schema with the given required names and properties, in declaration order.
func Object(required []string, props ...Property) *ObjectSchema {
	properties := orderedmap.New[string, Schema]()
	for _, p := range props {
		contract.Requiref(!isNil(p.Schema), "props", "property %q has no schema", p.Name)
		properties.Set(p.Name, p.Schema)
	}
	return &ObjectSchema{
		Properties: properties,
		Required:   append([]string{}, required...),
	}
}

// WithDescription sets the object's description. It is meant for use while the schema is being built.
func (o *ObjectSchema) WithDescription(description string) *ObjectSchema {
	o.Description = description
	return o
}

// WithAdditionalProperties sets the schema that undeclared keys must match.
func (o *ObjectSchema) WithAdditionalProperties(s Schema) *ObjectSchema {
	o.AdditionalProperties = s
	return o
}

// Property returns the declared schema for name.
func (o *ObjectSchema) Property(name string) (Schema, bool) {
	if o.Properties == nil {
		return nil, false
	}
	return o.Properties.Get(name)
}

// PropertyNames returns the declared property names in declaration order.
func (o *ObjectSchema) PropertyNames() []string {
	if o.Properties == nil {
		return nil
	}
	names := make([]string, 0, o.Properties.Len())
	for pair := o.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// OneOf returns a oneOf schema over the given alternatives. Alternatives may not themselves be oneOf schemas.
func OneOf(alternatives ...Schema) *OneOfSchema {
	for i, alt := range alternatives {
		contract.Requiref(!isNil(alt), "alternatives", "alternative %d is nil", i)
		_, nested := alt.(*OneOfSchema)
		contract.Requiref(!nested, "alternatives", "alternative %d is a nested oneOf", i)
	}
	return &OneOfSchema{OneOf: append([]Schema(nil), alternatives...)}
}

// WithDiscriminator sets the discriminator property and, optionally, its value-to-reference mapping.
func (o *OneOfSchema) WithDiscriminator(propertyName string, mapping map[string]string) *OneOfSchema {
	o.Discriminator = &Discriminator{PropertyName: propertyName, Mapping: mapping}
	return o
}

// Label renders a short description of a schema for use in messages: "oneOf", "ref(<name>)", or the primitive
// tag.
func Label(s Schema) string {
	switch s := s.(type) {
	case *OneOfSchema:
		return "oneOf"
	case *RefSchema:
		if s != nil {
			return "ref(" + s.Ref + ")"
		}
	case AnySchema:
		return "ref(" + AnyRef + ")"
	case JSONSchema:
		return "ref(" + JSONRef + ")"
	}
	if isNil(s) {
		return "unknown-schema"
	}
	return s.Kind().String()
}

// refName returns the reference name an alternative answers to, if any.
func refName(s Schema) (string, bool) {
	switch s := s.(type) {
	case *RefSchema:
		return s.Ref, true
	case AnySchema:
		return AnyRef, true
	case JSONSchema:
		return JSONRef, true
	default:
		return "", false
	}
}

func isNil(s Schema) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
