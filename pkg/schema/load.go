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
	"io"
	"maps"
	"slices"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// PackageDocument is an authoring document: package metadata, named object types and resources.
type PackageDocument struct {
	Info      PackageInfo
	Types     Dictionary
	Resources []ResourceSchema
}

// PackageSpec assembles the document's package schema. The document's named types are included even when no
// resource hoists them, and a definition hoisted from a resource replaces a named type of the same name.
func (doc *PackageDocument) PackageSpec() PackageSpec {
	spec := BuildPackageSpec(doc.Info, doc.Resources)

	declared := make(TypeDictionary, len(doc.Types))
	for _, name := range slices.Sorted(maps.Keys(doc.Types)) {
		obj, hoisted := NormalizeObject(doc.Types[name])
		declared = declared.Merge(hoisted, TypeDictionary{name: obj})
	}
	spec.Types = declared.Merge(spec.Types)
	return spec
}

// Resource returns the resource with the given token.
func (doc *PackageDocument) Resource(name string) (ResourceSchema, bool) {
	for _, r := range doc.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return ResourceSchema{}, false
}

type documentYAML struct {
	Name        string         `yaml:"name"`
	DisplayName string         `yaml:"displayName"`
	Version     string         `yaml:"version"`
	Description string         `yaml:"description"`
	Config      map[string]any `yaml:"config"`
	Provider    struct {
		Description string `yaml:"description"`
	} `yaml:"provider"`
	Types     yaml.Node      `yaml:"types"`
	Resources []resourceYAML `yaml:"resources"`
}

type resourceYAML struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Inputs      yaml.Node `yaml:"inputs"`
	Properties  yaml.Node `yaml:"properties"`
}

// LoadPackage reads a YAML or JSON authoring document. Property order in the document is preserved.
func LoadPackage(r io.Reader) (*PackageDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw documentYAML
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "decoding package document")
	}

	doc := &PackageDocument{
		Info: PackageInfo{
			Name:                raw.Name,
			DisplayName:         raw.DisplayName,
			Version:             raw.Version,
			Description:         raw.Description,
			Config:              raw.Config,
			ProviderDescription: raw.Provider.Description,
		},
		Types: Dictionary{},
	}
	if err := doc.Info.Validate(); err != nil {
		return nil, err
	}

	if raw.Types.Kind != 0 {
		if raw.Types.Kind != yaml.MappingNode {
			return nil, nodeErrorf(&raw.Types, "types must be a mapping")
		}
		for i := 0; i+1 < len(raw.Types.Content); i += 2 {
			name := raw.Types.Content[i].Value
			def, err := ParseObjectSchema(raw.Types.Content[i+1])
			if err != nil {
				return nil, errors.Wrapf(err, "type %s", name)
			}
			if _, has := doc.Types[name]; has {
				return nil, nodeErrorf(raw.Types.Content[i], "duplicate type %s", name)
			}
			doc.Types[name] = def
		}
	}

	seen := map[string]bool{}
	for _, r := range raw.Resources {
		if r.Name == "" {
			return nil, errors.New("resource has no name")
		}
		if seen[r.Name] {
			return nil, errors.Errorf("duplicate resource %s", r.Name)
		}
		seen[r.Name] = true

		if r.Inputs.Kind == 0 {
			return nil, errors.Errorf("resource %s has no inputs", r.Name)
		}
		inputs, err := ParseObjectSchema(&r.Inputs)
		if err != nil {
			return nil, errors.Wrapf(err, "resource %s inputs", r.Name)
		}
		if r.Properties.Kind == 0 {
			return nil, errors.Errorf("resource %s has no properties", r.Name)
		}
		properties, err := ParseObjectSchema(&r.Properties)
		if err != nil {
			return nil, errors.Wrapf(err, "resource %s properties", r.Name)
		}

		doc.Resources = append(doc.Resources, ResourceSchema{
			Name:        r.Name,
			Description: r.Description,
			Inputs:      inputs,
			Properties:  properties,
			Dictionary:  doc.Types,
		})
	}

	return doc, nil
}

var schemaKeys = map[string]bool{
	"type":                 true,
	"enum":                 true,
	"items":                true,
	"$ref":                 true,
	"oneOf":                true,
	"discriminator":        true,
	"properties":           true,
	"required":             true,
	"additionalProperties": true,
	"description":          true,
	"default":              true,
}

// fields indexes the entries of a schema mapping node by key.
func fields(node *yaml.Node) (map[string]*yaml.Node, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return nil, nodeErrorf(node, "expected a schema mapping")
	}
	out := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !schemaKeys[key.Value] {
			return nil, nodeErrorf(key, "unknown schema key %q", key.Value)
		}
		out[key.Value] = node.Content[i+1]
	}
	return out, nil
}

// ParseSchema converts a YAML schema node into a Schema.
func ParseSchema(node *yaml.Node) (Schema, error) {
	f, err := fields(node)
	if err != nil {
		return nil, err
	}

	if alts, ok := f["oneOf"]; ok {
		return parseOneOf(alts, f["discriminator"])
	}

	if ref, ok := f["$ref"]; ok {
		var name string
		if err := ref.Decode(&name); err != nil || name == "" {
			return nil, nodeErrorf(ref, "$ref must be a non-empty string")
		}
		if typ, ok := f["type"]; ok {
			if typ.Kind != yaml.MappingNode {
				return nil, nodeErrorf(typ, "the type of $ref %s must be an object schema", name)
			}
			def, err := ParseObjectSchema(typ)
			if err != nil {
				return nil, errors.Wrapf(err, "$ref %s", name)
			}
			return RefTo(name, def), nil
		}
		switch name {
		case AnyRef:
			return Any(), nil
		case JSONRef:
			return JSON(), nil
		default:
			return Ref(name), nil
		}
	}

	typ, ok := f["type"]
	if !ok {
		if _, hasProperties := f["properties"]; hasProperties {
			return ParseObjectSchema(node)
		}
		return nil, nodeErrorf(node, "schema has no type")
	}

	var description string
	if d, ok := f["description"]; ok {
		if err := d.Decode(&description); err != nil {
			return nil, nodeErrorf(d, "description must be a string")
		}
	}
	var def any
	if d, ok := f["default"]; ok {
		if err := d.Decode(&def); err != nil {
			return nil, errors.Wrapf(err, "line %d: default", d.Line)
		}
	}

	switch typ.Value {
	case "string":
		var enum []string
		if e, ok := f["enum"]; ok {
			if err := e.Decode(&enum); err != nil {
				return nil, nodeErrorf(e, "enum must be a list of strings")
			}
		}
		s := String(enum...)
		s.Description, s.Default = description, def
		return s, nil
	case "number", "integer":
		return &NumberSchema{Description: description, Default: def}, nil
	case "boolean":
		return &BooleanSchema{Description: description, Default: def}, nil
	case "array":
		items, ok := f["items"]
		if !ok {
			return nil, nodeErrorf(typ, "array schema has no items")
		}
		elem, err := ParseSchema(items)
		if err != nil {
			return nil, errors.Wrap(err, "items")
		}
		return Array(elem), nil
	case "object":
		return ParseObjectSchema(node)
	default:
		return nil, nodeErrorf(typ, "unsupported type %q", typ.Value)
	}
}

// ParseObjectSchema converts a YAML object schema node into an ObjectSchema.
func ParseObjectSchema(node *yaml.Node) (*ObjectSchema, error) {
	f, err := fields(node)
	if err != nil {
		return nil, err
	}
	if typ, ok := f["type"]; ok && typ.Value != "object" {
		return nil, nodeErrorf(typ, "expected an object schema, got type %q", typ.Value)
	}

	properties := orderedmap.New[string, Schema]()
	if props, ok := f["properties"]; ok {
		if props.Kind != yaml.MappingNode {
			return nil, nodeErrorf(props, "properties must be a mapping")
		}
		for i := 0; i+1 < len(props.Content); i += 2 {
			name := props.Content[i].Value
			s, err := ParseSchema(props.Content[i+1])
			if err != nil {
				return nil, errors.Wrapf(err, "property %s", name)
			}
			if _, present := properties.Set(name, s); present {
				return nil, nodeErrorf(props.Content[i], "duplicate property %s", name)
			}
		}
	}

	o := &ObjectSchema{Properties: properties, Required: []string{}}
	if req, ok := f["required"]; ok {
		if err := req.Decode(&o.Required); err != nil {
			return nil, nodeErrorf(req, "required must be a list of strings")
		}
	}
	if d, ok := f["description"]; ok {
		if err := d.Decode(&o.Description); err != nil {
			return nil, nodeErrorf(d, "description must be a string")
		}
	}
	if ap, ok := f["additionalProperties"]; ok {
		s, err := ParseSchema(ap)
		if err != nil {
			return nil, errors.Wrap(err, "additionalProperties")
		}
		o.AdditionalProperties = s
	}
	return o, nil
}

func parseOneOf(alts, discriminator *yaml.Node) (Schema, error) {
	if alts.Kind != yaml.SequenceNode {
		return nil, nodeErrorf(alts, "oneOf must be a list of schemas")
	}
	schemas := make([]Schema, 0, len(alts.Content))
	for i, alt := range alts.Content {
		s, err := ParseSchema(alt)
		if err != nil {
			return nil, errors.Wrapf(err, "oneOf[%d]", i)
		}
		if _, nested := s.(*OneOfSchema); nested {
			return nil, nodeErrorf(alt, "oneOf alternatives may not be oneOf schemas")
		}
		schemas = append(schemas, s)
	}
	s := OneOf(schemas...)

	if discriminator != nil {
		var d Discriminator
		if err := discriminator.Decode(&d); err != nil {
			return nil, errors.Wrapf(err, "line %d: discriminator", discriminator.Line)
		}
		if d.PropertyName == "" {
			return nil, nodeErrorf(discriminator, "discriminator has no propertyName")
		}
		s.WithDiscriminator(d.PropertyName, d.Mapping)
	}
	return s, nil
}

func nodeErrorf(node *yaml.Node, format string, args ...any) error {
	return errors.Errorf("line %d: "+format, append([]any{node.Line}, args...)...)
}
