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
	"bytes"

	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// TypeSpec is the serializable, normalized form of a Schema. Object definitions only appear inline when they were
// authored inline; named definitions are replaced by a $ref into the package's types.
type TypeSpec struct {
	Type          string         `json:"type,omitempty"`
	Enum          []string       `json:"enum,omitempty"`
	Items         *TypeSpec      `json:"items,omitempty"`
	Ref           string         `json:"$ref,omitempty"`
	OneOf         []TypeSpec     `json:"oneOf,omitempty"`
	Discriminator *Discriminator `json:"discriminator,omitempty"`

	Properties           *orderedmap.OrderedMap[string, TypeSpec] `json:"properties,omitempty"`
	Required             []string                                 `json:"required,omitempty"`
	AdditionalProperties *TypeSpec                                `json:"additionalProperties,omitempty"`

	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
}

// ObjectTypeSpec is a normalized object definition.
type ObjectTypeSpec struct {
	Type                 string                                   `json:"type"`
	Properties           *orderedmap.OrderedMap[string, TypeSpec] `json:"properties"`
	Required             []string                                 `json:"required"`
	Description          string                                   `json:"description,omitempty"`
	AdditionalProperties *TypeSpec                                `json:"additionalProperties,omitempty"`
}

// TypeDictionary maps the names of hoisted object definitions to their normalized form.
type TypeDictionary map[string]ObjectTypeSpec

// Merge returns the union of d and others. Entries are applied in order and a later entry silently replaces an
// earlier one with the same name, even if the two definitions differ.
func (d TypeDictionary) Merge(others ...TypeDictionary) TypeDictionary {
	n := len(d)
	for _, o := range others {
		n += len(o)
	}
	out := make(TypeDictionary, n)
	for k, v := range d {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// ResourceSpec describes a resource in a package schema.
type ResourceSpec struct {
	Description        string                                   `json:"description,omitempty"`
	InputProperties    *orderedmap.OrderedMap[string, TypeSpec] `json:"inputProperties"`
	RequiredInputs     []string                                 `json:"requiredInputs"`
	Properties         *orderedmap.OrderedMap[string, TypeSpec] `json:"properties"`
	RequiredProperties []string                                 `json:"requiredProperties"`
}

// ProviderSpec describes the provider resource itself.
type ProviderSpec struct {
	Description string `json:"description"`
}

// PackageSpec is the schema document a provider advertises.
type PackageSpec struct {
	Name        string                  `json:"name"`
	DisplayName string                  `json:"displayName,omitempty"`
	Version     string                  `json:"version"`
	Description string                  `json:"description"`
	Config      map[string]any          `json:"config"`
	Provider    ProviderSpec            `json:"provider"`
	Types       TypeDictionary          `json:"types"`
	Resources   map[string]ResourceSpec `json:"resources"`
}

// MarshalIndent renders the document as indented JSON without HTML escaping.
func (spec PackageSpec) MarshalIndent() ([]byte, error) {
	var out bytes.Buffer
	encoder := json.NewEncoder(&out)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(spec); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
