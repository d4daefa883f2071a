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
	"github.com/blang/semver"
	"github.com/pkg/errors"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
)

// PackageInfo holds the package-level metadata of a schema document.
type PackageInfo struct {
	Name                string
	DisplayName         string
	Version             string
	Description         string
	Config              map[string]any
	ProviderDescription string
}

// Validate checks that the package has a name and that its version is a semantic version.
func (info PackageInfo) Validate() error {
	if info.Name == "" {
		return errors.New("package name must not be empty")
	}
	if _, err := semver.ParseTolerant(info.Version); err != nil {
		return errors.Wrapf(err, "package %s: invalid version %q", info.Name, info.Version)
	}
	return nil
}

// ResourceSchema is the authoring description of a single resource type.
type ResourceSchema struct {
	// Name is the resource token, e.g. "localfile:index:File".
	Name        string
	Description string
	// Inputs describes the arguments a program supplies.
	Inputs *ObjectSchema
	// Properties describes the state the provider reports back.
	Properties *ObjectSchema
	// Dictionary resolves the bare references used by Inputs and Properties.
	Dictionary Dictionary
}

// NormalizeResource normalizes a resource's properties and inputs. Types hoisted from the inputs replace those
// hoisted from the properties when the two disagree.
func NormalizeResource(r ResourceSchema) (ResourceSpec, TypeDictionary) {
	contract.Requiref(r.Inputs != nil, "r", "resource %s has no inputs schema", r.Name)
	contract.Requiref(r.Properties != nil, "r", "resource %s has no properties schema", r.Name)

	properties, propertyTypes := NormalizeObject(r.Properties)
	inputs, inputTypes := NormalizeObject(r.Inputs)

	description := r.Properties.Description
	if description == "" {
		description = r.Description
	}

	return ResourceSpec{
		Description:        description,
		InputProperties:    inputs.Properties,
		RequiredInputs:     inputs.Required,
		Properties:         properties.Properties,
		RequiredProperties: properties.Required,
	}, propertyTypes.Merge(inputTypes)
}

// BuildPackageSpec assembles the package schema document for the given resources. Types hoisted by later
// resources replace those of earlier ones.
func BuildPackageSpec(info PackageInfo, resources []ResourceSchema) PackageSpec {
	config := info.Config
	if config == nil {
		config = map[string]any{}
	}

	types := TypeDictionary{}
	specs := make(map[string]ResourceSpec, len(resources))
	for _, r := range resources {
		spec, resourceTypes := NormalizeResource(r)
		specs[r.Name] = spec
		types = types.Merge(resourceTypes)
	}

	return PackageSpec{
		Name:        info.Name,
		DisplayName: info.DisplayName,
		Version:     info.Version,
		Description: info.Description,
		Config:      config,
		Provider:    ProviderSpec{Description: info.ProviderDescription},
		Types:       types,
		Resources:   specs,
	}
}
