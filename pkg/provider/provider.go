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

package provider

import (
	"context"
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"

	"github.com/pulumi/pulumi-provider-kit/pkg/schema"
)

// Provider describes a resource provider package and the resources it serves.
type Provider struct {
	Name                string
	DisplayName         string
	Version             string
	Description         string
	Config              map[string]any
	ProviderDescription string
	Resources           []Resource

	// Configure, if set, is called with the provider's configuration arguments before any resource operation.
	Configure func(ctx context.Context, args map[string]any) error
}

// Info returns the package metadata of the provider.
func (p *Provider) Info() schema.PackageInfo {
	return schema.PackageInfo{
		Name:                p.Name,
		DisplayName:         p.DisplayName,
		Version:             p.Version,
		Description:         p.Description,
		Config:              p.Config,
		ProviderDescription: p.ProviderDescription,
	}
}

// Schemas returns the schemas of the provider's resources in declaration order.
func (p *Provider) Schemas() []schema.ResourceSchema {
	schemas := make([]schema.ResourceSchema, len(p.Resources))
	for i, r := range p.Resources {
		schemas[i] = r.Schema()
	}
	return schemas
}

// PackageSpec assembles the package schema document the provider advertises.
func (p *Provider) PackageSpec() schema.PackageSpec {
	return schema.BuildPackageSpec(p.Info(), p.Schemas())
}

// Validate checks the package metadata and that every resource has a unique token and both schemas.
func (p *Provider) Validate() error {
	if err := p.Info().Validate(); err != nil {
		return err
	}
	seen := map[string]bool{}
	for i, r := range p.Resources {
		contract.Requiref(r != nil, "p", "resource %d is nil", i)
		s := r.Schema()
		switch {
		case s.Name == "":
			return fmt.Errorf("resource %d has no name", i)
		case seen[s.Name]:
			return fmt.Errorf("duplicate resource %s", s.Name)
		case s.Inputs == nil:
			return fmt.Errorf("resource %s has no inputs schema", s.Name)
		case s.Properties == nil:
			return fmt.Errorf("resource %s has no properties schema", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}
