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

// pulumi-resource-localfile is a resource provider plugin that manages files on the local disk.
package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/cmdutil"

	"github.com/pulumi/pulumi-provider-kit/pkg/provider"
)

const (
	providerName = "localfile"
	version      = "0.1.0"
)

func newProvider() *provider.Provider {
	return &provider.Provider{
		Name:                providerName,
		DisplayName:         "Local File",
		Version:             version,
		Description:         "Manage files on the local disk.",
		Config:              map[string]any{},
		ProviderDescription: "The provider type for the localfile package.",
		Resources:           []provider.Resource{&fileResource{}},
	}
}

func main() {
	if err := provider.Main(newProvider()); err != nil {
		cmdutil.ExitError(err.Error())
	}
}
