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
	pulumiprovider "github.com/pulumi/pulumi/pkg/v3/resource/provider"
	rpc "github.com/pulumi/pulumi/sdk/v3/proto/go"
)

// Main serves p as a resource provider plugin and blocks until the engine shuts it down. It is meant to be called
// from a plugin's main function.
func Main(p *Provider) error {
	srv, err := NewServer(p)
	if err != nil {
		return err
	}
	return pulumiprovider.Main(p.Name, func(*pulumiprovider.HostClient) (rpc.ResourceProviderServer, error) {
		return srv, nil
	})
}
