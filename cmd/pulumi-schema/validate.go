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

package main

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/cmdutil"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"

	"github.com/pulumi/pulumi-provider-kit/pkg/schema"
)

func newValidateCmd() *cobra.Command {
	var resourceName string
	var state bool

	cmd := &cobra.Command{
		Use:   "validate <file> <value-file>",
		Args:  cmdutil.ExactArgs(2),
		Short: "Validate a value against the inputs or properties of a resource",
		Long: "Validate a value against the inputs or properties of a resource.\n" +
			"\n" +
			"The value is read from a YAML or JSON file. On success the validated value is printed as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			r, ok := doc.Resource(resourceName)
			if !ok {
				return fmt.Errorf("package %s has no resource %q", doc.Info.Name, resourceName)
			}

			raw, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			var value any
			if err := yaml.Unmarshal(raw, &value); err != nil {
				return fmt.Errorf("reading %s: %w", args[1], err)
			}

			obj := r.Inputs
			if state {
				obj = r.Properties
			}
			validated, err := schema.ValidateObject(value, obj, r.Dictionary)
			if err != nil {
				return err
			}

			bytes, err := json.MarshalIndent(validated, "", "    ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(bytes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&resourceName, "resource", "r", "", "The token of the resource to validate against")
	cmd.Flags().BoolVar(&state, "state", false, "Validate against the resource's properties instead of its inputs")
	contract.AssertNoErrorf(cmd.MarkFlagRequired("resource"), "could not mark resource flag as required")
	return cmd
}
