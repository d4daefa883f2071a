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

// pulumi-schema works with provider authoring schemas: it prints their normalized package schema, checks them
// against the Pulumi package metaschema, and validates values against their resources.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/cmdutil"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"

	"github.com/pulumi/pulumi-provider-kit/pkg/schema"
)

func newRootCmd() *cobra.Command {
	var verbose int
	var logToStderr bool

	cmd := &cobra.Command{
		Use:   "pulumi-schema",
		Short: "Work with Pulumi provider authoring schemas",
		Long: "Work with Pulumi provider authoring schemas.\n" +
			"\n" +
			"An authoring schema is a YAML or JSON document that describes a provider package and the\n" +
			"inputs and properties of its resources.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.InitLogging(logToStderr, verbose, false)
		},
	}

	cmd.PersistentFlags().IntVarP(&verbose, "verbose", "v", 0,
		"Enable verbose logging (e.g., v=3); anything >3 is very verbose")
	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr instead of to files")

	cmd.AddCommand(newNormalizeCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newValidateCmd())
	return cmd
}

// loadDocument reads the authoring document at path.
func loadDocument(path string) (*schema.PackageDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := schema.LoadPackage(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	logging.V(5).Infof("loaded package %s with %d resources and %d types",
		doc.Info.Name, len(doc.Resources), len(doc.Types))
	return doc, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		cmdutil.ExitError(err.Error())
	}
}
