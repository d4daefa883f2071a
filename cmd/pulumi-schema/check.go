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
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/cmdutil"

	"github.com/pulumi/pulumi-provider-kit/pkg/schema"
)

// checkResult is the outcome of checking one document.
type checkResult struct {
	name   string
	errors []error
}

func checkDocument(path string) (checkResult, error) {
	doc, err := loadDocument(path)
	if err != nil {
		return checkResult{}, err
	}

	result := checkResult{name: doc.Info.Name}
	err = schema.CheckPackageSpec(doc.PackageSpec())
	var merr *multierror.Error
	if errors.As(err, &merr) {
		result.errors = merr.Errors
	} else if err != nil {
		result.errors = []error{err}
	}
	return result, nil
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Args:  cmdutil.MinimumNArgs(1),
		Short: "Check the package schemas of authoring schemas against the Pulumi metaschema",
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]checkResult, len(args))
			var g errgroup.Group
			for i, path := range args {
				g.Go(func() error {
					r, err := checkDocument(path)
					results[i] = r
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			var failed error
			for _, r := range results {
				if len(r.errors) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "package %s is valid\n", r.name)
					continue
				}
				for _, e := range r.errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %v\n", r.name, e)
				}
				failed = multierror.Append(failed,
					fmt.Errorf("package %s has %d schema errors", r.name, len(r.errors)))
			}
			return failed
		},
	}
}
