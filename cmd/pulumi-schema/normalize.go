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
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/cmdutil"
)

func newNormalizeCmd() *cobra.Command {
	var out string
	var check bool

	cmd := &cobra.Command{
		Use:   "normalize <file>",
		Args:  cmdutil.ExactArgs(1),
		Short: "Print the package schema of an authoring schema",
		Long: "Print the package schema of an authoring schema.\n" +
			"\n" +
			"Inline object definitions are hoisted into the package's types and replaced by references.\n" +
			"With --check the file named by --out is compared against the package schema instead of being\n" +
			"written, and any difference is printed and reported as an error.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if check && out == "" {
				return errors.New("--check requires --out")
			}

			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			bytes, err := doc.PackageSpec().MarshalIndent()
			if err != nil {
				return err
			}

			switch {
			case check:
				existing, err := os.ReadFile(out)
				if err != nil && !errors.Is(err, fs.ErrNotExist) {
					return err
				}
				if string(existing) == string(bytes) {
					return nil
				}
				printDiff(cmd.ErrOrStderr(), string(existing), string(bytes))
				return fmt.Errorf("%s is out of date", out)
			case out != "":
				return os.WriteFile(out, bytes, 0o600)
			default:
				_, err = cmd.OutOrStdout().Write(bytes)
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the package schema to this file instead of stdout")
	cmd.Flags().BoolVar(&check, "check", false, "Fail if the file named by --out differs from the package schema")
	return cmd
}

// printDiff writes a line diff from old to updated, prefixing removed lines with "-" and added lines with "+".
func printDiff(w io.Writer, old, updated string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(old, updated)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line != "" {
				fmt.Fprint(w, prefix+line)
			}
		}
	}
}
