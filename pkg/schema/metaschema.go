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
	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	pschema "github.com/pulumi/pulumi/pkg/v3/codegen/schema"
)

// CheckPackageSpec validates an assembled document against the Pulumi package metaschema. Each violation is
// reported as a separate error of the form "#<pointer>: <message>".
func CheckPackageSpec(spec PackageSpec) error {
	bytes, err := json.Marshal(spec)
	if err != nil {
		return errors.Wrapf(err, "marshaling package %s", spec.Name)
	}
	var raw any
	if err = json.Unmarshal(bytes, &raw); err != nil {
		return errors.Wrapf(err, "unmarshaling package %s", spec.Name)
	}

	err = pschema.MetaSchema.Validate(raw)
	if err == nil {
		return nil
	}
	var validationError *jsonschema.ValidationError
	if !errors.As(err, &validationError) {
		return err
	}

	var result *multierror.Error
	var appendError func(err *jsonschema.ValidationError)
	appendError = func(err *jsonschema.ValidationError) {
		if err.InstanceLocation != "" && err.Message != "" {
			result = multierror.Append(result, errors.Errorf("#%s: %s", err.InstanceLocation, err.Message))
		}
		for _, cause := range err.Causes {
			appendError(cause)
		}
	}
	appendError(validationError)

	if result == nil {
		return validationError
	}
	return result.ErrorOrNil()
}
