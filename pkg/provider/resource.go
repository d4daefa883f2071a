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

// Package provider serves typed resources over the Pulumi resource provider protocol. Every payload that crosses
// the wire is validated against the resource's schema before a resource sees it, and every result a resource
// returns is validated again before it is sent back.
package provider

import (
	"context"
	"fmt"
	"strings"

	rpc "github.com/pulumi/pulumi/sdk/v3/proto/go"

	"github.com/pulumi/pulumi-provider-kit/pkg/schema"
)

// DiffKind describes how a single property changes.
type DiffKind int

const (
	Add DiffKind = iota
	AddReplace
	Delete
	DeleteReplace
	Update
	UpdateReplace
)

func (k DiffKind) String() string {
	switch k {
	case Add:
		return "ADD"
	case AddReplace:
		return "ADD_REPLACE"
	case Delete:
		return "DELETE"
	case DeleteReplace:
		return "DELETE_REPLACE"
	case Update:
		return "UPDATE"
	case UpdateReplace:
		return "UPDATE_REPLACE"
	default:
		return fmt.Sprintf("DiffKind(%d)", int(k))
	}
}

// Replaces reports whether the change forces the resource to be replaced.
func (k DiffKind) Replaces() bool {
	return k == AddReplace || k == DeleteReplace || k == UpdateReplace
}

func (k DiffKind) proto() rpc.PropertyDiff_Kind {
	switch k {
	case Add:
		return rpc.PropertyDiff_ADD
	case AddReplace:
		return rpc.PropertyDiff_ADD_REPLACE
	case Delete:
		return rpc.PropertyDiff_DELETE
	case DeleteReplace:
		return rpc.PropertyDiff_DELETE_REPLACE
	case UpdateReplace:
		return rpc.PropertyDiff_UPDATE_REPLACE
	default:
		return rpc.PropertyDiff_UPDATE
	}
}

// PropertyDiff is a change to a single top-level property.
type PropertyDiff struct {
	Property string
	Kind     DiffKind
}

// DiffResult lists the properties that differ between a resource's state and its new inputs. An empty result
// means no change.
type DiffResult struct {
	Diffs []PropertyDiff
}

// CheckFailure explains why a single input property is invalid.
type CheckFailure struct {
	Property string
	Reason   string
}

// CheckError is returned by Resource.Check when the inputs are well-formed but unacceptable. Its failures are
// reported to the engine rather than failing the request.
type CheckError struct {
	Failures []CheckFailure
}

func (e *CheckError) Error() string {
	reasons := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		reasons[i] = f.Property + ": " + f.Reason
	}
	return "check failed: " + strings.Join(reasons, "; ")
}

// CreateResult is the outcome of creating a resource.
type CreateResult struct {
	ID      string
	Outputs map[string]any
}

// ReadResult is the live state of a resource. An empty ID means the resource no longer exists.
type ReadResult struct {
	ID         string
	Properties map[string]any
}

// UpdateResult is the outcome of updating a resource.
type UpdateResult struct {
	Outputs map[string]any
}

// Resource implements the lifecycle of a single resource type. Inputs passed to a Resource have already been
// validated against Schema().Inputs, and state against Schema().Properties. Errors created with the grpc status
// package are returned to the engine unchanged; any other error is reported as an internal error.
type Resource interface {
	// Schema describes the resource's token, inputs and state.
	Schema() schema.ResourceSchema

	// Check validates new inputs, optionally against the previous ones, and returns the inputs to use. olds is
	// nil when the resource is being created.
	Check(ctx context.Context, olds, news map[string]any) (map[string]any, error)
	// Diff compares the current state with new inputs.
	Diff(ctx context.Context, id string, olds, news map[string]any) (DiffResult, error)
	// Create creates the resource. During a preview nothing may be changed.
	Create(ctx context.Context, inputs map[string]any, preview bool) (CreateResult, error)
	// Read returns the live state of the resource. props is nil when the resource is being imported.
	Read(ctx context.Context, id string, props map[string]any) (ReadResult, error)
	// Update applies new inputs to the resource. During a preview nothing may be changed.
	Update(ctx context.Context, id string, olds, news map[string]any, preview bool) (UpdateResult, error)
	// Delete removes the resource.
	Delete(ctx context.Context, id string, props map[string]any) error
}
