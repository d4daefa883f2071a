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
	"fmt"

	"github.com/pkg/errors"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
)

// ErrorKind categorizes a ParseError.
type ErrorKind int

const (
	// TypeMismatch means the value is not of the kind the schema requires.
	TypeMismatch ErrorKind = iota
	// EnumMismatch means a string is not one of the schema's enum values.
	EnumMismatch
	// MissingProperty means a required property is absent.
	MissingProperty
	// UnknownProperty means a key is neither declared nor allowed by additionalProperties.
	UnknownProperty
	// UnresolvedRef means a bare reference is not in the dictionary.
	UnresolvedRef
	// NotJSON means a value under a Json reference is not JSON-serializable.
	NotJSON
	// NoMatchingAlternative means no oneOf alternative matched.
	NoMatchingAlternative
	// AmbiguousAlternatives means more than one oneOf alternative matched.
	AmbiguousAlternatives
	// DiscriminatorShape means the value or its discriminator property has the wrong shape.
	DiscriminatorShape
	// DiscriminatorUnknown means the discriminator value has no mapping.
	DiscriminatorUnknown
	// DiscriminatorTarget means the mapped reference names no alternative.
	DiscriminatorTarget
	// UnsupportedSchema means the schema is not one of the known forms.
	UnsupportedSchema
	// CyclicValue means the value contains itself along the path being validated.
	CyclicValue
)

func (k ErrorKind) String() string {
	switch k {
	case TypeMismatch:
		return "type_mismatch"
	case EnumMismatch:
		return "enum_mismatch"
	case MissingProperty:
		return "missing_property"
	case UnknownProperty:
		return "unknown_property"
	case UnresolvedRef:
		return "unresolved_ref"
	case NotJSON:
		return "not_json"
	case NoMatchingAlternative:
		return "no_matching_alternative"
	case AmbiguousAlternatives:
		return "ambiguous_alternatives"
	case DiscriminatorShape:
		return "discriminator_shape"
	case DiscriminatorUnknown:
		return "discriminator_unknown"
	case DiscriminatorTarget:
		return "discriminator_target"
	case UnsupportedSchema:
		return "unsupported_schema"
	case CyclicValue:
		return "cyclic_value"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError reports why a value does not match a schema. Path is the route from the root value to the offending
// sub-value; it is empty at the root.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Path    resource.PropertyPath
}

func (e *ParseError) Error() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.Path)
}

// AsParseError extracts a *ParseError from err.
func AsParseError(err error) (*ParseError, bool) {
	var perr *ParseError
	if errors.As(err, &perr) {
		return perr, true
	}
	return nil, false
}

func parseErrorf(kind ErrorKind, path resource.PropertyPath, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Path:    append(resource.PropertyPath{}, path...),
	}
}

// appendPath returns a new path with seg appended, leaving path untouched.
func appendPath(path resource.PropertyPath, seg any) resource.PropertyPath {
	out := make(resource.PropertyPath, len(path), len(path)+1)
	copy(out, path)
	return append(out, seg)
}
