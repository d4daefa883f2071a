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
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strconv"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/copystructure"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pulumi/pulumi-provider-kit/pkg/provider"
	"github.com/pulumi/pulumi-provider-kit/pkg/schema"
)

const (
	fileToken          = "localfile:index:File"
	textContentToken   = "localfile:index:TextContent"
	base64ContentToken = "localfile:index:Base64Content"

	defaultPermissions = "0644"
)

var permissions = []string{"0600", "0640", "0644", "0755"}

var (
	textContent = schema.Object([]string{"kind", "text"},
		schema.Prop("kind", schema.String("text")),
		schema.Prop("text", schema.String())).WithDescription("Content given as text.")

	base64Content = schema.Object([]string{"kind", "data"},
		schema.Prop("kind", schema.String("base64")),
		schema.Prop("data", schema.String())).WithDescription("Content given as base64-encoded bytes.")

	content = schema.OneOf(
		schema.RefTo(textContentToken, textContent),
		schema.RefTo(base64ContentToken, base64Content),
	).WithDiscriminator("kind", map[string]string{
		"text":   textContentToken,
		"base64": base64ContentToken,
	})

	fileInputs = schema.Object([]string{"path", "content"},
		schema.Prop("path", &schema.StringSchema{Description: "The absolute path of the file."}),
		schema.Prop("content", content),
		schema.Prop("permissions", &schema.StringSchema{
			Enum:        permissions,
			Description: "The octal permission bits of the file.",
			Default:     defaultPermissions,
		}),
		schema.Prop("labels", schema.Object(nil).WithAdditionalProperties(schema.String())))

	fileProperties = schema.Object([]string{"path", "content", "permissions", "size", "sha256"},
		schema.Prop("path", schema.String()),
		schema.Prop("content", content),
		schema.Prop("permissions", schema.String(permissions...)),
		schema.Prop("labels", schema.Object(nil).WithAdditionalProperties(schema.String())),
		schema.Prop("size", &schema.NumberSchema{Description: "The size of the file in bytes."}),
		schema.Prop("sha256", &schema.StringSchema{Description: "The hex-encoded SHA-256 digest of the file."}),
	).WithDescription("A file on the local disk.")
)

// fileResource manages a single file. Its ID is the file's path.
type fileResource struct{}

func (*fileResource) Schema() schema.ResourceSchema {
	return schema.ResourceSchema{
		Name:       fileToken,
		Inputs:     fileInputs,
		Properties: fileProperties,
	}
}

// decodeContent returns the bytes described by a validated content value.
func decodeContent(c any) ([]byte, error) {
	m, _ := c.(map[string]any)
	switch m["kind"] {
	case "text":
		text, _ := m["text"].(string)
		return []byte(text), nil
	case "base64":
		data, _ := m["data"].(string)
		return base64.StdEncoding.DecodeString(data)
	default:
		return nil, fmt.Errorf("unknown content kind %v", m["kind"])
	}
}

// contentOf describes data as text content, or as base64 content when it is not valid UTF-8.
func contentOf(data []byte) map[string]any {
	if utf8.Valid(data) {
		return map[string]any{"kind": "text", "text": string(data)}
	}
	return map[string]any{"kind": "base64", "data": base64.StdEncoding.EncodeToString(data)}
}

func parsePermissions(p any) (fs.FileMode, error) {
	s, _ := p.(string)
	if s == "" {
		s = defaultPermissions
	}
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid permissions %q: %w", s, err)
	}
	return fs.FileMode(mode), nil
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// state computes the properties of a file holding data.
func state(inputs map[string]any, data []byte) map[string]any {
	out := map[string]any{
		"path":        inputs["path"],
		"content":     inputs["content"],
		"permissions": inputs["permissions"],
		"size":        len(data),
		"sha256":      digest(data),
	}
	if out["permissions"] == nil {
		out["permissions"] = defaultPermissions
	}
	if labels, ok := inputs["labels"]; ok {
		out["labels"] = labels
	}
	return out
}

func (*fileResource) Check(_ context.Context, _, news map[string]any) (map[string]any, error) {
	var failures []provider.CheckFailure
	if path, _ := news["path"].(string); !filepath.IsAbs(path) {
		failures = append(failures, provider.CheckFailure{Property: "path", Reason: "must be an absolute path"})
	}
	if _, err := decodeContent(news["content"]); err != nil {
		failures = append(failures, provider.CheckFailure{Property: "content", Reason: err.Error()})
	}
	if len(failures) > 0 {
		return nil, &provider.CheckError{Failures: failures}
	}

	copied, err := copystructure.Copy(news)
	if err != nil {
		return nil, err
	}
	inputs := copied.(map[string]any)
	if _, ok := inputs["permissions"]; !ok {
		inputs["permissions"] = defaultPermissions
	}
	return inputs, nil
}

func (*fileResource) Diff(_ context.Context, _ string, olds, news map[string]any) (provider.DiffResult, error) {
	var result provider.DiffResult
	if olds["path"] != news["path"] {
		result.Diffs = append(result.Diffs, provider.PropertyDiff{Property: "path", Kind: provider.UpdateReplace})
	}
	for _, k := range []string{"content", "permissions", "labels"} {
		o, hasOld := olds[k]
		n, hasNew := news[k]
		switch {
		case hasOld && !hasNew:
			result.Diffs = append(result.Diffs, provider.PropertyDiff{Property: k, Kind: provider.Delete})
		case !hasOld && hasNew:
			result.Diffs = append(result.Diffs, provider.PropertyDiff{Property: k, Kind: provider.Add})
		case !reflect.DeepEqual(o, n):
			result.Diffs = append(result.Diffs, provider.PropertyDiff{Property: k, Kind: provider.Update})
		}
	}
	return result, nil
}

// write stores data at path with the given permissions, creating parent directories as needed.
func write(path string, data []byte, perm any) error {
	mode, err := parsePermissions(perm)
	if err != nil {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return err
	}
	// WriteFile leaves the mode of an existing file alone.
	return os.Chmod(path, mode)
}

func (*fileResource) Create(_ context.Context, inputs map[string]any, preview bool) (provider.CreateResult, error) {
	path := inputs["path"].(string)
	data, err := decodeContent(inputs["content"])
	if err != nil {
		return provider.CreateResult{}, status.Error(codes.InvalidArgument, err.Error())
	}
	if !preview {
		if _, err := os.Stat(path); err == nil {
			return provider.CreateResult{}, status.Errorf(codes.AlreadyExists, "file %s already exists", path)
		}
		logging.V(9).Infof("creating %s (%s)", path, humanize.Bytes(uint64(len(data))))
		if err := write(path, data, inputs["permissions"]); err != nil {
			return provider.CreateResult{}, err
		}
	}
	return provider.CreateResult{ID: path, Outputs: state(inputs, data)}, nil
}

func (*fileResource) Read(_ context.Context, id string, props map[string]any) (provider.ReadResult, error) {
	info, err := os.Stat(id)
	if errors.Is(err, fs.ErrNotExist) {
		return provider.ReadResult{}, nil
	} else if err != nil {
		return provider.ReadResult{}, err
	}
	if info.IsDir() {
		return provider.ReadResult{}, status.Errorf(codes.FailedPrecondition, "%s is a directory", id)
	}
	data, err := os.ReadFile(id)
	if err != nil {
		return provider.ReadResult{}, err
	}

	perm := fmt.Sprintf("%04o", info.Mode().Perm())
	if !slices.Contains(permissions, perm) {
		return provider.ReadResult{}, status.Errorf(codes.FailedPrecondition,
			"file %s has unsupported permissions %s", id, perm)
	}

	current := map[string]any{"path": id, "permissions": perm}
	if props != nil && props["sha256"] == digest(data) {
		current["content"] = props["content"]
	} else {
		current["content"] = contentOf(data)
	}
	if labels, ok := props["labels"]; ok {
		current["labels"] = labels
	}
	return provider.ReadResult{ID: id, Properties: state(current, data)}, nil
}

func (*fileResource) Update(
	_ context.Context, id string, _, news map[string]any, preview bool,
) (provider.UpdateResult, error) {
	data, err := decodeContent(news["content"])
	if err != nil {
		return provider.UpdateResult{}, status.Error(codes.InvalidArgument, err.Error())
	}
	if !preview {
		logging.V(9).Infof("updating %s (%s)", id, humanize.Bytes(uint64(len(data))))
		if err := write(id, data, news["permissions"]); err != nil {
			return provider.UpdateResult{}, err
		}
	}
	return provider.UpdateResult{Outputs: state(news, data)}, nil
}

func (*fileResource) Delete(_ context.Context, id string, _ map[string]any) error {
	logging.V(9).Infof("deleting %s", id)
	if err := os.Remove(id); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
