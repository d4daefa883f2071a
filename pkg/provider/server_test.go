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
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource/plugin"
	rpc "github.com/pulumi/pulumi/sdk/v3/proto/go"

	json "github.com/goccy/go-json"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pulumi/pulumi-provider-kit/pkg/schema"
)

const counterURN = "urn:pulumi:dev::proj::test:index:Counter::c1"

// counter is a resource whose behavior is scripted by each test.
type counter struct {
	check  func(olds, news map[string]any) (map[string]any, error)
	diff   func(id string, olds, news map[string]any) (DiffResult, error)
	create func(inputs map[string]any, preview bool) (CreateResult, error)
	read   func(id string, props map[string]any) (ReadResult, error)
	update func(id string, olds, news map[string]any, preview bool) (UpdateResult, error)
	delete func(id string, props map[string]any) error
}

func (c *counter) Schema() schema.ResourceSchema {
	return schema.ResourceSchema{
		Name: "test:index:Counter",
		Inputs: schema.Object([]string{"name"},
			schema.Prop("name", schema.String()),
			schema.Prop("step", schema.Number()),
			schema.Prop("mode", schema.String("fast", "slow"))),
		Properties: schema.Object([]string{"name", "count"},
			schema.Prop("name", schema.String()),
			schema.Prop("step", schema.Number()),
			schema.Prop("mode", schema.String("fast", "slow")),
			schema.Prop("count", schema.Number())).WithDescription("A counter."),
	}
}

func (c *counter) Check(_ context.Context, olds, news map[string]any) (map[string]any, error) {
	return c.check(olds, news)
}

func (c *counter) Diff(_ context.Context, id string, olds, news map[string]any) (DiffResult, error) {
	return c.diff(id, olds, news)
}

func (c *counter) Create(_ context.Context, inputs map[string]any, preview bool) (CreateResult, error) {
	return c.create(inputs, preview)
}

func (c *counter) Read(_ context.Context, id string, props map[string]any) (ReadResult, error) {
	return c.read(id, props)
}

func (c *counter) Update(_ context.Context, id string, olds, news map[string]any, preview bool) (UpdateResult, error) {
	return c.update(id, olds, news, preview)
}

func (c *counter) Delete(_ context.Context, id string, props map[string]any) error {
	return c.delete(id, props)
}

func newTestServer(t *testing.T, c *counter) rpc.ResourceProviderServer {
	t.Helper()
	srv, err := NewServer(&Provider{
		Name:                "test",
		Version:             "1.2.3",
		Description:         "A test provider",
		ProviderDescription: "The test provider",
		Resources:           []Resource{c},
	})
	require.NoError(t, err)
	_, err = srv.Configure(context.Background(), &rpc.ConfigureRequest{})
	require.NoError(t, err)
	return srv
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	st, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return st
}

func fromStruct(t *testing.T, st *structpb.Struct) map[string]any {
	t.Helper()
	props, err := plugin.UnmarshalProperties(st, plugin.MarshalOptions{SkipNulls: true})
	require.NoError(t, err)
	return props.Mappable()
}

func requireStatus(t *testing.T, err error, code codes.Code, message string) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected a gRPC status error, got %v", err)
	assert.Equal(t, code, st.Code())
	assert.Equal(t, message, st.Message())
}

func TestNewServerValidates(t *testing.T) {
	t.Parallel()

	c := &counter{}
	_, err := NewServer(&Provider{Name: "test", Version: "1.0.0", Resources: []Resource{c, c}})
	assert.ErrorContains(t, err, "duplicate resource test:index:Counter")

	_, err = NewServer(&Provider{Name: "test", Version: "next"})
	assert.Error(t, err)
}

func TestServerRequiresConfigure(t *testing.T) {
	t.Parallel()

	srv, err := NewServer(&Provider{Name: "test", Version: "1.0.0", Resources: []Resource{&counter{}}})
	require.NoError(t, err)

	_, err = srv.Check(context.Background(), &rpc.CheckRequest{Urn: counterURN})
	requireStatus(t, err, codes.FailedPrecondition, "[CHECK]: provider test has not been configured")
}

func TestServerConfigure(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv, err := NewServer(&Provider{
		Name:    "test",
		Version: "1.0.0",
		Configure: func(_ context.Context, args map[string]any) error {
			got = args
			if args["region"] == "nowhere" {
				return errors.New("unknown region")
			}
			return nil
		},
	})
	require.NoError(t, err)

	resp, err := srv.Configure(context.Background(), &rpc.ConfigureRequest{
		Args: mustStruct(t, map[string]any{"region": "us-west-2"}),
	})
	require.NoError(t, err)
	assert.True(t, resp.GetAcceptSecrets())
	assert.True(t, resp.GetSupportsPreview())
	assert.Equal(t, map[string]any{"region": "us-west-2"}, got)

	_, err = srv.Configure(context.Background(), &rpc.ConfigureRequest{
		Args: mustStruct(t, map[string]any{"region": "nowhere"}),
	})
	requireStatus(t, err, codes.Internal, "internal error occurred (unknown region)")
}

func TestServerUnknownResource(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &counter{})
	_, err := srv.Create(context.Background(), &rpc.CreateRequest{
		Urn: "urn:pulumi:dev::proj::test:index:Nope::n1",
	})
	requireStatus(t, err, codes.Unimplemented, "resource test:index:Nope not implemented")

	_, err = srv.Create(context.Background(), &rpc.CreateRequest{Urn: "not-a-urn"})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestServerInfo(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, &counter{})

	info, err := srv.GetPluginInfo(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", info.GetVersion())

	resp, err := srv.GetSchema(context.Background(), &rpc.GetSchemaRequest{})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.GetSchema()), &doc))
	assert.Equal(t, "test", doc["name"])
	assert.Equal(t, "1.2.3", doc["version"])
	resources := doc["resources"].(map[string]any)
	spec := resources["test:index:Counter"].(map[string]any)
	assert.Equal(t, "A counter.", spec["description"])
	assert.Equal(t, []any{"name"}, spec["requiredInputs"])

	again, err := srv.GetSchema(context.Background(), &rpc.GetSchemaRequest{})
	require.NoError(t, err)
	assert.Equal(t, resp.GetSchema(), again.GetSchema())

	check, err := srv.CheckConfig(context.Background(), &rpc.CheckRequest{
		News: mustStruct(t, map[string]any{"a": "b"}),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "b"}, fromStruct(t, check.GetInputs()))

	diff, err := srv.DiffConfig(context.Background(), &rpc.DiffRequest{})
	require.NoError(t, err)
	assert.Empty(t, diff.GetDiffs())

	_, err = srv.Cancel(context.Background(), &emptypb.Empty{})
	assert.NoError(t, err)
}

func TestServerCheck(t *testing.T) {
	t.Parallel()

	var gotOlds, gotNews map[string]any
	c := &counter{
		check: func(olds, news map[string]any) (map[string]any, error) {
			gotOlds, gotNews = olds, news
			out := map[string]any{"name": news["name"], "mode": "fast"}
			return out, nil
		},
	}
	srv := newTestServer(t, c)

	resp, err := srv.Check(context.Background(), &rpc.CheckRequest{
		Urn:  counterURN,
		News: mustStruct(t, map[string]any{"name": "c1"}),
	})
	require.NoError(t, err)
	assert.Nil(t, gotOlds)
	assert.Equal(t, map[string]any{"name": "c1"}, gotNews)
	assert.Empty(t, resp.GetFailures())
	assert.Equal(t, map[string]any{"name": "c1", "mode": "fast"}, fromStruct(t, resp.GetInputs()))

	_, err = srv.Check(context.Background(), &rpc.CheckRequest{
		Urn:  counterURN,
		Olds: mustStruct(t, map[string]any{"name": "c0", "step": 2}),
		News: mustStruct(t, map[string]any{"name": "c1"}),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "c0", "step": float64(2)}, gotOlds)
}

func TestServerCheckFailures(t *testing.T) {
	t.Parallel()

	c := &counter{
		check: func(olds, news map[string]any) (map[string]any, error) {
			if news["mode"] == "slow" {
				return nil, &CheckError{Failures: []CheckFailure{{Property: "mode", Reason: "too slow"}}}
			}
			return map[string]any{"name": 7}, nil
		},
	}
	srv := newTestServer(t, c)

	resp, err := srv.Check(context.Background(), &rpc.CheckRequest{
		Urn:  counterURN,
		News: mustStruct(t, map[string]any{"name": "c1", "mode": "slow"}),
	})
	require.NoError(t, err)
	require.Len(t, resp.GetFailures(), 1)
	assert.Equal(t, "mode", resp.GetFailures()[0].GetProperty())
	assert.Equal(t, "too slow", resp.GetFailures()[0].GetReason())
	assert.Nil(t, resp.GetInputs())

	_, err = srv.Check(context.Background(), &rpc.CheckRequest{
		Urn:  counterURN,
		News: mustStruct(t, map[string]any{"step": 1}),
	})
	requireStatus(t, err, codes.Internal,
		`[CHECK]: failed to parse news: Missing required property "name" for schema ref()`)

	_, err = srv.Check(context.Background(), &rpc.CheckRequest{
		Urn:  counterURN,
		News: mustStruct(t, map[string]any{"name": "c1", "mode": "medium"}),
	})
	requireStatus(t, err, codes.Internal,
		"[CHECK]: failed to parse news: Expected string enum (fast, slow), got medium for schema string (at mode)")

	_, err = srv.Check(context.Background(), &rpc.CheckRequest{
		Urn:  counterURN,
		News: mustStruct(t, map[string]any{"name": "c1"}),
	})
	requireStatus(t, err, codes.Internal,
		"[CHECK]: failed to parse result: Expected string, got number for schema string (at name)")
}

func TestServerDiff(t *testing.T) {
	t.Parallel()

	c := &counter{
		diff: func(id string, olds, news map[string]any) (DiffResult, error) {
			assert.Equal(t, "c1-id", id)
			var result DiffResult
			if olds["name"] != news["name"] {
				result.Diffs = append(result.Diffs, PropertyDiff{Property: "name", Kind: UpdateReplace})
			}
			if olds["step"] != news["step"] {
				result.Diffs = append(result.Diffs, PropertyDiff{Property: "step", Kind: Update})
			}
			return result, nil
		},
	}
	srv := newTestServer(t, c)

	resp, err := srv.Diff(context.Background(), &rpc.DiffRequest{
		Urn:  counterURN,
		Id:   "c1-id",
		Olds: mustStruct(t, map[string]any{"name": "a", "step": 1, "count": 0}),
		News: mustStruct(t, map[string]any{"name": "b", "step": 2}),
	})
	require.NoError(t, err)
	assert.Equal(t, rpc.DiffResponse_DIFF_SOME, resp.GetChanges())
	assert.Equal(t, []string{"name", "step"}, resp.GetDiffs())
	assert.Equal(t, []string{"name"}, resp.GetReplaces())
	assert.True(t, resp.GetDeleteBeforeReplace())
	assert.True(t, resp.GetHasDetailedDiff())
	assert.Equal(t, rpc.PropertyDiff_UPDATE_REPLACE, resp.GetDetailedDiff()["name"].GetKind())
	assert.Equal(t, rpc.PropertyDiff_UPDATE, resp.GetDetailedDiff()["step"].GetKind())

	resp, err = srv.Diff(context.Background(), &rpc.DiffRequest{
		Urn:  counterURN,
		Id:   "c1-id",
		Olds: mustStruct(t, map[string]any{"name": "a", "count": 0}),
		News: mustStruct(t, map[string]any{"name": "a"}),
	})
	require.NoError(t, err)
	assert.Equal(t, rpc.DiffResponse_DIFF_NONE, resp.GetChanges())
	assert.Empty(t, resp.GetDiffs())
	assert.False(t, resp.GetDeleteBeforeReplace())
	assert.True(t, resp.GetHasDetailedDiff())

	_, err = srv.Diff(context.Background(), &rpc.DiffRequest{
		Urn:  counterURN,
		Id:   "c1-id",
		Olds: mustStruct(t, map[string]any{"name": "a"}),
		News: mustStruct(t, map[string]any{"name": "a"}),
	})
	requireStatus(t, err, codes.Internal,
		`[DIFF]: failed to parse olds: Missing required property "count" for schema ref()`)
}

func TestServerCreate(t *testing.T) {
	t.Parallel()

	c := &counter{
		create: func(inputs map[string]any, preview bool) (CreateResult, error) {
			switch inputs["name"] {
			case "missing":
				return CreateResult{}, status.Error(codes.NotFound, "no such counter")
			case "broken":
				return CreateResult{}, errors.New("boom")
			case "invalid":
				return CreateResult{ID: "x", Outputs: map[string]any{"name": "invalid"}}, nil
			}
			count := 1
			if preview {
				count = 0
			}
			return CreateResult{ID: "id-" + inputs["name"].(string), Outputs: map[string]any{
				"name":  inputs["name"],
				"count": count,
			}}, nil
		},
	}
	srv := newTestServer(t, c)

	resp, err := srv.Create(context.Background(), &rpc.CreateRequest{
		Urn:        counterURN,
		Properties: mustStruct(t, map[string]any{"name": "c1"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "id-c1", resp.GetId())
	assert.Equal(t, map[string]any{"name": "c1", "count": float64(1)}, fromStruct(t, resp.GetProperties()))

	resp, err = srv.Create(context.Background(), &rpc.CreateRequest{
		Urn:        counterURN,
		Properties: mustStruct(t, map[string]any{"name": "c1"}),
		Preview:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "c1", "count": float64(0)}, fromStruct(t, resp.GetProperties()))

	_, err = srv.Create(context.Background(), &rpc.CreateRequest{
		Urn:        counterURN,
		Properties: mustStruct(t, map[string]any{"name": "missing"}),
	})
	requireStatus(t, err, codes.NotFound, "no such counter")

	_, err = srv.Create(context.Background(), &rpc.CreateRequest{
		Urn:        counterURN,
		Properties: mustStruct(t, map[string]any{"name": "broken"}),
	})
	requireStatus(t, err, codes.Internal, "internal error occurred (boom)")

	_, err = srv.Create(context.Background(), &rpc.CreateRequest{
		Urn:        counterURN,
		Properties: mustStruct(t, map[string]any{"name": "invalid"}),
	})
	requireStatus(t, err, codes.Internal,
		`[CREATE]: failed to parse result: Missing required property "count" for schema ref()`)

	_, err = srv.Create(context.Background(), &rpc.CreateRequest{Urn: counterURN})
	requireStatus(t, err, codes.Internal,
		`[CREATE]: failed to parse properties: Missing required property "name" for schema ref()`)
}

func TestServerRead(t *testing.T) {
	t.Parallel()

	var gotProps map[string]any
	c := &counter{
		read: func(id string, props map[string]any) (ReadResult, error) {
			gotProps = props
			if id == "gone" {
				return ReadResult{}, nil
			}
			return ReadResult{ID: id, Properties: map[string]any{"name": "c1", "count": 5}}, nil
		},
	}
	srv := newTestServer(t, c)

	resp, err := srv.Read(context.Background(), &rpc.ReadRequest{
		Urn:        counterURN,
		Id:         "c1-id",
		Properties: mustStruct(t, map[string]any{"name": "c1", "count": 4}),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "c1", "count": float64(4)}, gotProps)
	assert.Equal(t, "c1-id", resp.GetId())
	assert.Equal(t, map[string]any{"name": "c1", "count": float64(5)}, fromStruct(t, resp.GetProperties()))
	assert.Equal(t, map[string]any{"name": "c1", "count": float64(4)}, fromStruct(t, resp.GetInputs()))

	// An import has no prior state.
	resp, err = srv.Read(context.Background(), &rpc.ReadRequest{Urn: counterURN, Id: "c1-id"})
	require.NoError(t, err)
	assert.Nil(t, gotProps)
	assert.Equal(t, "c1-id", resp.GetId())
	assert.Empty(t, fromStruct(t, resp.GetInputs()))

	resp, err = srv.Read(context.Background(), &rpc.ReadRequest{Urn: counterURN, Id: "gone"})
	require.NoError(t, err)
	assert.Empty(t, resp.GetId())
	assert.Nil(t, resp.GetProperties())
}

func TestServerUpdate(t *testing.T) {
	t.Parallel()

	c := &counter{
		update: func(id string, olds, news map[string]any, preview bool) (UpdateResult, error) {
			assert.Equal(t, "c1-id", id)
			assert.False(t, preview)
			return UpdateResult{Outputs: map[string]any{
				"name":  news["name"],
				"step":  news["step"],
				"count": olds["count"],
			}}, nil
		},
	}
	srv := newTestServer(t, c)

	resp, err := srv.Update(context.Background(), &rpc.UpdateRequest{
		Urn:  counterURN,
		Id:   "c1-id",
		Olds: mustStruct(t, map[string]any{"name": "c1", "count": 3}),
		News: mustStruct(t, map[string]any{"name": "c1", "step": 2}),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "c1", "step": float64(2), "count": float64(3)},
		fromStruct(t, resp.GetProperties()))

	_, err = srv.Update(context.Background(), &rpc.UpdateRequest{
		Urn:  counterURN,
		Id:   "c1-id",
		Olds: mustStruct(t, map[string]any{"name": "c1", "count": 3}),
		News: mustStruct(t, map[string]any{"name": "c1", "extra": true}),
	})
	requireStatus(t, err, codes.Internal,
		`[UPDATE]: failed to parse news: Unknown property "extra" for schema ref() (at extra)`)
}

func TestServerDelete(t *testing.T) {
	t.Parallel()

	var deleted []string
	c := &counter{
		delete: func(id string, props map[string]any) error {
			if props["name"] == "stuck" {
				return status.Error(codes.FailedPrecondition, "counter is in use")
			}
			deleted = append(deleted, id)
			return nil
		},
	}
	srv := newTestServer(t, c)

	_, err := srv.Delete(context.Background(), &rpc.DeleteRequest{
		Urn:        counterURN,
		Id:         "c1-id",
		Properties: mustStruct(t, map[string]any{"name": "c1", "count": 1}),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1-id"}, deleted)

	_, err = srv.Delete(context.Background(), &rpc.DeleteRequest{
		Urn:        counterURN,
		Id:         "c2-id",
		Properties: mustStruct(t, map[string]any{"name": "stuck", "count": 1}),
	})
	requireStatus(t, err, codes.FailedPrecondition, "counter is in use")
}

func TestDiffKind(t *testing.T) {
	t.Parallel()

	assert.True(t, AddReplace.Replaces())
	assert.True(t, DeleteReplace.Replaces())
	assert.True(t, UpdateReplace.Replaces())
	assert.False(t, Add.Replaces())
	assert.False(t, Update.Replaces())
	assert.Equal(t, "DELETE_REPLACE", DeleteReplace.String())
	assert.Equal(t, rpc.PropertyDiff_ADD, Add.proto())
	assert.Equal(t, rpc.PropertyDiff_DELETE, Delete.proto())
}
