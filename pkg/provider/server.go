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
	"fmt"
	"sync"

	"github.com/pulumi/pulumi/sdk/v3/go/common/resource"
	"github.com/pulumi/pulumi/sdk/v3/go/common/resource/plugin"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
	rpc "github.com/pulumi/pulumi/sdk/v3/proto/go"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pulumi/pulumi-provider-kit/pkg/schema"
)

// server implements the resource provider protocol on top of a Provider.
type server struct {
	rpc.UnimplementedResourceProviderServer

	provider  *Provider
	resources map[string]Resource

	schemaOnce sync.Once
	schemaJSON string
	schemaErr  error

	configLock sync.RWMutex
	configured bool
}

// NewServer returns a resource provider server for p. The provider is validated first.
func NewServer(p *Provider) (rpc.ResourceProviderServer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	resources := make(map[string]Resource, len(p.Resources))
	for _, r := range p.Resources {
		resources[r.Schema().Name] = r
	}
	return &server{provider: p, resources: resources}, nil
}

// lookup finds the resource addressed by a URN. The provider must have been configured.
func (s *server) lookup(verb, urn string) (Resource, schema.ResourceSchema, error) {
	s.configLock.RLock()
	configured := s.configured
	s.configLock.RUnlock()
	if !configured {
		return nil, schema.ResourceSchema{}, status.Errorf(codes.FailedPrecondition,
			"[%s]: provider %s has not been configured", verb, s.provider.Name)
	}

	parsed, err := resource.ParseURN(urn)
	if err != nil {
		return nil, schema.ResourceSchema{}, status.Errorf(codes.InvalidArgument, "[%s]: %v", verb, err)
	}
	ty := string(parsed.Type())
	r, ok := s.resources[ty]
	if !ok {
		return nil, schema.ResourceSchema{}, status.Errorf(codes.Unimplemented, "resource %s not implemented", ty)
	}
	return r, r.Schema(), nil
}

func marshalOptions(label string) plugin.MarshalOptions {
	return plugin.MarshalOptions{Label: label, SkipNulls: true}
}

// decode converts a wire struct into plain values. An absent or empty struct decodes to nil.
func decode(label string, st *structpb.Struct) (map[string]any, error) {
	if len(st.GetFields()) == 0 {
		return nil, nil
	}
	props, err := plugin.UnmarshalProperties(st, marshalOptions(label))
	if err != nil {
		return nil, err
	}
	return props.Mappable(), nil
}

func encode(label string, values map[string]any) (*structpb.Struct, error) {
	return plugin.MarshalProperties(resource.NewPropertyMapFromMap(values), marshalOptions(label))
}

// parse decodes a wire struct and validates it against s. If optional is set, an absent struct yields nil
// without validation; otherwise it is validated as an empty object.
func (s *server) parse(verb, what string, st *structpb.Struct, obj *schema.ObjectSchema, dict schema.Dictionary,
	optional bool,
) (map[string]any, error) {
	label := fmt.Sprintf("[%s] %s", verb, what)
	raw, err := decode(label, st)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "[%s]: failed to decode %s: %v", verb, what, err)
	}
	if raw == nil {
		if optional {
			return nil, nil
		}
		raw = map[string]any{}
	}
	return s.validate(verb, what, raw, obj, dict)
}

func (s *server) validate(verb, what string, raw map[string]any, obj *schema.ObjectSchema, dict schema.Dictionary,
) (map[string]any, error) {
	values, err := schema.ValidateObject(raw, obj, dict)
	if err != nil {
		logging.V(5).Infof("%s: %s did not validate: %v", verb, what, err)
		return nil, status.Errorf(codes.Internal, "[%s]: failed to parse %s: %v", verb, what, err)
	}
	return values, nil
}

// resourceError converts an error returned by a Resource into a gRPC error.
func resourceError(verb string, err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	logging.V(5).Infof("%s: resource failed: %v", verb, err)
	return status.Errorf(codes.Internal, "internal error occurred (%v)", err)
}

// GetPluginInfo returns generic information about this plugin, like its version.
func (s *server) GetPluginInfo(context.Context, *emptypb.Empty) (*rpc.PluginInfo, error) {
	return &rpc.PluginInfo{Version: s.provider.Version}, nil
}

// GetSchema returns the JSON-serialized package schema for the provider.
func (s *server) GetSchema(context.Context, *rpc.GetSchemaRequest) (*rpc.GetSchemaResponse, error) {
	s.schemaOnce.Do(func() {
		bytes, err := s.provider.PackageSpec().MarshalIndent()
		if err != nil {
			s.schemaErr = status.Errorf(codes.Internal, "marshaling schema: %v", err)
			return
		}
		s.schemaJSON = string(bytes)
	})
	if s.schemaErr != nil {
		return nil, s.schemaErr
	}
	return &rpc.GetSchemaResponse{Schema: s.schemaJSON}, nil
}

// CheckConfig accepts the provider configuration unchanged.
func (s *server) CheckConfig(_ context.Context, req *rpc.CheckRequest) (*rpc.CheckResponse, error) {
	return &rpc.CheckResponse{Inputs: req.GetNews()}, nil
}

// DiffConfig never reports configuration changes.
func (s *server) DiffConfig(context.Context, *rpc.DiffRequest) (*rpc.DiffResponse, error) {
	return &rpc.DiffResponse{}, nil
}

// Configure runs the provider's Configure hook, if any, and enables resource operations.
func (s *server) Configure(ctx context.Context, req *rpc.ConfigureRequest) (*rpc.ConfigureResponse, error) {
	if s.provider.Configure != nil {
		args, err := decode("[CONFIGURE] args", req.GetArgs())
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "[CONFIGURE]: failed to decode args: %v", err)
		}
		if err := s.provider.Configure(ctx, args); err != nil {
			return nil, resourceError("CONFIGURE", err)
		}
	}

	s.configLock.Lock()
	s.configured = true
	s.configLock.Unlock()

	return &rpc.ConfigureResponse{
		AcceptSecrets:   true,
		SupportsPreview: true,
	}, nil
}

// Check validates the inputs of a resource and lets the resource normalize them.
func (s *server) Check(ctx context.Context, req *rpc.CheckRequest) (*rpc.CheckResponse, error) {
	const verb = "CHECK"
	logging.V(7).Infof("%s(%s) executing", verb, req.GetUrn())

	r, rs, err := s.lookup(verb, req.GetUrn())
	if err != nil {
		return nil, err
	}
	olds, err := s.parse(verb, "olds", req.GetOlds(), rs.Inputs, rs.Dictionary, true)
	if err != nil {
		return nil, err
	}
	news, err := s.parse(verb, "news", req.GetNews(), rs.Inputs, rs.Dictionary, false)
	if err != nil {
		return nil, err
	}

	inputs, err := r.Check(ctx, olds, news)
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		failures := make([]*rpc.CheckFailure, len(checkErr.Failures))
		for i, f := range checkErr.Failures {
			failures[i] = &rpc.CheckFailure{Property: f.Property, Reason: f.Reason}
		}
		logging.V(7).Infof("%s(%s) failed with %d failures", verb, req.GetUrn(), len(failures))
		return &rpc.CheckResponse{Failures: failures}, nil
	} else if err != nil {
		return nil, resourceError(verb, err)
	}

	inputs, err = s.validate(verb, "result", orEmpty(inputs), rs.Inputs, rs.Dictionary)
	if err != nil {
		return nil, err
	}
	st, err := encode("[CHECK] inputs", inputs)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "[%s]: %v", verb, err)
	}
	return &rpc.CheckResponse{Inputs: st}, nil
}

// Diff checks what impacts a hypothetical update will have on the resource's properties.
func (s *server) Diff(ctx context.Context, req *rpc.DiffRequest) (*rpc.DiffResponse, error) {
	const verb = "DIFF"
	logging.V(7).Infof("%s(%s, %s) executing", verb, req.GetUrn(), req.GetId())

	r, rs, err := s.lookup(verb, req.GetUrn())
	if err != nil {
		return nil, err
	}
	olds, err := s.parse(verb, "olds", req.GetOlds(), rs.Properties, rs.Dictionary, false)
	if err != nil {
		return nil, err
	}
	news, err := s.parse(verb, "news", req.GetNews(), rs.Inputs, rs.Dictionary, false)
	if err != nil {
		return nil, err
	}

	result, err := r.Diff(ctx, req.GetId(), olds, news)
	if err != nil {
		return nil, resourceError(verb, err)
	}

	resp := &rpc.DiffResponse{
		Changes:         rpc.DiffResponse_DIFF_NONE,
		DetailedDiff:    map[string]*rpc.PropertyDiff{},
		HasDetailedDiff: true,
	}
	for _, d := range result.Diffs {
		resp.Changes = rpc.DiffResponse_DIFF_SOME
		resp.Diffs = append(resp.Diffs, d.Property)
		if d.Kind.Replaces() {
			resp.Replaces = append(resp.Replaces, d.Property)
			resp.DeleteBeforeReplace = true
		}
		resp.DetailedDiff[d.Property] = &rpc.PropertyDiff{Kind: d.Kind.proto()}
	}
	return resp, nil
}

// Create allocates a new instance of the provided resource and returns its unique ID afterwards.
func (s *server) Create(ctx context.Context, req *rpc.CreateRequest) (*rpc.CreateResponse, error) {
	const verb = "CREATE"
	logging.V(7).Infof("%s(%s) executing (preview=%v)", verb, req.GetUrn(), req.GetPreview())

	r, rs, err := s.lookup(verb, req.GetUrn())
	if err != nil {
		return nil, err
	}
	inputs, err := s.parse(verb, "properties", req.GetProperties(), rs.Inputs, rs.Dictionary, false)
	if err != nil {
		return nil, err
	}

	result, err := r.Create(ctx, inputs, req.GetPreview())
	if err != nil {
		return nil, resourceError(verb, err)
	}
	outputs, err := s.validate(verb, "result", orEmpty(result.Outputs), rs.Properties, rs.Dictionary)
	if err != nil {
		return nil, err
	}
	st, err := encode("[CREATE] outputs", outputs)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "[%s]: %v", verb, err)
	}
	return &rpc.CreateResponse{Id: result.ID, Properties: st}, nil
}

// Read the current live state associated with a resource.
func (s *server) Read(ctx context.Context, req *rpc.ReadRequest) (*rpc.ReadResponse, error) {
	const verb = "READ"
	logging.V(7).Infof("%s(%s, %s) executing", verb, req.GetUrn(), req.GetId())

	r, rs, err := s.lookup(verb, req.GetUrn())
	if err != nil {
		return nil, err
	}
	props, err := s.parse(verb, "properties", req.GetProperties(), rs.Properties, rs.Dictionary, true)
	if err != nil {
		return nil, err
	}

	result, err := r.Read(ctx, req.GetId(), props)
	if err != nil {
		return nil, resourceError(verb, err)
	}
	if result.ID == "" {
		logging.V(7).Infof("%s(%s, %s): resource is gone", verb, req.GetUrn(), req.GetId())
		return &rpc.ReadResponse{}, nil
	}

	live, err := s.validate(verb, "result", orEmpty(result.Properties), rs.Properties, rs.Dictionary)
	if err != nil {
		return nil, err
	}
	st, err := encode("[READ] properties", live)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "[%s]: %v", verb, err)
	}
	inputs, err := encode("[READ] inputs", orEmpty(props))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "[%s]: %v", verb, err)
	}
	return &rpc.ReadResponse{Id: result.ID, Properties: st, Inputs: inputs}, nil
}

// Update updates an existing resource with new values.
func (s *server) Update(ctx context.Context, req *rpc.UpdateRequest) (*rpc.UpdateResponse, error) {
	const verb = "UPDATE"
	logging.V(7).Infof("%s(%s, %s) executing (preview=%v)", verb, req.GetUrn(), req.GetId(), req.GetPreview())

	r, rs, err := s.lookup(verb, req.GetUrn())
	if err != nil {
		return nil, err
	}
	olds, err := s.parse(verb, "olds", req.GetOlds(), rs.Properties, rs.Dictionary, false)
	if err != nil {
		return nil, err
	}
	news, err := s.parse(verb, "news", req.GetNews(), rs.Inputs, rs.Dictionary, false)
	if err != nil {
		return nil, err
	}

	result, err := r.Update(ctx, req.GetId(), olds, news, req.GetPreview())
	if err != nil {
		return nil, resourceError(verb, err)
	}
	outputs, err := s.validate(verb, "result", orEmpty(result.Outputs), rs.Properties, rs.Dictionary)
	if err != nil {
		return nil, err
	}
	st, err := encode("[UPDATE] outputs", outputs)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "[%s]: %v", verb, err)
	}
	return &rpc.UpdateResponse{Properties: st}, nil
}

// Delete tears down an existing resource with the given ID. If it fails, the resource is assumed to still exist.
func (s *server) Delete(ctx context.Context, req *rpc.DeleteRequest) (*emptypb.Empty, error) {
	const verb = "DELETE"
	logging.V(7).Infof("%s(%s, %s) executing", verb, req.GetUrn(), req.GetId())

	r, rs, err := s.lookup(verb, req.GetUrn())
	if err != nil {
		return nil, err
	}
	props, err := s.parse(verb, "properties", req.GetProperties(), rs.Properties, rs.Dictionary, false)
	if err != nil {
		return nil, err
	}

	if err := r.Delete(ctx, req.GetId(), props); err != nil {
		return nil, resourceError(verb, err)
	}
	return &emptypb.Empty{}, nil
}

// Cancel signals the provider to gracefully shut down. Operations are not interruptible, so there is nothing to do.
func (s *server) Cancel(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	return &emptypb.Empty{}, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
