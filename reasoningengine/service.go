// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoningengine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"google.golang.org/protobuf/types/known/fieldmaskpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/go-a2a/vertexsdk"
	"github.com/go-a2a/vertexsdk/lro"
	"github.com/go-a2a/vertexsdk/resource"
	"github.com/go-a2a/vertexsdk/resourcename"
)

// API is the remote capability set the service consumes for lifecycle
// operations. The GAPIC adapter implements it; tests substitute fakes.
type API interface {
	CreateReasoningEngine(ctx context.Context, req *aiplatformpb.CreateReasoningEngineRequest) (*longrunningpb.Operation, error)
	GetReasoningEngine(ctx context.Context, req *aiplatformpb.GetReasoningEngineRequest) (*aiplatformpb.ReasoningEngine, error)
	ListReasoningEngines(ctx context.Context, req *aiplatformpb.ListReasoningEnginesRequest) ([]*aiplatformpb.ReasoningEngine, error)
	UpdateReasoningEngine(ctx context.Context, req *aiplatformpb.UpdateReasoningEngineRequest) (*longrunningpb.Operation, error)
	DeleteReasoningEngine(ctx context.Context, req *aiplatformpb.DeleteReasoningEngineRequest) (*longrunningpb.Operation, error)
	GetOperation(ctx context.Context, name string) (*longrunningpb.Operation, error)
}

// ExecutionAPI is the capability routing queries to a deployed engine.
type ExecutionAPI interface {
	QueryReasoningEngine(ctx context.Context, req *aiplatformpb.QueryReasoningEngineRequest) (*aiplatformpb.QueryReasoningEngineResponse, error)
}

// Service deploys and manages reasoning engines in one project location.
type Service struct {
	cctx   vertexsdk.ClientContext
	api    API
	exec   ExecutionAPI
	store  ObjectStore
	poller *lro.Poller
	logger *slog.Logger
	closer func() error
}

// ServiceOption configures a [Service].
type ServiceOption func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

func newService(cctx vertexsdk.ClientContext, api API, exec ExecutionAPI, store ObjectStore, opts ...ServiceOption) *Service {
	s := &Service{
		cctx:   cctx,
		api:    api,
		exec:   exec,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.poller = lro.NewPoller(api, lro.WithLogger(s.logger))
	return s
}

// Close releases the underlying transports, if the service owns them.
func (s *Service) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

// Create packages app into a deployment bundle, uploads it to the staging
// bucket, creates the remote engine, and blocks until the creation operation
// is terminal. The returned handle is bound to a fresh fetch of the created
// resource, since the operation response may be a partial projection.
//
// All validation failures happen before the first network or storage call.
func (s *Service) Create(ctx context.Context, app Queryable, opts CreateOptions) (*Engine, error) {
	opts, err := opts.clone()
	if err != nil {
		return nil, err
	}
	if opts.DisplayName == "" {
		return nil, fmt.Errorf("display name is required: %w", vertexsdk.ErrInvalidArgument)
	}

	version, mismatch, err := resolveRuntimeVersion(opts.RuntimeVersion)
	if err != nil {
		return nil, err
	}
	if mismatch {
		s.logger.WarnContext(ctx, "Requested runtime version differs from the running toolchain",
			slog.String("requested", opts.RuntimeVersion),
			slog.String("detected", detectRuntimeVersion()),
		)
	}

	bucket, err := s.cctx.StagingBucketName()
	if err != nil {
		return nil, err
	}
	if err := validateQueryMethod(app); err != nil {
		return nil, err
	}
	if c, ok := app.(Cloneable); ok {
		app = c.Clone()
	}

	requirements, err := normalizeRequirements(opts.Requirements, opts.RequirementsFile, os.ReadFile)
	if err != nil {
		return nil, err
	}
	for _, path := range opts.ExtraPackages {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("extra package %q: %v: %w", path, err, vertexsdk.ErrInvalidArgument)
		}
	}

	dirName := opts.GCSDirName
	if dirName == "" {
		dirName = defaultGCSDirName
	}
	packager := NewPackager(s.store, opts.Serializer, s.logger)
	bundle, err := packager.Stage(ctx, app, bucket, s.cctx.Location, dirName, requirements, opts.ExtraPackages)
	if err != nil {
		return nil, err
	}

	spec := &aiplatformpb.ReasoningEngineSpec{
		PackageSpec: &aiplatformpb.ReasoningEngineSpec_PackageSpec{
			PythonVersion:         version,
			PickleObjectGcsUri:    bundle.ObjectURI,
			DependencyFilesGcsUri: bundle.DependenciesURI,
			RequirementsGcsUri:    bundle.RequirementsURI,
		},
	}
	// Best effort: a deployment without an operation schema is still valid.
	if schema, err := deriveQuerySchema(app); err != nil {
		s.logger.WarnContext(ctx, "Could not derive the query operation schema",
			slog.String("error", err.Error()),
		)
	} else {
		spec.ClassMethods = append(spec.ClassMethods, schema)
	}

	parent := s.cctx.LocationPath()
	s.logger.InfoContext(ctx, "Creating reasoning engine",
		slog.String("parent", parent),
		slog.String("display_name", opts.DisplayName),
		slog.String("runtime_version", version),
	)
	op, err := s.api.CreateReasoningEngine(ctx, &aiplatformpb.CreateReasoningEngineRequest{
		Parent: parent,
		ReasoningEngine: &aiplatformpb.ReasoningEngine{
			DisplayName: opts.DisplayName,
			Description: opts.Description,
			Spec:        spec,
		},
	})
	if err != nil {
		return nil, vertexsdk.WrapRPC(err, parent+"/"+Collection)
	}
	done, err := s.poller.Wait(ctx, op)
	if err != nil {
		return nil, fmt.Errorf("create reasoning engine: %w", err)
	}
	var created aiplatformpb.ReasoningEngine
	if err := lro.ResponseInto(done, &created); err != nil {
		return nil, fmt.Errorf("create reasoning engine: %w", err)
	}
	return s.Get(ctx, created.GetName())
}

// Get retrieves an engine by fully-qualified name or bare resource ID.
func (s *Service) Get(ctx context.Context, nameOrID string) (*Engine, error) {
	name, err := s.resolveName(nameOrID)
	if err != nil {
		return nil, err
	}
	h, err := resource.NewHandle(ctx, s.ops(), name, s.logger)
	if err != nil {
		return nil, err
	}
	return &Engine{Handle: h, svc: s}, nil
}

// List returns the location's engines matching filter, in service order. The
// filter string is passed through opaquely.
func (s *Service) List(ctx context.Context, filter string) ([]*Engine, error) {
	parent := s.cctx.LocationPath()
	rows, err := s.api.ListReasoningEngines(ctx, &aiplatformpb.ListReasoningEnginesRequest{
		Parent: parent,
		Filter: filter,
	})
	if err != nil {
		return nil, vertexsdk.WrapRPC(err, parent+"/"+Collection)
	}
	out := make([]*Engine, 0, len(rows))
	for _, row := range rows {
		e, err := s.wrap(row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// UpdateParams are the mutable fields of a deployed engine. Zero fields are
// left untouched.
type UpdateParams struct {
	DisplayName string
	Description string
}

// Update applies params to the named engine, blocking until the update
// operation is terminal, and returns a handle bound to the updated resource.
func (s *Service) Update(ctx context.Context, nameOrID string, params UpdateParams) (*Engine, error) {
	name, err := s.resolveName(nameOrID)
	if err != nil {
		return nil, err
	}
	var paths []string
	pb := &aiplatformpb.ReasoningEngine{Name: name.String()}
	if params.DisplayName != "" {
		pb.DisplayName = params.DisplayName
		paths = append(paths, "display_name")
	}
	if params.Description != "" {
		pb.Description = params.Description
		paths = append(paths, "description")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("update has no fields to apply: %w", vertexsdk.ErrInvalidArgument)
	}

	op, err := s.api.UpdateReasoningEngine(ctx, &aiplatformpb.UpdateReasoningEngineRequest{
		ReasoningEngine: pb,
		UpdateMask:      &fieldmaskpb.FieldMask{Paths: paths},
	})
	if err != nil {
		return nil, vertexsdk.WrapRPC(err, name.String())
	}
	if _, err := s.poller.Wait(ctx, op); err != nil {
		return nil, fmt.Errorf("update %s: %w", name, err)
	}
	return s.Get(ctx, name.String())
}

// Delete removes the named engine, blocking until the deletion operation is
// terminal.
func (s *Service) Delete(ctx context.Context, nameOrID string) error {
	name, err := s.resolveName(nameOrID)
	if err != nil {
		return err
	}
	return s.ops().Delete(ctx, name.String())
}

func (s *Service) resolveName(nameOrID string) (resourcename.Name, error) {
	if !resourcename.IsFull(nameOrID) {
		return resourcename.Full(s.cctx.ProjectID, s.cctx.Location, Collection, nameOrID), nil
	}
	name, err := resourcename.Parse(nameOrID)
	if err != nil {
		return resourcename.Name{}, fmt.Errorf("%v: %w", err, vertexsdk.ErrInvalidArgument)
	}
	return name, nil
}

func (s *Service) wrap(pb *aiplatformpb.ReasoningEngine) (*Engine, error) {
	name, err := resourcename.Parse(pb.GetName())
	if err != nil {
		return nil, fmt.Errorf("service returned an unparseable engine name: %w", err)
	}
	return &Engine{Handle: resource.Adopt(s.ops(), name, pb, s.logger), svc: s}, nil
}

func (s *Service) ops() resource.Ops[*aiplatformpb.ReasoningEngine] {
	return resource.Ops[*aiplatformpb.ReasoningEngine]{
		Collection: Collection,
		Get: func(ctx context.Context, name string) (*aiplatformpb.ReasoningEngine, error) {
			pb, err := s.api.GetReasoningEngine(ctx, &aiplatformpb.GetReasoningEngineRequest{Name: name})
			if err != nil {
				return nil, vertexsdk.WrapRPC(err, name)
			}
			return pb, nil
		},
		List: func(ctx context.Context, parent, filter string) ([]*aiplatformpb.ReasoningEngine, error) {
			return s.api.ListReasoningEngines(ctx, &aiplatformpb.ListReasoningEnginesRequest{Parent: parent, Filter: filter})
		},
		Delete: func(ctx context.Context, name string) error {
			op, err := s.api.DeleteReasoningEngine(ctx, &aiplatformpb.DeleteReasoningEngineRequest{Name: name})
			if err != nil {
				return vertexsdk.WrapRPC(err, name)
			}
			if _, err := s.poller.Wait(ctx, op); err != nil {
				return fmt.Errorf("delete %s: %w", name, err)
			}
			return nil
		},
	}
}

// Engine is a handle bound to one deployed reasoning engine. Accessors
// project the latest fetched snapshot and never trigger remote calls;
// [Engine.Query] goes through the execution API.
type Engine struct {
	*resource.Handle[*aiplatformpb.ReasoningEngine]
	svc *Service

	schemaOnce sync.Once
	schemas    []map[string]any
}

// DisplayName returns the user-visible name of the engine.
func (e *Engine) DisplayName() string {
	return e.Snapshot().GetDisplayName()
}

// CreateTime returns the service-assigned creation timestamp.
func (e *Engine) CreateTime() time.Time {
	return e.Snapshot().GetCreateTime().AsTime()
}

// OperationSchemas returns the schemas of the engine's callable operations,
// projected from the deployed spec. The projection is computed once per
// handle.
func (e *Engine) OperationSchemas() []map[string]any {
	e.schemaOnce.Do(func() {
		for _, cm := range e.Snapshot().GetSpec().GetClassMethods() {
			e.schemas = append(e.schemas, cm.AsMap())
		}
	})
	return e.schemas
}

// Query runs one request against the deployed engine.
//
// When the response payload is an object it is returned as-is; a scalar or
// list payload is wrapped under an "output" key so the return shape is
// always a map.
func (e *Engine) Query(ctx context.Context, input map[string]any) (map[string]any, error) {
	in, err := structpb.NewStruct(input)
	if err != nil {
		return nil, fmt.Errorf("query input is not representable: %v: %w", err, vertexsdk.ErrInvalidArgument)
	}
	resp, err := e.svc.exec.QueryReasoningEngine(ctx, &aiplatformpb.QueryReasoningEngineRequest{
		Name:  e.ResourceName(),
		Input: in,
	})
	if err != nil {
		return nil, vertexsdk.WrapRPC(err, e.ResourceName())
	}
	out := resp.GetOutput().AsInterface()
	if m, ok := out.(map[string]any); ok {
		return m, nil
	}
	return map[string]any{"output": out}, nil
}
