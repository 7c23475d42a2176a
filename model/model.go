// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"

	"github.com/go-a2a/vertexsdk"
	"github.com/go-a2a/vertexsdk/lro"
	"github.com/go-a2a/vertexsdk/resource"
	"github.com/go-a2a/vertexsdk/resourcename"
)

// Collection is the collection segment of model resource names.
const Collection = "models"

// API is the remote capability set the service consumes. The GAPIC adapter
// implements it over the model client; tests substitute fakes.
type API interface {
	GetModel(ctx context.Context, req *aiplatformpb.GetModelRequest) (*aiplatformpb.Model, error)
	ListModels(ctx context.Context, req *aiplatformpb.ListModelsRequest) ([]*aiplatformpb.Model, error)
	DeleteModel(ctx context.Context, req *aiplatformpb.DeleteModelRequest) (*longrunningpb.Operation, error)
	GetOperation(ctx context.Context, name string) (*longrunningpb.Operation, error)
}

// Service provides access to the model registry of one project location.
type Service struct {
	cctx   vertexsdk.ClientContext
	api    API
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

func newService(cctx vertexsdk.ClientContext, api API, opts ...ServiceOption) *Service {
	s := &Service{
		cctx:   cctx,
		api:    api,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.poller = lro.NewPoller(api, lro.WithLogger(s.logger))
	return s
}

// Close releases the underlying transport, if the service owns one.
func (s *Service) Close() error {
	if s.closer != nil {
		return s.closer()
	}
	return nil
}

// Get retrieves a model by fully-qualified name or bare resource ID. Version
// aliases in the ID ("my-model@2") pass through to the service untouched.
func (s *Service) Get(ctx context.Context, nameOrID string) (*Model, error) {
	name, err := s.resolveName(nameOrID)
	if err != nil {
		return nil, err
	}
	h, err := resource.NewHandle(ctx, s.ops(), name, s.logger)
	if err != nil {
		return nil, err
	}
	return &Model{Handle: h}, nil
}

// List returns the registry's models matching filter, in service order. The
// filter string is passed through opaquely.
func (s *Service) List(ctx context.Context, filter string) ([]*Model, error) {
	parent := resourcename.LocationPath(s.cctx.ProjectID, s.cctx.Location)
	rows, err := s.api.ListModels(ctx, &aiplatformpb.ListModelsRequest{
		Parent: parent,
		Filter: filter,
	})
	if err != nil {
		return nil, vertexsdk.WrapRPC(err, parent+"/"+Collection)
	}
	out := make([]*Model, 0, len(rows))
	for _, row := range rows {
		m, err := s.wrap(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Delete removes the named model, blocking until the deletion operation is
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

func (s *Service) wrap(pb *aiplatformpb.Model) (*Model, error) {
	name, err := resourcename.Parse(pb.GetName())
	if err != nil {
		return nil, fmt.Errorf("service returned an unparseable model name: %w", err)
	}
	return &Model{Handle: resource.Adopt(s.ops(), name, pb, s.logger)}, nil
}

func (s *Service) ops() resource.Ops[*aiplatformpb.Model] {
	return resource.Ops[*aiplatformpb.Model]{
		Collection: Collection,
		Get: func(ctx context.Context, name string) (*aiplatformpb.Model, error) {
			pb, err := s.api.GetModel(ctx, &aiplatformpb.GetModelRequest{Name: name})
			if err != nil {
				return nil, vertexsdk.WrapRPC(err, name)
			}
			return pb, nil
		},
		List: func(ctx context.Context, parent, filter string) ([]*aiplatformpb.Model, error) {
			return s.api.ListModels(ctx, &aiplatformpb.ListModelsRequest{Parent: parent, Filter: filter})
		},
		Delete: func(ctx context.Context, name string) error {
			op, err := s.api.DeleteModel(ctx, &aiplatformpb.DeleteModelRequest{Name: name})
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

// Model is a handle bound to one model registry entry. Accessors project the
// latest fetched snapshot and never trigger remote calls.
type Model struct {
	*resource.Handle[*aiplatformpb.Model]
}

// DisplayName returns the user-defined name of the model.
func (m *Model) DisplayName() string {
	return m.Snapshot().GetDisplayName()
}

// VersionID returns the registry version the handle is bound to.
func (m *Model) VersionID() string {
	return m.Snapshot().GetVersionId()
}

// ArtifactURI returns the storage location of the model's packaged files.
func (m *Model) ArtifactURI() string {
	return m.Snapshot().GetArtifactUri()
}

// CreateTime returns the service-assigned creation timestamp.
func (m *Model) CreateTime() time.Time {
	return m.Snapshot().GetCreateTime().AsTime()
}

// Wait refreshes the handle once. A model that can be fetched is already in
// a stable state; there is no intermediate lifecycle to poll through.
func (m *Model) Wait(ctx context.Context) error {
	return m.Refresh(ctx)
}
