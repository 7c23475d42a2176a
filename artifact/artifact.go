// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/go-a2a/vertexsdk"
	"github.com/go-a2a/vertexsdk/lro"
	"github.com/go-a2a/vertexsdk/resource"
	"github.com/go-a2a/vertexsdk/resourcename"
)

const (
	// Collection is the collection segment of artifact resource names.
	Collection = "artifacts"

	// DefaultMetadataStore is the metadata store used when none is
	// configured.
	DefaultMetadataStore = "default"
)

// API is the remote capability set the service consumes. The GAPIC adapter
// implements it over the metadata client; tests substitute fakes.
type API interface {
	CreateArtifact(ctx context.Context, req *aiplatformpb.CreateArtifactRequest) (*aiplatformpb.Artifact, error)
	GetArtifact(ctx context.Context, req *aiplatformpb.GetArtifactRequest) (*aiplatformpb.Artifact, error)
	ListArtifacts(ctx context.Context, req *aiplatformpb.ListArtifactsRequest) ([]*aiplatformpb.Artifact, error)
	UpdateArtifact(ctx context.Context, req *aiplatformpb.UpdateArtifactRequest) (*aiplatformpb.Artifact, error)
	DeleteArtifact(ctx context.Context, req *aiplatformpb.DeleteArtifactRequest) (*longrunningpb.Operation, error)
	GetOperation(ctx context.Context, name string) (*longrunningpb.Operation, error)
}

// Service provides access to the Artifact collection of one metadata store.
type Service struct {
	cctx    vertexsdk.ClientContext
	api     API
	storeID string
	poller  *lro.Poller
	logger  *slog.Logger
	closer  func() error
}

// ServiceOption configures a [Service].
type ServiceOption func(*Service)

// WithMetadataStore selects the metadata store the service addresses.
func WithMetadataStore(storeID string) ServiceOption {
	return func(s *Service) { s.storeID = storeID }
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

func newService(cctx vertexsdk.ClientContext, api API, opts ...ServiceOption) *Service {
	s := &Service{
		cctx:    cctx,
		api:     api,
		storeID: DefaultMetadataStore,
		logger:  slog.Default(),
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

// MetadataStorePath returns the parent path of the service's artifact
// collection.
func (s *Service) MetadataStorePath() string {
	return resourcename.MetadataStorePath(s.cctx.ProjectID, s.cctx.Location, s.storeID)
}

// CreateParams are the caller-supplied fields of a new Artifact.
type CreateParams struct {
	// SchemaTitle identifies the schema of the record. Required.
	SchemaTitle string

	// ResourceID is the final segment of the artifact name. When empty a
	// random ID is generated client-side.
	ResourceID string

	// URI is the location the artifact describes.
	URI string

	DisplayName   string
	SchemaVersion string
	Description   string

	// Metadata is the free-form payload stored with the record.
	Metadata map[string]any
}

// Create inserts a new Artifact row and returns a handle bound to it.
//
// Creation is unconditional: an identical (schema_title, uri) row may already
// exist and a new one is still inserted. An AlreadyExists failure (same
// resource ID) is surfaced as a hard error; the historical treat-as-success
// fallback stays disabled.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Artifact, error) {
	if p.SchemaTitle == "" {
		return nil, fmt.Errorf("schema title is required: %w", vertexsdk.ErrInvalidArgument)
	}
	id := p.ResourceID
	if id == "" {
		id = uuid.NewString()
	}

	var metadata *structpb.Struct
	if len(p.Metadata) > 0 {
		var err error
		if metadata, err = structpb.NewStruct(p.Metadata); err != nil {
			return nil, fmt.Errorf("artifact metadata is not representable: %v: %w", err, vertexsdk.ErrInvalidArgument)
		}
	}

	parent := s.MetadataStorePath()
	s.logger.InfoContext(ctx, "Creating artifact",
		slog.String("parent", parent),
		slog.String("artifact_id", id),
		slog.String("schema_title", p.SchemaTitle),
	)

	created, err := s.api.CreateArtifact(ctx, &aiplatformpb.CreateArtifactRequest{
		Parent: parent,
		Artifact: &aiplatformpb.Artifact{
			Uri:           p.URI,
			SchemaTitle:   p.SchemaTitle,
			SchemaVersion: p.SchemaVersion,
			DisplayName:   p.DisplayName,
			Description:   p.Description,
			Metadata:      metadata,
			State:         aiplatformpb.Artifact_LIVE,
		},
		ArtifactId: id,
	})
	if err != nil {
		return nil, vertexsdk.WrapRPC(err, parent+"/"+Collection+"/"+id)
	}
	return s.wrap(created)
}

// Get retrieves an Artifact by fully-qualified name or bare resource ID.
func (s *Service) Get(ctx context.Context, nameOrID string) (*Artifact, error) {
	name, err := s.resolveName(nameOrID)
	if err != nil {
		return nil, err
	}
	h, err := resource.NewHandle(ctx, s.ops(), name, s.logger)
	if err != nil {
		return nil, err
	}
	return &Artifact{Handle: h, svc: s}, nil
}

// List returns the store's artifacts matching filter, in service order. The
// filter string is passed through opaquely.
func (s *Service) List(ctx context.Context, filter string) ([]*Artifact, error) {
	rows, err := s.list(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*Artifact, 0, len(rows))
	for _, row := range rows {
		a, err := s.wrap(row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// GetWithURI finds the Artifact whose uri exactly matches uri.
//
// With no match it fails with a not-found error. With several matches it
// logs every candidate and returns the most recently created one; list
// results are kept sorted ascending by creation time so the last element
// wins regardless of service ordering.
func (s *Service) GetWithURI(ctx context.Context, uri string) (*Artifact, error) {
	rows, err := s.list(ctx, fmt.Sprintf("uri = %q", uri))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no artifact with uri %q in metadata store %q: %w", uri, s.storeID, vertexsdk.ErrNotFound)
	}
	sortByCreateTime(rows)
	if len(rows) > 1 {
		names := make([]string, len(rows))
		for i, row := range rows {
			names[i] = row.GetName()
		}
		s.logger.WarnContext(ctx, "Multiple artifacts share a uri",
			slog.String("uri", uri),
			slog.Any("resource_names", names),
			slog.String("returning", rows[len(rows)-1].GetName()),
		)
	}
	return s.wrap(rows[len(rows)-1])
}

// Update replaces the stored row for pb.Name with pb and returns the updated
// handle.
func (s *Service) Update(ctx context.Context, pb *aiplatformpb.Artifact) (*Artifact, error) {
	updated, err := s.api.UpdateArtifact(ctx, &aiplatformpb.UpdateArtifactRequest{Artifact: pb})
	if err != nil {
		return nil, vertexsdk.WrapRPC(err, pb.GetName())
	}
	return s.wrap(updated)
}

// Delete removes the named Artifact, blocking until the deletion operation
// is terminal.
func (s *Service) Delete(ctx context.Context, nameOrID string) error {
	name, err := s.resolveName(nameOrID)
	if err != nil {
		return err
	}
	return s.ops().Delete(ctx, name.String())
}

func (s *Service) list(ctx context.Context, filter string) ([]*aiplatformpb.Artifact, error) {
	parent := s.MetadataStorePath()
	rows, err := s.api.ListArtifacts(ctx, &aiplatformpb.ListArtifactsRequest{
		Parent: parent,
		Filter: filter,
	})
	if err != nil {
		return nil, vertexsdk.WrapRPC(err, parent+"/"+Collection)
	}
	return rows, nil
}

func (s *Service) resolveName(nameOrID string) (resourcename.Name, error) {
	if !resourcename.IsFull(nameOrID) {
		return resourcename.Metadata(s.cctx.ProjectID, s.cctx.Location, s.storeID, Collection, nameOrID), nil
	}
	name, err := resourcename.Parse(nameOrID)
	if err != nil {
		return resourcename.Name{}, fmt.Errorf("%v: %w", err, vertexsdk.ErrInvalidArgument)
	}
	return name, nil
}

func (s *Service) wrap(pb *aiplatformpb.Artifact) (*Artifact, error) {
	name, err := resourcename.Parse(pb.GetName())
	if err != nil {
		return nil, fmt.Errorf("service returned an unparseable artifact name: %w", err)
	}
	return &Artifact{Handle: resource.Adopt(s.ops(), name, pb, s.logger), svc: s}, nil
}

func (s *Service) ops() resource.Ops[*aiplatformpb.Artifact] {
	return resource.Ops[*aiplatformpb.Artifact]{
		Collection: Collection,
		Get: func(ctx context.Context, name string) (*aiplatformpb.Artifact, error) {
			pb, err := s.api.GetArtifact(ctx, &aiplatformpb.GetArtifactRequest{Name: name})
			if err != nil {
				return nil, vertexsdk.WrapRPC(err, name)
			}
			return pb, nil
		},
		List: func(ctx context.Context, parent, filter string) ([]*aiplatformpb.Artifact, error) {
			return s.list(ctx, filter)
		},
		Delete: func(ctx context.Context, name string) error {
			op, err := s.api.DeleteArtifact(ctx, &aiplatformpb.DeleteArtifactRequest{Name: name})
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

// sortByCreateTime orders rows ascending by creation time, stably, so that
// the last element is always the most recently created.
func sortByCreateTime(rows []*aiplatformpb.Artifact) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].GetCreateTime().AsTime().Before(rows[j].GetCreateTime().AsTime())
	})
}

// Artifact is a handle bound to one metadata Artifact row. Accessors project
// the latest fetched snapshot and never trigger remote calls.
type Artifact struct {
	*resource.Handle[*aiplatformpb.Artifact]
	svc *Service
}

// URI returns the location the artifact describes.
func (a *Artifact) URI() string {
	return a.Snapshot().GetUri()
}

// ResourceID returns the final segment of the artifact's resource name.
func (a *Artifact) ResourceID() string {
	return a.Name().ID
}

// SchemaTitle returns the schema identifying the record's shape.
func (a *Artifact) SchemaTitle() string {
	return a.Snapshot().GetSchemaTitle()
}

// DisplayName returns the user-defined name of the artifact.
func (a *Artifact) DisplayName() string {
	return a.Snapshot().GetDisplayName()
}

// CreateTime returns the service-assigned creation timestamp.
func (a *Artifact) CreateTime() time.Time {
	return a.Snapshot().GetCreateTime().AsTime()
}

// Metadata returns the free-form payload stored with the record.
func (a *Artifact) Metadata() map[string]any {
	return a.Snapshot().GetMetadata().AsMap()
}

// LineageConsoleURI returns the cloud console page showing the artifact in
// its lineage graph.
func (a *Artifact) LineageConsoleURI() string {
	n := a.Name()
	return fmt.Sprintf(
		"https://console.cloud.google.com/vertex-ai/locations/%s/metadata-stores/%s/artifacts/%s?project=%s",
		n.Location, n.MetadataStore, n.ID, n.Project,
	)
}
