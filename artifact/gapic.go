// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"fmt"
	"log/slog"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"google.golang.org/api/iterator"

	"github.com/go-a2a/vertexsdk"
	"github.com/go-a2a/vertexsdk/pkg/logging"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// NewService creates an artifact service backed by the platform's metadata
// API, using the client context's credentials.
func NewService(ctx context.Context, cctx vertexsdk.ClientContext, opts ...ServiceOption) (*Service, error) {
	if err := cctx.Validate(); err != nil {
		return nil, err
	}
	clientOpts, err := cctx.ClientOptions(ctx, []string{cloudPlatformScope})
	if err != nil {
		return nil, err
	}
	client, err := aiplatform.NewMetadataClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create metadata client: %w", err)
	}

	opts = append([]ServiceOption{WithLogger(logging.FromContext(ctx))}, opts...)
	s := NewServiceFromClient(cctx, client, opts...)
	s.logger.InfoContext(ctx, "Artifact service initialized",
		slog.String("project_id", cctx.ProjectID),
		slog.String("location", cctx.Location),
		slog.String("metadata_store", s.storeID),
	)
	return s, nil
}

// NewServiceFromClient creates an artifact service over an existing metadata
// client. The caller keeps ownership of the client only if it also keeps a
// reference; Close still closes it.
func NewServiceFromClient(cctx vertexsdk.ClientContext, client *aiplatform.MetadataClient, opts ...ServiceOption) *Service {
	s := newService(cctx, &gapicMetadata{client: client}, opts...)
	s.closer = client.Close
	return s
}

// gapicMetadata adapts the generated metadata client to the [API] facade:
// list iterators are flattened and long-running operations surfaced as raw
// operation protos for the poller.
type gapicMetadata struct {
	client *aiplatform.MetadataClient
}

var _ API = (*gapicMetadata)(nil)

func (g *gapicMetadata) CreateArtifact(ctx context.Context, req *aiplatformpb.CreateArtifactRequest) (*aiplatformpb.Artifact, error) {
	return g.client.CreateArtifact(ctx, req)
}

func (g *gapicMetadata) GetArtifact(ctx context.Context, req *aiplatformpb.GetArtifactRequest) (*aiplatformpb.Artifact, error) {
	return g.client.GetArtifact(ctx, req)
}

func (g *gapicMetadata) ListArtifacts(ctx context.Context, req *aiplatformpb.ListArtifactsRequest) ([]*aiplatformpb.Artifact, error) {
	var out []*aiplatformpb.Artifact
	it := g.client.ListArtifacts(ctx, req)
	for {
		row, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (g *gapicMetadata) UpdateArtifact(ctx context.Context, req *aiplatformpb.UpdateArtifactRequest) (*aiplatformpb.Artifact, error) {
	return g.client.UpdateArtifact(ctx, req)
}

func (g *gapicMetadata) DeleteArtifact(ctx context.Context, req *aiplatformpb.DeleteArtifactRequest) (*longrunningpb.Operation, error) {
	op, err := g.client.DeleteArtifact(ctx, req)
	if err != nil {
		return nil, err
	}
	return &longrunningpb.Operation{Name: op.Name()}, nil
}

func (g *gapicMetadata) GetOperation(ctx context.Context, name string) (*longrunningpb.Operation, error) {
	return g.client.GetOperation(ctx, &longrunningpb.GetOperationRequest{Name: name})
}
