// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package model

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

// NewService creates a model service backed by the platform's model registry
// API, using the client context's credentials.
func NewService(ctx context.Context, cctx vertexsdk.ClientContext, opts ...ServiceOption) (*Service, error) {
	if err := cctx.Validate(); err != nil {
		return nil, err
	}
	clientOpts, err := cctx.ClientOptions(ctx, []string{cloudPlatformScope})
	if err != nil {
		return nil, err
	}
	client, err := aiplatform.NewModelClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create model client: %w", err)
	}

	opts = append([]ServiceOption{WithLogger(logging.FromContext(ctx))}, opts...)
	s := newService(cctx, &gapicModels{client: client}, opts...)
	s.closer = client.Close
	s.logger.InfoContext(ctx, "Model service initialized",
		slog.String("project_id", cctx.ProjectID),
		slog.String("location", cctx.Location),
	)
	return s, nil
}

// gapicModels adapts the generated model client to the [API] facade.
type gapicModels struct {
	client *aiplatform.ModelClient
}

var _ API = (*gapicModels)(nil)

func (g *gapicModels) GetModel(ctx context.Context, req *aiplatformpb.GetModelRequest) (*aiplatformpb.Model, error) {
	return g.client.GetModel(ctx, req)
}

func (g *gapicModels) ListModels(ctx context.Context, req *aiplatformpb.ListModelsRequest) ([]*aiplatformpb.Model, error) {
	var out []*aiplatformpb.Model
	it := g.client.ListModels(ctx, req)
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

func (g *gapicModels) DeleteModel(ctx context.Context, req *aiplatformpb.DeleteModelRequest) (*longrunningpb.Operation, error) {
	op, err := g.client.DeleteModel(ctx, req)
	if err != nil {
		return nil, err
	}
	return &longrunningpb.Operation{Name: op.Name()}, nil
}

func (g *gapicModels) GetOperation(ctx context.Context, name string) (*longrunningpb.Operation, error) {
	return g.client.GetOperation(ctx, &longrunningpb.GetOperationRequest{Name: name})
}
