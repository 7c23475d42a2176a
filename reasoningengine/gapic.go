// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoningengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/go-a2a/vertexsdk"
	"github.com/go-a2a/vertexsdk/pkg/logging"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// NewService creates a reasoning engine service backed by the platform's
// lifecycle and execution APIs plus cloud storage for bundle staging, using
// the client context's credentials.
func NewService(ctx context.Context, cctx vertexsdk.ClientContext, opts ...ServiceOption) (*Service, error) {
	if err := cctx.Validate(); err != nil {
		return nil, err
	}
	if _, err := cctx.StagingBucketName(); err != nil {
		return nil, err
	}
	clientOpts, err := cctx.ClientOptions(ctx, []string{cloudPlatformScope})
	if err != nil {
		return nil, err
	}

	lifecycle, err := aiplatform.NewReasoningEngineClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create reasoning engine client: %w", err)
	}
	execution, err := aiplatform.NewReasoningEngineExecutionClient(ctx, clientOpts...)
	if err != nil {
		lifecycle.Close()
		return nil, fmt.Errorf("create reasoning engine execution client: %w", err)
	}
	gcs, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		lifecycle.Close()
		execution.Close()
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	opts = append([]ServiceOption{WithLogger(logging.FromContext(ctx))}, opts...)
	s := newService(cctx,
		&gapicEngines{client: lifecycle},
		&gapicExecution{client: execution},
		&gcsStore{client: gcs, projectID: cctx.ProjectID},
		opts...,
	)
	s.closer = func() error {
		return errors.Join(lifecycle.Close(), execution.Close(), gcs.Close())
	}
	s.logger.InfoContext(ctx, "Reasoning engine service initialized",
		slog.String("project_id", cctx.ProjectID),
		slog.String("location", cctx.Location),
		slog.String("staging_bucket", cctx.StagingBucket),
	)
	return s, nil
}

// gapicEngines adapts the generated lifecycle client to the [API] facade.
type gapicEngines struct {
	client *aiplatform.ReasoningEngineClient
}

var _ API = (*gapicEngines)(nil)

func (g *gapicEngines) CreateReasoningEngine(ctx context.Context, req *aiplatformpb.CreateReasoningEngineRequest) (*longrunningpb.Operation, error) {
	op, err := g.client.CreateReasoningEngine(ctx, req)
	if err != nil {
		return nil, err
	}
	return &longrunningpb.Operation{Name: op.Name()}, nil
}

func (g *gapicEngines) GetReasoningEngine(ctx context.Context, req *aiplatformpb.GetReasoningEngineRequest) (*aiplatformpb.ReasoningEngine, error) {
	return g.client.GetReasoningEngine(ctx, req)
}

func (g *gapicEngines) ListReasoningEngines(ctx context.Context, req *aiplatformpb.ListReasoningEnginesRequest) ([]*aiplatformpb.ReasoningEngine, error) {
	var out []*aiplatformpb.ReasoningEngine
	it := g.client.ListReasoningEngines(ctx, req)
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

func (g *gapicEngines) UpdateReasoningEngine(ctx context.Context, req *aiplatformpb.UpdateReasoningEngineRequest) (*longrunningpb.Operation, error) {
	op, err := g.client.UpdateReasoningEngine(ctx, req)
	if err != nil {
		return nil, err
	}
	return &longrunningpb.Operation{Name: op.Name()}, nil
}

func (g *gapicEngines) DeleteReasoningEngine(ctx context.Context, req *aiplatformpb.DeleteReasoningEngineRequest) (*longrunningpb.Operation, error) {
	op, err := g.client.DeleteReasoningEngine(ctx, req)
	if err != nil {
		return nil, err
	}
	return &longrunningpb.Operation{Name: op.Name()}, nil
}

func (g *gapicEngines) GetOperation(ctx context.Context, name string) (*longrunningpb.Operation, error) {
	return g.client.GetOperation(ctx, &longrunningpb.GetOperationRequest{Name: name})
}

// gapicExecution adapts the generated execution client to [ExecutionAPI].
type gapicExecution struct {
	client *aiplatform.ReasoningEngineExecutionClient
}

var _ ExecutionAPI = (*gapicExecution)(nil)

func (g *gapicExecution) QueryReasoningEngine(ctx context.Context, req *aiplatformpb.QueryReasoningEngineRequest) (*aiplatformpb.QueryReasoningEngineResponse, error) {
	return g.client.QueryReasoningEngine(ctx, req)
}
