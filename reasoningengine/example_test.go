// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoningengine_test

import (
	"context"
	"fmt"
	"log"

	"github.com/go-a2a/vertexsdk"
	"github.com/go-a2a/vertexsdk/reasoningengine"
)

type echoApp struct{}

func (echoApp) Query(ctx context.Context, input map[string]any) (map[string]any, error) {
	return map[string]any{"echo": input}, nil
}

func Example() {
	ctx := context.Background()
	cctx := vertexsdk.ClientContext{
		ProjectID:     "my-project",
		Location:      "us-central1",
		StagingBucket: "gs://my-staging-bucket",
	}

	svc, err := reasoningengine.NewService(ctx, cctx)
	if err != nil {
		log.Fatal(err)
	}
	defer svc.Close()

	engine, err := svc.Create(ctx, echoApp{}, reasoningengine.CreateOptions{
		DisplayName:  "echo",
		Requirements: []string{"cloudpickle==3.0.0"},
	})
	if err != nil {
		log.Fatal(err)
	}

	out, err := engine.Query(ctx, map[string]any{"question": "ping"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out["echo"])
}
