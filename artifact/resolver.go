// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-a2a/vertexsdk"
	"github.com/go-a2a/vertexsdk/resourcename"
)

// Target is a platform resource that can be mirrored into the lineage store.
// Resource handles (e.g. a model) satisfy it structurally.
type Target interface {
	// ResourceName returns the canonical name of the resource.
	ResourceName() string

	// DisplayName returns the user-defined name of the resource.
	DisplayName() string

	// Wait blocks until the resource is in a stable state.
	Wait(ctx context.Context) error
}

// Resolver idempotently associates first-class platform resources with the
// Artifacts that track their lineage.
//
// The mapping from resource kind (the collection segment of its name) to
// Artifact schema title is an open registry: new kinds are added with
// [Resolver.RegisterSchemaTitle].
type Resolver struct {
	svc    *Service
	logger *slog.Logger

	mu           sync.RWMutex
	schemaTitles map[string]string
}

// NewResolver creates a resolver over the given artifact service, seeded
// with the model-to-VertexModel mapping.
func NewResolver(svc *Service) *Resolver {
	return &Resolver{
		svc:    svc,
		logger: svc.logger,
		schemaTitles: map[string]string{
			"models": "google.VertexModel",
		},
	}
}

// RegisterSchemaTitle maps a resource collection to the schema title of the
// Artifacts that mirror it.
func (r *Resolver) RegisterSchemaTitle(collection, schemaTitle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemaTitles[collection] = schemaTitle
}

// Supports reports whether the resolver knows a schema title for target's
// resource kind.
func (r *Resolver) Supports(target Target) bool {
	_, _, err := r.classify(target)
	return err == nil
}

// Resolve finds the Artifact mirroring target, or nil when none exists.
//
// Candidates are matched on (schema_title, uri) equality and ordered
// ascending by creation time; the most recent wins when the store already
// holds duplicates. Nothing is deleted or merged.
func (r *Resolver) Resolve(ctx context.Context, target Target) (*Artifact, error) {
	if err := target.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", target.ResourceName(), err)
	}
	name, schemaTitle, err := r.classify(target)
	if err != nil {
		return nil, err
	}
	uri := CanonicalURI(name)

	rows, err := r.svc.list(ctx, fmt.Sprintf("schema_title = %q AND uri = %q", schemaTitle, uri))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sortByCreateTime(rows)
	if len(rows) > 1 {
		r.logger.WarnContext(ctx, "Multiple artifacts mirror one resource",
			slog.String("uri", uri),
			slog.String("schema_title", schemaTitle),
			slog.Int("count", len(rows)),
		)
	}
	return r.svc.wrap(rows[len(rows)-1])
}

// CreateFor creates a new Artifact mirroring target, carrying the resource
// name in its metadata.
//
// It never checks for an existing mirror; duplicate prevention belongs to
// [Resolver.ResolveOrCreate].
func (r *Resolver) CreateFor(ctx context.Context, target Target) (*Artifact, error) {
	if err := target.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", target.ResourceName(), err)
	}
	name, schemaTitle, err := r.classify(target)
	if err != nil {
		return nil, err
	}

	return r.svc.Create(ctx, CreateParams{
		SchemaTitle: schemaTitle,
		DisplayName: target.DisplayName(),
		URI:         CanonicalURI(name),
		Metadata: map[string]any{
			"resourceName": name.String(),
		},
	})
}

// ResolveOrCreate returns the Artifact mirroring target, creating it when
// none exists.
//
// There is no cross-process mutual exclusion here: two concurrent callers
// can both observe no mirror and both create one. The store tolerates the
// duplicates and later resolution picks the most recent; the underlying
// service offers no transactional guard at this layer.
func (r *Resolver) ResolveOrCreate(ctx context.Context, target Target) (*Artifact, error) {
	a, err := r.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	if a != nil {
		return a, nil
	}
	return r.CreateFor(ctx, target)
}

func (r *Resolver) classify(target Target) (resourcename.Name, string, error) {
	name, err := resourcename.Parse(target.ResourceName())
	if err != nil {
		return resourcename.Name{}, "", fmt.Errorf("%v: %w", err, vertexsdk.ErrInvalidArgument)
	}
	r.mu.RLock()
	schemaTitle, ok := r.schemaTitles[name.Collection]
	r.mu.RUnlock()
	if !ok {
		return resourcename.Name{}, "", fmt.Errorf("no artifact schema registered for resource kind %q: %w", name.Collection, vertexsdk.ErrInvalidArgument)
	}
	return name, schemaTitle, nil
}

// CanonicalURI formats the stable API URL used as the artifact uri for a
// platform resource.
func CanonicalURI(name resourcename.Name) string {
	return fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1/%s", name.Location, name.String())
}
