// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/protobuf/proto"

	"github.com/go-a2a/vertexsdk/resourcename"
)

// Ops is the capability set a handle needs to manage one resource
// collection. Resource packages fill it in with closures over their facade;
// the handle itself never talks to a transport directly.
type Ops[R proto.Message] struct {
	// Collection is the collection segment of the resource name,
	// e.g. "artifacts" or "reasoningEngines".
	Collection string

	// Get fetches the current remote snapshot by canonical name.
	Get func(ctx context.Context, name string) (R, error)

	// List returns all resources under parent matching filter. The filter
	// string is passed through to the service opaquely.
	List func(ctx context.Context, parent, filter string) ([]R, error)

	// Delete removes the named resource, blocking until the deletion's
	// long-running operation is terminal.
	Delete func(ctx context.Context, name string) error
}

// Handle binds a local object to exactly one remote resource name for its
// lifetime and owns the latest fetched snapshot of that resource.
//
// The snapshot is replaced wholesale on every fetch; there is no partial
// merge. Accessors never trigger remote calls.
type Handle[R proto.Message] struct {
	name     resourcename.Name
	ops      Ops[R]
	snapshot R
	logger   *slog.Logger
}

// NewHandle binds a handle to name and populates it with a fresh snapshot.
func NewHandle[R proto.Message](ctx context.Context, ops Ops[R], name resourcename.Name, logger *slog.Logger) (*Handle[R], error) {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handle[R]{name: name, ops: ops, logger: logger}
	if err := h.Refresh(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// Adopt binds a handle to name with an already-fetched snapshot, without
// issuing a remote call.
func Adopt[R proto.Message](ops Ops[R], name resourcename.Name, snapshot R, logger *slog.Logger) *Handle[R] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handle[R]{name: name, ops: ops, snapshot: snapshot, logger: logger}
}

// ResourceName returns the canonical resource name the handle is bound to.
func (h *Handle[R]) ResourceName() string {
	return h.name.String()
}

// Name returns the parsed resource name.
func (h *Handle[R]) Name() resourcename.Name {
	return h.name
}

// Snapshot returns a copy of the latest fetched remote state.
func (h *Handle[R]) Snapshot() R {
	return proto.Clone(h.snapshot).(R)
}

// Refresh fetches the remote resource and replaces the snapshot wholesale.
func (h *Handle[R]) Refresh(ctx context.Context) error {
	snapshot, err := h.ops.Get(ctx, h.name.String())
	if err != nil {
		return fmt.Errorf("refresh %s: %w", h.name, err)
	}
	h.snapshot = snapshot
	return nil
}

// Delete removes the remote resource. The handle keeps its last snapshot; a
// subsequent Refresh surfaces the service's not-found error.
func (h *Handle[R]) Delete(ctx context.Context) error {
	h.logger.InfoContext(ctx, "Deleting resource",
		slog.String("collection", h.ops.Collection),
		slog.String("resource_name", h.name.String()),
	)
	return h.ops.Delete(ctx, h.name.String())
}
