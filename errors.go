// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package vertexsdk

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error kinds surfaced by the SDK. Transport failures are classified into
// exactly one of these; callers branch with [errors.Is].
var (
	ErrAlreadyExists    = errors.New("already exists")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnavailable      = errors.New("unavailable")
	ErrUnknown          = errors.New("unknown error")
)

// APIError classifies a transport failure against a named resource.
//
// The underlying error is preserved verbatim; no retry decisions are made at
// this layer.
type APIError struct {
	// Kind is one of the sentinel errors above.
	Kind error

	// Resource is the resource name or collection the call addressed.
	Resource string

	err error
}

func (e *APIError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("%v: %v", e.Kind, e.err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Resource, e.Kind, e.err)
}

// Unwrap returns the underlying transport error.
func (e *APIError) Unwrap() error { return e.err }

// Is matches the error's kind, so errors.Is(err, ErrNotFound) works on a
// wrapped transport failure.
func (e *APIError) Is(target error) bool { return target == e.Kind }

// WrapRPC classifies err into the SDK error taxonomy.
//
// A nil err returns nil. Errors that already carry a kind pass through
// unchanged.
func WrapRPC(err error, resource string) error {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return err
	}
	kind := ErrUnknown
	switch status.Code(err) {
	case codes.AlreadyExists:
		kind = ErrAlreadyExists
	case codes.NotFound:
		kind = ErrNotFound
	case codes.PermissionDenied:
		kind = ErrPermissionDenied
	case codes.InvalidArgument:
		kind = ErrInvalidArgument
	case codes.Unavailable:
		kind = ErrUnavailable
	}
	return &APIError{Kind: kind, Resource: resource, err: err}
}
