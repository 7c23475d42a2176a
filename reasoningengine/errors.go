// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoningengine

import (
	"fmt"
	"strings"

	"github.com/go-a2a/vertexsdk"
)

// UnsupportedRuntimeError reports a runtime version outside the deployable
// allow-list. It matches [vertexsdk.ErrInvalidArgument].
type UnsupportedRuntimeError struct {
	Version   string
	Supported []string
}

func (e *UnsupportedRuntimeError) Error() string {
	return fmt.Sprintf("unsupported runtime version %q, supported versions are %s", e.Version, strings.Join(e.Supported, ", "))
}

func (e *UnsupportedRuntimeError) Is(target error) bool {
	return target == vertexsdk.ErrInvalidArgument
}

// SignatureError reports an application whose Query method cannot be bound
// and invoked. It matches [vertexsdk.ErrInvalidArgument].
type SignatureError struct {
	Reason string
}

func (e *SignatureError) Error() string {
	return "query method is not bindable: " + e.Reason
}

func (e *SignatureError) Is(target error) bool {
	return target == vertexsdk.ErrInvalidArgument
}
