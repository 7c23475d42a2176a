// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoningengine

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/tiendc/go-deepcopy"

	"github.com/go-a2a/vertexsdk"
)

// Collection is the collection segment of reasoning engine resource names.
const Collection = "reasoningEngines"

const (
	objectBlobName       = "reasoning_engine.pkl"
	requirementsBlobName = "requirements.txt"
	dependenciesBlobName = "dependencies.tar.gz"

	defaultGCSDirName = "reasoning_engine"
)

// supportedRuntimeVersions is the allow-list of deployable runtime versions,
// as major.minor strings.
var supportedRuntimeVersions = []string{"1.22", "1.23", "1.24"}

// Queryable is the capability an application must implement to be deployed.
type Queryable interface {
	// Query handles one request. Input and output are free-form JSON-shaped
	// maps.
	Query(ctx context.Context, input map[string]any) (map[string]any, error)
}

// Cloneable is an optional capability. When the application implements it,
// deployment packages a clone so mutable state of the caller's instance
// cannot alias into the deployed copy.
type Cloneable interface {
	Clone() Queryable
}

// CreateOptions configure one deployment.
type CreateOptions struct {
	// DisplayName is the user-visible name of the engine. Required.
	DisplayName string

	// Description of the engine.
	Description string

	// Requirements is the literal, ordered list of dependency specifiers.
	// Mutually exclusive with RequirementsFile.
	Requirements []string

	// RequirementsFile is a path to a requirements file read line by line,
	// preserving order. Mutually exclusive with Requirements.
	RequirementsFile string

	// ExtraPackages lists local files or directories shipped alongside the
	// application. Every path must exist before any upload starts.
	ExtraPackages []string

	// GCSDirName is the directory under the staging bucket holding the
	// bundle blobs. Defaults to "reasoning_engine".
	GCSDirName string

	// RuntimeVersion is the major.minor runtime version to deploy for.
	// Defaults to the running toolchain's version; an override that differs
	// from it is logged, an unsupported one is rejected.
	RuntimeVersion string

	// Serializer encodes the application object for the bundle. Defaults to
	// [GobSerializer].
	Serializer Serializer
}

// clone deep-copies the options so later caller mutation of slices cannot
// reach into a staged bundle.
func (o CreateOptions) clone() (CreateOptions, error) {
	var out CreateOptions
	if err := deepcopy.Copy(&out, &o); err != nil {
		return CreateOptions{}, fmt.Errorf("copy create options: %w", err)
	}
	out.Serializer = o.Serializer
	return out, nil
}

// detectRuntimeVersion reduces the running toolchain version to major.minor.
func detectRuntimeVersion() string {
	v := strings.TrimPrefix(runtime.Version(), "go")
	if segs := strings.SplitN(v, ".", 3); len(segs) >= 2 {
		return segs[0] + "." + segs[1]
	}
	return v
}

// resolveRuntimeVersion applies the default and the allow-list to an
// optional caller override. It returns the version to deploy with and
// whether the override disagrees with the running toolchain.
func resolveRuntimeVersion(override string) (version string, mismatch bool, err error) {
	detected := detectRuntimeVersion()
	version = override
	if version == "" {
		version = detected
	}
	if !slices.Contains(supportedRuntimeVersions, version) {
		return "", false, &UnsupportedRuntimeError{Version: version, Supported: supportedRuntimeVersions}
	}
	return version, override != "" && override != detected, nil
}

// normalizeRequirements collapses the two accepted requirement forms into
// one ordered list. Exactly one of the forms may be set; the file form is
// read line by line with trailing blank lines dropped.
func normalizeRequirements(literal []string, file string, readFile func(string) ([]byte, error)) ([]string, error) {
	if len(literal) > 0 && file != "" {
		return nil, fmt.Errorf("requirements and requirements file are mutually exclusive: %w", vertexsdk.ErrInvalidArgument)
	}
	if file == "" {
		return literal, nil
	}
	data, err := readFile(file)
	if err != nil {
		return nil, fmt.Errorf("read requirements file %q: %v: %w", file, err, vertexsdk.ErrInvalidArgument)
	}
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
