// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package resourcename parses and formats fully-qualified platform resource
// names from their components (project, location, collection, resource ID,
// and the optional metadata-store segment).
//
// Names round-trip: for any valid component tuple, formatting with
// [Name.String] and parsing back with [Parse] yields the original tuple.
package resourcename
