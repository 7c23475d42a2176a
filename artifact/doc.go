// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact manages metadata Artifacts, the lineage-tracking records
// that describe other platform resources.
//
// An [Artifact] is a handle bound to one row in a metadata store. [Service]
// provides the collection operations (create, get, list by filter, update,
// delete). [Resolver] idempotently links a first-class platform resource
// such as a deployed model to the Artifact that mirrors it; the mapping from
// resource kind to schema title is an open registry, not an inheritance
// hierarchy.
//
// Creation never enforces uniqueness of (schema_title, uri); when the store
// holds duplicates, lookups resolve deterministically to the most recently
// created row and log the ambiguity.
package artifact
