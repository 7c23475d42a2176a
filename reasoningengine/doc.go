// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package reasoningengine deploys queryable applications to the platform's
// managed reasoning engine runtime and drives their lifecycle.
//
// An application is any value satisfying [Queryable]. [Service.Create]
// packages it into a deployment bundle of three staged blobs (the serialized
// object, the requirements list, and a tar.gz of extra packages), uploads the
// bundle to the configured staging bucket, and creates the remote resource,
// blocking until the creation operation is terminal. [Engine] handles the
// deployed resource and routes [Engine.Query] calls through the execution
// API.
//
// All local validation (runtime version, query signature, requirements form,
// extra package paths) happens before any network or storage call.
package reasoningengine
