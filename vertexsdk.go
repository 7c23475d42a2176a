// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package vertexsdk is a Go client SDK for a managed cloud machine-learning
// platform. It marshals local calls into remote-procedure requests against
// the platform's resource collections (models, metadata artifacts, reasoning
// engine deployments), waits on long-running operations, and binds the
// results to typed local handles.
//
// All computation happens inside the remote service. This module only
// addresses resources ([resourcename]), drives the create/poll/re-fetch
// lifecycle ([lro], [resource]), links resources into the metadata lineage
// store ([artifact]), and stages user code for deployment
// ([reasoningengine]).
//
// Every constructor takes an explicit [ClientContext]; there is no ambient
// process-wide configuration.
package vertexsdk

// Version is the version of the SDK.
var Version = "v0.0.0"
