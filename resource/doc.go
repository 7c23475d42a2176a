// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package resource provides the generic local handle bound to one remote
// platform resource.
//
// A handle is configured with an [Ops] value naming its collection and the
// get/list/delete capabilities for it, rather than inheriting from a CRUD
// base type. Resource packages (artifact, model, reasoningengine) embed
// [Handle] and layer their typed accessors over the snapshot it owns.
package resource
