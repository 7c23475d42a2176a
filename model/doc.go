// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package model provides read and lifecycle access to registered models.
//
// A [Model] is a handle bound to one registry entry. Handles satisfy the
// lineage resolver's target contract, so a model can be mirrored into the
// metadata store without any model-specific glue.
package model
