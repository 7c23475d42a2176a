// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package lro waits on asynchronous remote operations.
//
// Create and delete calls against the platform return a pollable operation
// handle instead of an immediate result. [Poller.Wait] drives that handle to
// a terminal state from the caller's goroutine, blocking synchronously; there
// is no background scheduler. Retry policy, if any, lives in the transport
// beneath this package.
package lro
