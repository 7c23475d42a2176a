// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging provides context-based structured logging on top of
// [log/slog].
//
// A logger is attached to a [context.Context] with [NewContext] and read
// back with [FromContext]. Service constructors default to the logger found
// in the construction context, so one logger set up at the program edge
// propagates through every SDK call:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	ctx := logging.NewContext(ctx, logger)
//	svc, err := artifact.NewService(ctx, cctx)
//
// When the context carries no logger, FromContext returns a JSON logger
// writing to stdout at INFO level, so logging always works.
package logging
