// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package lro

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// OperationsAPI is the status-check capability the poller consumes. It is
// satisfied by the GAPIC adapter of any platform client.
type OperationsAPI interface {
	GetOperation(ctx context.Context, name string) (*longrunningpb.Operation, error)
}

// Poller blocks on a long-running operation until it reaches a terminal
// state.
//
// Terminal states are absorbing: once an operation reports done, the cached
// state is returned without further status checks. On failure the error
// payload is surfaced verbatim; the poller never retries a failed operation.
type Poller struct {
	api     OperationsAPI
	backoff gax.Backoff
	logger  *slog.Logger
}

// Option configures a [Poller].
type Option func(*Poller)

// WithBackoff overrides the poll cadence.
func WithBackoff(b gax.Backoff) Option {
	return func(p *Poller) { p.backoff = b }
}

// WithLogger sets the logger used for poll progress.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) { p.logger = logger }
}

// NewPoller creates a poller over the given operations API.
//
// The default cadence starts at five seconds and doubles up to a five minute
// ceiling, so failures surface fast while long deployments do not hammer the
// service.
func NewPoller(api OperationsAPI, opts ...Option) *Poller {
	p := &Poller{
		api: api,
		backoff: gax.Backoff{
			Initial:    5 * time.Second,
			Max:        5 * time.Minute,
			Multiplier: 2,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Wait blocks until op is terminal and returns the final operation state.
//
// If op already carries a completed state it is returned without a status
// check. When the operation finished with an error, the returned error is
// the operation's status converted verbatim; the terminal operation is still
// returned alongside it.
func (p *Poller) Wait(ctx context.Context, op *longrunningpb.Operation) (*longrunningpb.Operation, error) {
	if op == nil {
		return nil, fmt.Errorf("operation is nil")
	}

	backoff := p.backoff
	for !op.GetDone() {
		pause := backoff.Pause()
		p.logger.InfoContext(ctx, "Waiting for operation",
			slog.String("operation", op.GetName()),
			slog.Duration("next_poll", pause),
		)
		if err := gax.Sleep(ctx, pause); err != nil {
			return nil, err
		}

		polled, err := p.api.GetOperation(ctx, op.GetName())
		if err != nil {
			return nil, fmt.Errorf("poll operation %s: %w", op.GetName(), err)
		}
		op = polled
	}

	if st := op.GetError(); st != nil {
		return op, status.ErrorProto(st)
	}
	return op, nil
}

// ResponseInto unmarshals the terminal operation's response payload into m.
func ResponseInto(op *longrunningpb.Operation, m proto.Message) error {
	resp := op.GetResponse()
	if resp == nil {
		return fmt.Errorf("operation %s has no response payload", op.GetName())
	}
	if err := resp.UnmarshalTo(m); err != nil {
		return fmt.Errorf("unmarshal operation %s response: %w", op.GetName(), err)
	}
	return nil
}
