// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package vertexsdk

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/auth/credentials"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// ClientContext carries the project, location and credential configuration
// shared by every service in the SDK.
//
// It is a plain value passed into each constructor. Nothing in this module
// reads configuration from process-wide state.
type ClientContext struct {
	// ProjectID is the Google Cloud project ID.
	ProjectID string

	// Location is the geographic location for the platform services
	// (e.g. "us-central1").
	Location string

	// StagingBucket is the Cloud Storage bucket used for staging deployment
	// artifacts, in the form "gs://bucket-name". Only required for
	// operations that upload artifacts before resource creation.
	StagingBucket string

	// TokenSource optionally overrides credential detection with an
	// explicit OAuth2 token source.
	TokenSource oauth2.TokenSource
}

// Validate reports whether the context carries the fields every service
// requires.
func (c ClientContext) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("projectID is required")
	}
	if c.Location == "" {
		return fmt.Errorf("location is required")
	}
	return nil
}

// LocationPath returns the parent path of all location-scoped collections,
// "projects/{project}/locations/{location}".
func (c ClientContext) LocationPath() string {
	return "projects/" + c.ProjectID + "/locations/" + c.Location
}

// StagingBucketName returns the staging bucket without the "gs://" scheme.
//
// Returns an error if the bucket is unset or does not use the gs scheme.
func (c ClientContext) StagingBucketName() (string, error) {
	if c.StagingBucket == "" {
		return "", fmt.Errorf("staging bucket is required: %w", ErrInvalidArgument)
	}
	if !strings.HasPrefix(c.StagingBucket, "gs://") {
		return "", fmt.Errorf("staging bucket %q must start with gs://: %w", c.StagingBucket, ErrInvalidArgument)
	}
	return strings.TrimPrefix(c.StagingBucket, "gs://"), nil
}

// ClientOptions builds the transport options for a GAPIC client.
//
// When a TokenSource is configured it is used directly. Otherwise Application
// Default Credentials are detected with the given scopes. Extra options are
// appended after the credential option so callers can override endpoints or
// credentials per service.
func (c ClientContext) ClientOptions(ctx context.Context, scopes []string, extra ...option.ClientOption) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	if c.TokenSource != nil {
		opts = append(opts, option.WithTokenSource(c.TokenSource))
	} else {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes: scopes,
		})
		if err != nil {
			return nil, fmt.Errorf("detect default credentials: %w", err)
		}
		opts = append(opts, option.WithAuthCredentials(creds))
	}
	return append(opts, extra...), nil
}
