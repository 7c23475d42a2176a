// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoningengine

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/bytedance/sonic"
)

// ObjectStore is the storage capability the packager consumes. The GCS
// adapter implements it; tests substitute spies.
type ObjectStore interface {
	// EnsureBucket makes sure the bucket exists, creating it in location
	// when absent.
	EnsureBucket(ctx context.Context, bucket, location string) error

	// Upload writes data to gs://{bucket}/{object}, replacing any previous
	// content.
	Upload(ctx context.Context, bucket, object string, data []byte) error
}

// Serializer encodes an application object into the bundle's object blob.
type Serializer interface {
	Serialize(app Queryable) ([]byte, error)
}

// GobSerializer encodes the application with encoding/gob. Concrete
// application types must be registered with [gob.Register] before use.
type GobSerializer struct{}

func (GobSerializer) Serialize(app Queryable) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&app); err != nil {
		return nil, fmt.Errorf("gob-encode application: %w", err)
	}
	return buf.Bytes(), nil
}

// JSONSerializer encodes the application as JSON. Suitable for applications
// whose state is fully exported and JSON-representable.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(app Queryable) ([]byte, error) {
	data, err := sonic.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("json-encode application: %w", err)
	}
	return data, nil
}

// Bundle holds the storage URIs of one staged deployment.
type Bundle struct {
	// ObjectURI locates the serialized application.
	ObjectURI string

	// RequirementsURI locates the requirements blob. Empty when the
	// deployment has no requirements; no empty blob is written.
	RequirementsURI string

	// DependenciesURI locates the extra-packages archive.
	DependenciesURI string
}

// Packager builds and uploads deployment bundles.
type Packager struct {
	store      ObjectStore
	serializer Serializer
	logger     *slog.Logger
}

// NewPackager creates a packager over store. A nil serializer defaults to
// [GobSerializer].
func NewPackager(store ObjectStore, serializer Serializer, logger *slog.Logger) *Packager {
	if serializer == nil {
		serializer = GobSerializer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Packager{store: store, serializer: serializer, logger: logger}
}

// Stage serializes app, archives extraPackages, and uploads the bundle blobs
// under gs://{bucket}/{dirName}/. The bundle is built fully in memory before
// the first upload; nothing is written on a serialization or archive
// failure.
func (p *Packager) Stage(ctx context.Context, app Queryable, bucket, location, dirName string, requirements, extraPackages []string) (*Bundle, error) {
	object, err := p.serializer.Serialize(app)
	if err != nil {
		return nil, err
	}
	archive, err := buildArchive(extraPackages)
	if err != nil {
		return nil, err
	}

	if err := p.store.EnsureBucket(ctx, bucket, location); err != nil {
		return nil, fmt.Errorf("ensure staging bucket %q: %w", bucket, err)
	}

	b := &Bundle{
		ObjectURI:       "gs://" + bucket + "/" + dirName + "/" + objectBlobName,
		DependenciesURI: "gs://" + bucket + "/" + dirName + "/" + dependenciesBlobName,
	}
	if err := p.upload(ctx, bucket, dirName+"/"+objectBlobName, object); err != nil {
		return nil, err
	}
	if len(requirements) > 0 {
		if err := p.upload(ctx, bucket, dirName+"/"+requirementsBlobName, []byte(strings.Join(requirements, "\n"))); err != nil {
			return nil, err
		}
		b.RequirementsURI = "gs://" + bucket + "/" + dirName + "/" + requirementsBlobName
	}
	if err := p.upload(ctx, bucket, dirName+"/"+dependenciesBlobName, archive); err != nil {
		return nil, err
	}
	return b, nil
}

func (p *Packager) upload(ctx context.Context, bucket, object string, data []byte) error {
	p.logger.InfoContext(ctx, "Uploading bundle blob",
		slog.String("bucket", bucket),
		slog.String("object", object),
		slog.Int("bytes", len(data)),
	)
	if err := p.store.Upload(ctx, bucket, object, data); err != nil {
		return fmt.Errorf("upload gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}

// buildArchive packs the named files and directories (recursively) into one
// gzip-compressed tar stream, fully in memory. Entry names keep the paths as
// given, slash-separated.
func buildArchive(paths []string) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, path := range paths {
		err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			hdr, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return err
			}
			hdr.Name = filepath.ToSlash(p)
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			_, err = io.Copy(tw, f)
			f.Close()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("archive %q: %w", path, err)
		}
	}
	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gcsStore adapts the cloud storage client to the [ObjectStore] capability.
type gcsStore struct {
	client    *storage.Client
	projectID string
}

var _ ObjectStore = (*gcsStore)(nil)

func (s *gcsStore) EnsureBucket(ctx context.Context, bucket, location string) error {
	_, err := s.client.Bucket(bucket).Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return err
	}
	return s.client.Bucket(bucket).Create(ctx, s.projectID, &storage.BucketAttrs{Location: location})
}

func (s *gcsStore) Upload(ctx context.Context, bucket, object string, data []byte) error {
	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
