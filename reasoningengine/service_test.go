// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoningengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"cloud.google.com/go/longrunning/autogen/longrunningpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/go-a2a/vertexsdk"
)

var testCtx = vertexsdk.ClientContext{
	ProjectID:     "test-project",
	Location:      "us-central1",
	StagingBucket: "gs://staging",
}

// queryApp is a minimal deployable application.
type queryApp struct {
	Prefix string
}

func (a *queryApp) Query(ctx context.Context, input map[string]any) (map[string]any, error) {
	return map[string]any{"echo": input}, nil
}

// cloneApp tracks whether deployment packaged a clone.
type cloneApp struct {
	queryApp
	cloned bool
}

func (a *cloneApp) Clone() Queryable {
	return &cloneApp{queryApp: a.queryApp, cloned: true}
}

// stubSerializer sidesteps gob registration and records what it was handed.
type stubSerializer struct {
	apps []Queryable
}

func (s *stubSerializer) Serialize(app Queryable) ([]byte, error) {
	s.apps = append(s.apps, app)
	return []byte("serialized"), nil
}

// spyStore records bucket and upload traffic.
type spyStore struct {
	ensured []string
	uploads map[string][]byte
	order   []string
}

func newSpyStore() *spyStore {
	return &spyStore{uploads: make(map[string][]byte)}
}

func (s *spyStore) EnsureBucket(ctx context.Context, bucket, location string) error {
	s.ensured = append(s.ensured, bucket+"@"+location)
	return nil
}

func (s *spyStore) Upload(ctx context.Context, bucket, object string, data []byte) error {
	key := bucket + "/" + object
	s.uploads[key] = append([]byte(nil), data...)
	s.order = append(s.order, key)
	return nil
}

// fakeEngines is an in-memory lifecycle API completing every operation
// immediately.
type fakeEngines struct {
	rows    map[string]*aiplatformpb.ReasoningEngine
	creates []*aiplatformpb.CreateReasoningEngineRequest
	updates []*aiplatformpb.UpdateReasoningEngineRequest
	nextID  int
}

func newFakeEngines() *fakeEngines {
	return &fakeEngines{rows: make(map[string]*aiplatformpb.ReasoningEngine)}
}

func (f *fakeEngines) CreateReasoningEngine(ctx context.Context, req *aiplatformpb.CreateReasoningEngineRequest) (*longrunningpb.Operation, error) {
	f.creates = append(f.creates, req)
	f.nextID++
	row := proto.Clone(req.GetReasoningEngine()).(*aiplatformpb.ReasoningEngine)
	row.Name = fmt.Sprintf("%s/reasoningEngines/engine-%d", req.GetParent(), f.nextID)
	f.rows[row.Name] = row

	resp, err := anypb.New(row)
	if err != nil {
		return nil, err
	}
	return &longrunningpb.Operation{
		Name:   "operations/create",
		Done:   true,
		Result: &longrunningpb.Operation_Response{Response: resp},
	}, nil
}

func (f *fakeEngines) GetReasoningEngine(ctx context.Context, req *aiplatformpb.GetReasoningEngineRequest) (*aiplatformpb.ReasoningEngine, error) {
	row, ok := f.rows[req.GetName()]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "reasoning engine %s not found", req.GetName())
	}
	return proto.Clone(row).(*aiplatformpb.ReasoningEngine), nil
}

func (f *fakeEngines) ListReasoningEngines(ctx context.Context, req *aiplatformpb.ListReasoningEnginesRequest) ([]*aiplatformpb.ReasoningEngine, error) {
	var out []*aiplatformpb.ReasoningEngine
	for _, row := range f.rows {
		out = append(out, proto.Clone(row).(*aiplatformpb.ReasoningEngine))
	}
	return out, nil
}

func (f *fakeEngines) UpdateReasoningEngine(ctx context.Context, req *aiplatformpb.UpdateReasoningEngineRequest) (*longrunningpb.Operation, error) {
	f.updates = append(f.updates, req)
	name := req.GetReasoningEngine().GetName()
	row, ok := f.rows[name]
	if !ok {
		return nil, status.Errorf(codes.NotFound, "reasoning engine %s not found", name)
	}
	for _, path := range req.GetUpdateMask().GetPaths() {
		switch path {
		case "display_name":
			row.DisplayName = req.GetReasoningEngine().GetDisplayName()
		case "description":
			row.Description = req.GetReasoningEngine().GetDescription()
		}
	}
	return &longrunningpb.Operation{Name: "operations/update", Done: true}, nil
}

func (f *fakeEngines) DeleteReasoningEngine(ctx context.Context, req *aiplatformpb.DeleteReasoningEngineRequest) (*longrunningpb.Operation, error) {
	if _, ok := f.rows[req.GetName()]; !ok {
		return nil, status.Errorf(codes.NotFound, "reasoning engine %s not found", req.GetName())
	}
	delete(f.rows, req.GetName())
	return &longrunningpb.Operation{Name: "operations/delete", Done: true}, nil
}

func (f *fakeEngines) GetOperation(ctx context.Context, name string) (*longrunningpb.Operation, error) {
	return &longrunningpb.Operation{Name: name, Done: true}, nil
}

// fakeExecution answers queries with a scripted output value.
type fakeExecution struct {
	output   *structpb.Value
	requests []*aiplatformpb.QueryReasoningEngineRequest
}

func (f *fakeExecution) QueryReasoningEngine(ctx context.Context, req *aiplatformpb.QueryReasoningEngineRequest) (*aiplatformpb.QueryReasoningEngineResponse, error) {
	f.requests = append(f.requests, req)
	return &aiplatformpb.QueryReasoningEngineResponse{Output: f.output}, nil
}

type testHarness struct {
	svc   *Service
	api   *fakeEngines
	exec  *fakeExecution
	store *spyStore
	logs  *bytes.Buffer
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	h := &testHarness{
		api:   newFakeEngines(),
		exec:  &fakeExecution{},
		store: newSpyStore(),
		logs:  &bytes.Buffer{},
	}
	logger := slog.New(slog.NewTextHandler(h.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h.svc = newService(testCtx, h.api, h.exec, h.store, WithLogger(logger))
	return h
}

func baseOptions() CreateOptions {
	return CreateOptions{
		DisplayName:    "demo app",
		RuntimeVersion: "1.24",
		Serializer:     &stubSerializer{},
	}
}

func TestService_Create(t *testing.T) {
	h := newTestHarness(t)

	opts := baseOptions()
	opts.Description = "demo"
	opts.Requirements = []string{"pkg-a==1.0", "pkg-b"}

	engine, err := h.svc.Create(t.Context(), &queryApp{Prefix: "p"}, opts)
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if engine.DisplayName() != "demo app" {
		t.Errorf("DisplayName() = %q, want %q", engine.DisplayName(), "demo app")
	}

	if len(h.store.ensured) != 1 || h.store.ensured[0] != "staging@us-central1" {
		t.Errorf("EnsureBucket calls = %v, want [staging@us-central1]", h.store.ensured)
	}
	if got := string(h.store.uploads["staging/reasoning_engine/reasoning_engine.pkl"]); got != "serialized" {
		t.Errorf("object blob = %q, want %q", got, "serialized")
	}
	if got := string(h.store.uploads["staging/reasoning_engine/requirements.txt"]); got != "pkg-a==1.0\npkg-b" {
		t.Errorf("requirements blob = %q, want %q", got, "pkg-a==1.0\npkg-b")
	}
	if _, ok := h.store.uploads["staging/reasoning_engine/dependencies.tar.gz"]; !ok {
		t.Error("dependencies blob was not uploaded")
	}

	if len(h.api.creates) != 1 {
		t.Fatalf("CreateReasoningEngine calls = %d, want 1", len(h.api.creates))
	}
	spec := h.api.creates[0].GetReasoningEngine().GetSpec()
	pkg := spec.GetPackageSpec()
	if pkg.GetPythonVersion() != "1.24" {
		t.Errorf("runtime version = %q, want 1.24", pkg.GetPythonVersion())
	}
	if pkg.GetPickleObjectGcsUri() != "gs://staging/reasoning_engine/reasoning_engine.pkl" {
		t.Errorf("object uri = %q", pkg.GetPickleObjectGcsUri())
	}
	if pkg.GetRequirementsGcsUri() != "gs://staging/reasoning_engine/requirements.txt" {
		t.Errorf("requirements uri = %q", pkg.GetRequirementsGcsUri())
	}
	if pkg.GetDependencyFilesGcsUri() != "gs://staging/reasoning_engine/dependencies.tar.gz" {
		t.Errorf("dependencies uri = %q", pkg.GetDependencyFilesGcsUri())
	}

	if len(spec.GetClassMethods()) != 1 {
		t.Fatalf("class methods = %d, want 1", len(spec.GetClassMethods()))
	}
	if got := spec.GetClassMethods()[0].AsMap()["name"]; got != "query" {
		t.Errorf("class method name = %v, want query", got)
	}
}

// No requirements means no requirements blob and an unset requirements uri.
func TestService_Create_NoRequirements(t *testing.T) {
	h := newTestHarness(t)

	if _, err := h.svc.Create(t.Context(), &queryApp{}, baseOptions()); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if _, ok := h.store.uploads["staging/reasoning_engine/requirements.txt"]; ok {
		t.Error("empty requirements produced a blob, want omission")
	}
	if uri := h.api.creates[0].GetReasoningEngine().GetSpec().GetPackageSpec().GetRequirementsGcsUri(); uri != "" {
		t.Errorf("requirements uri = %q, want unset", uri)
	}
}

func TestService_Create_RequirementsFileMatchesList(t *testing.T) {
	lines := []string{"pkg-a==1.0", "pkg-b", "", "pkg-c>=2"}

	file := filepath.Join(t.TempDir(), "requirements.txt")
	var content string
	for _, line := range lines {
		content += line + "\n"
	}
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fromList := newTestHarness(t)
	optsList := baseOptions()
	optsList.Requirements = lines
	if _, err := fromList.svc.Create(t.Context(), &queryApp{}, optsList); err != nil {
		t.Fatalf("Create() with literal requirements: %v", err)
	}

	fromFile := newTestHarness(t)
	optsFile := baseOptions()
	optsFile.RequirementsFile = file
	if _, err := fromFile.svc.Create(t.Context(), &queryApp{}, optsFile); err != nil {
		t.Fatalf("Create() with requirements file: %v", err)
	}

	const key = "staging/reasoning_engine/requirements.txt"
	if !bytes.Equal(fromList.store.uploads[key], fromFile.store.uploads[key]) {
		t.Errorf("requirements blobs differ: list %q, file %q", fromList.store.uploads[key], fromFile.store.uploads[key])
	}
}

func TestService_Create_RequirementsFormsAreExclusive(t *testing.T) {
	h := newTestHarness(t)

	opts := baseOptions()
	opts.Requirements = []string{"pkg-a"}
	opts.RequirementsFile = "requirements.txt"
	_, err := h.svc.Create(t.Context(), &queryApp{}, opts)
	if !errors.Is(err, vertexsdk.ErrInvalidArgument) {
		t.Fatalf("Create() error = %v, want ErrInvalidArgument", err)
	}
}

// A bad extra package path fails before anything is uploaded or created.
func TestService_Create_MissingExtraPackage(t *testing.T) {
	h := newTestHarness(t)

	opts := baseOptions()
	opts.ExtraPackages = []string{filepath.Join(t.TempDir(), "does-not-exist")}
	_, err := h.svc.Create(t.Context(), &queryApp{}, opts)
	if !errors.Is(err, vertexsdk.ErrInvalidArgument) {
		t.Fatalf("Create() error = %v, want ErrInvalidArgument", err)
	}
	if len(h.store.uploads) != 0 || len(h.store.ensured) != 0 {
		t.Errorf("validation failure still touched storage: uploads=%d ensured=%d", len(h.store.uploads), len(h.store.ensured))
	}
	if len(h.api.creates) != 0 {
		t.Errorf("validation failure still reached the transport: %d create calls", len(h.api.creates))
	}
}

// A typed-nil application has no receiver to bind Query to.
func TestService_Create_UnbindableQuery(t *testing.T) {
	h := newTestHarness(t)

	var app *queryApp
	_, err := h.svc.Create(t.Context(), app, baseOptions())

	var sigErr *SignatureError
	if !errors.As(err, &sigErr) {
		t.Fatalf("Create() error = %v, want *SignatureError", err)
	}
	if !errors.Is(err, vertexsdk.ErrInvalidArgument) {
		t.Errorf("Create() error = %v, want ErrInvalidArgument match", err)
	}
	if len(h.store.uploads) != 0 || len(h.api.creates) != 0 {
		t.Error("signature failure reached storage or transport")
	}
}

func TestService_Create_UnsupportedRuntime(t *testing.T) {
	h := newTestHarness(t)

	opts := baseOptions()
	opts.RuntimeVersion = "3.12"
	_, err := h.svc.Create(t.Context(), &queryApp{}, opts)

	var verErr *UnsupportedRuntimeError
	if !errors.As(err, &verErr) {
		t.Fatalf("Create() error = %v, want *UnsupportedRuntimeError", err)
	}
	if verErr.Version != "3.12" {
		t.Errorf("rejected version = %q, want 3.12", verErr.Version)
	}
}

func TestService_Create_ClonesCloneable(t *testing.T) {
	h := newTestHarness(t)

	ser := &stubSerializer{}
	opts := baseOptions()
	opts.Serializer = ser

	if _, err := h.svc.Create(t.Context(), &cloneApp{}, opts); err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if len(ser.apps) != 1 {
		t.Fatalf("serializer saw %d apps, want 1", len(ser.apps))
	}
	packaged, ok := ser.apps[0].(*cloneApp)
	if !ok || !packaged.cloned {
		t.Error("deployment packaged the original application, want the clone")
	}
}

func TestService_Create_MissingDisplayName(t *testing.T) {
	h := newTestHarness(t)

	opts := baseOptions()
	opts.DisplayName = ""
	if _, err := h.svc.Create(t.Context(), &queryApp{}, opts); !errors.Is(err, vertexsdk.ErrInvalidArgument) {
		t.Fatalf("Create() error = %v, want ErrInvalidArgument", err)
	}
}

func TestService_Update(t *testing.T) {
	h := newTestHarness(t)

	created, err := h.svc.Create(t.Context(), &queryApp{}, baseOptions())
	if err != nil {
		t.Fatal(err)
	}

	updated, err := h.svc.Update(t.Context(), created.ResourceName(), UpdateParams{DisplayName: "renamed"})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if updated.DisplayName() != "renamed" {
		t.Errorf("DisplayName() = %q, want renamed", updated.DisplayName())
	}
	if paths := h.api.updates[0].GetUpdateMask().GetPaths(); len(paths) != 1 || paths[0] != "display_name" {
		t.Errorf("update mask = %v, want [display_name]", paths)
	}

	if _, err := h.svc.Update(t.Context(), created.ResourceName(), UpdateParams{}); !errors.Is(err, vertexsdk.ErrInvalidArgument) {
		t.Errorf("empty Update() error = %v, want ErrInvalidArgument", err)
	}
}

func TestService_Delete(t *testing.T) {
	h := newTestHarness(t)

	created, err := h.svc.Create(t.Context(), &queryApp{}, baseOptions())
	if err != nil {
		t.Fatal(err)
	}
	if err := h.svc.Delete(t.Context(), created.ResourceName()); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if _, err := h.svc.Get(t.Context(), created.ResourceName()); !errors.Is(err, vertexsdk.ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestEngine_Query(t *testing.T) {
	tests := map[string]struct {
		output any
		want   map[string]any
	}{
		"object output returned as-is": {
			output: map[string]any{"answer": "42"},
			want:   map[string]any{"answer": "42"},
		},
		"scalar output wrapped": {
			output: "42",
			want:   map[string]any{"output": "42"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := newTestHarness(t)
			out, err := structpb.NewValue(tt.output)
			if err != nil {
				t.Fatal(err)
			}
			h.exec.output = out

			engine, err := h.svc.Create(t.Context(), &queryApp{}, baseOptions())
			if err != nil {
				t.Fatal(err)
			}
			got, err := engine.Query(t.Context(), map[string]any{"question": "life"})
			if err != nil {
				t.Fatalf("Query() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Query() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("Query()[%s] = %v, want %v", k, got[k], v)
				}
			}

			req := h.exec.requests[0]
			if req.GetName() != engine.ResourceName() {
				t.Errorf("query target = %q, want %q", req.GetName(), engine.ResourceName())
			}
			if q := req.GetInput().AsMap()["question"]; q != "life" {
				t.Errorf("query input question = %v, want life", q)
			}
		})
	}
}

func TestEngine_OperationSchemas(t *testing.T) {
	h := newTestHarness(t)

	engine, err := h.svc.Create(t.Context(), &queryApp{}, baseOptions())
	if err != nil {
		t.Fatal(err)
	}
	schemas := engine.OperationSchemas()
	if len(schemas) != 1 {
		t.Fatalf("OperationSchemas() returned %d schemas, want 1", len(schemas))
	}
	if schemas[0]["name"] != "query" {
		t.Errorf("schema name = %v, want query", schemas[0]["name"])
	}
	// Cached per handle.
	if &schemas[0] != &engine.OperationSchemas()[0] {
		t.Error("OperationSchemas() recomputed the projection")
	}
}
