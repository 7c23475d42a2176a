// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package reasoningengine

import (
	"fmt"
	"reflect"

	"github.com/go-json-experiment/json"
	"google.golang.org/protobuf/types/known/structpb"
)

// querySchema is the JSON-schema-shaped description of an application's
// query operation, attached to the resource spec's class methods.
type querySchema struct {
	Name        string       `json:"name"`
	APIMode     string       `json:"api_mode"`
	Description string       `json:"description,omitempty"`
	Parameters  schemaObject `json:"parameters"`
}

type schemaObject struct {
	Type       string                    `json:"type"`
	Properties map[string]schemaProperty `json:"properties"`
	Required   []string                  `json:"required"`
}

type schemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// validateQueryMethod checks that app's Query method is bindable: the value
// is non-nil and the method can be looked up and invoked through it.
func validateQueryMethod(app Queryable) error {
	v := reflect.ValueOf(app)
	if !v.IsValid() {
		return &SignatureError{Reason: "application is nil"}
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Interface:
		if v.IsNil() {
			return &SignatureError{Reason: fmt.Sprintf("application is a nil %s, the query method has no receiver to bind to", v.Type())}
		}
	}
	if m := v.MethodByName("Query"); !m.IsValid() {
		return &SignatureError{Reason: fmt.Sprintf("%s has no callable Query method", v.Type())}
	}
	return nil
}

// deriveQuerySchema builds the structural schema of app's query operation.
//
// Derivation is best effort: the caller logs and swallows a failure rather
// than aborting the deployment.
func deriveQuerySchema(app Queryable) (*structpb.Struct, error) {
	if err := validateQueryMethod(app); err != nil {
		return nil, err
	}
	s := querySchema{
		Name:        "query",
		Description: fmt.Sprintf("Runs one query against %s.", reflect.TypeOf(app)),
		Parameters: schemaObject{
			Type: "object",
			Properties: map[string]schemaProperty{
				"input": {Type: "object", Description: "Free-form request payload."},
			},
			Required: []string{"input"},
		},
	}

	// Round-trip through JSON so the struct shape, not Go field names,
	// defines the schema handed to the service.
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal query schema: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal query schema: %w", err)
	}
	pb, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("convert query schema: %w", err)
	}
	return pb, nil
}
