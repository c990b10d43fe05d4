// Package schema validates trace entries against the embedded entry schema.
package schema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"agenttrace/internal/errors"
	"agenttrace/internal/tracelog"
)

//go:embed trace-entry.schema.json
var entrySchema []byte

const schemaURL = "trace-entry.schema.json"

// Source returns the raw entry schema.
func Source() []byte {
	return append([]byte(nil), entrySchema...)
}

// Validator checks entries against the compiled schema.
type Validator struct {
	schema *jsonschema.Schema
}

// Violation is one entry that failed validation.
type Violation struct {
	Index     int    `json:"index"`
	File      string `json:"file"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(entrySchema)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	s, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate checks one JSON-encoded entry.
func (v *Validator) Validate(raw []byte) error {
	var instance any
	if err := json.Unmarshal(raw, &instance); err != nil {
		return errors.New(errors.SchemaInvalid, "Entry is not valid JSON", err)
	}
	if err := v.schema.Validate(instance); err != nil {
		return errors.New(errors.SchemaInvalid, "Entry does not match schema", err)
	}
	return nil
}

// Check validates every entry. Entries parsed from a log are checked in
// their original form; others are encoded first.
func (v *Validator) Check(entries []tracelog.Entry) []Violation {
	var violations []Violation
	for i := range entries {
		e := &entries[i]
		raw := []byte(e.Raw)
		if len(raw) == 0 {
			encoded, err := json.Marshal(e)
			if err != nil {
				violations = append(violations, Violation{Index: i, File: e.File, Timestamp: e.Timestamp, Message: err.Error()})
				continue
			}
			raw = encoded
		}
		if err := v.Validate(raw); err != nil {
			violations = append(violations, Violation{Index: i, File: e.File, Timestamp: e.Timestamp, Message: err.Error()})
		}
	}
	return violations
}
