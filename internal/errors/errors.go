package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ConfigInvalid indicates a configuration value failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// PathUnresolved indicates a required path could not be resolved
	PathUnresolved ErrorCode = "PATH_UNRESOLVED"
	// OutputDirFailed indicates an output directory could not be created
	OutputDirFailed ErrorCode = "OUTPUT_DIR_FAILED"
	// ReadFailed indicates a file could not be read
	ReadFailed ErrorCode = "READ_FAILED"
	// WriteFailed indicates a file could not be written
	WriteFailed ErrorCode = "WRITE_FAILED"
	// SchemaInvalid indicates a trace entry does not match the entry schema
	SchemaInvalid ErrorCode = "SCHEMA_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// Hint is a suggested follow-up shown next to startup failures
type Hint struct {
	Command     string `json:"command,omitempty"`
	Description string `json:"description"`
}

// TraceError represents an agenttrace error with code, message, and hints
type TraceError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Hints   []Hint      `json:"hints,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new TraceError
func New(code ErrorCode, message string, cause error) *TraceError {
	return &TraceError{
		Code:    code,
		Message: message,
		cause:   cause,
		Hints:   GetHints(code),
	}
}

// Error implements the error interface
func (e *TraceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *TraceError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *TraceError) WithDetails(details interface{}) *TraceError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first TraceError in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var te *TraceError
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// ErrorHints maps error codes to hints printed by the CLI
var ErrorHints = map[ErrorCode][]Hint{
	ConfigInvalid: {
		{
			Command:     "agenttrace watch --help",
			Description: "Check flag values and .agenttrace/config.json",
		},
	},
	PathUnresolved: {
		{
			Description: "Pass an existing directory with --root",
		},
	},
	OutputDirFailed: {
		{
			Description: "Check permissions of the trace log directory",
		},
	},
	SchemaInvalid: {
		{
			Command:     "agenttrace verify",
			Description: "List entries that fail schema validation",
		},
	},
}

// GetHints returns hints for an error code
func GetHints(code ErrorCode) []Hint {
	if hints, ok := ErrorHints[code]; ok {
		return hints
	}
	return nil
}
