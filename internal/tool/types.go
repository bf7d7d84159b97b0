package tool

import "fmt"

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty"`
}

// Declaration declares a tool's function signature for the LLM.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// Status is the outcome of a tool invocation.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// ErrorKind classifies a failed tool invocation.
type ErrorKind string

const (
	KindPermissionDenied ErrorKind = "permission_denied"
	KindNotFound         ErrorKind = "not_found"
	KindNoMatch          ErrorKind = "no_match"
	KindTimeout          ErrorKind = "timeout"
	KindUnknownTool      ErrorKind = "unknown_tool"
	KindValidation       ErrorKind = "validation_error"
	KindExecution        ErrorKind = "execution_error"
	KindCancelled        ErrorKind = "cancelled"
)

// Result is the immutable outcome of one tool call, correlated by CallID.
type Result struct {
	CallID string    `json:"call_id"`
	Name   string    `json:"name"`
	Status Status    `json:"status"`
	Kind   ErrorKind `json:"kind,omitempty"`
	Output string    `json:"output"`
}

// OK builds a successful result.
func OK(callID, name, output string) Result {
	return Result{CallID: callID, Name: name, Status: StatusOK, Output: output}
}

// Failed builds an error result.
func Failed(callID, name string, kind ErrorKind, message string) Result {
	return Result{CallID: callID, Name: name, Status: StatusError, Kind: kind, Output: message}
}

// IsError reports whether the call failed.
func (r Result) IsError() bool {
	return r.Status == StatusError
}

// Content renders the result as the text the model receives.
func (r Result) Content() string {
	if r.IsError() {
		return fmt.Sprintf("Error (%s): %s", r.Kind, r.Output)
	}
	return r.Output
}

// Float returns a pointer to v, for Schema bounds.
func Float(v float64) *float64 {
	return &v
}
