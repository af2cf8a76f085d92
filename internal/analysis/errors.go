package analysis

import "fmt"

// ValidationError means the request shape was unusable before any upstream call.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// UpstreamError means the LLM provider was unreachable or returned an error.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("llm upstream: %v", e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }
