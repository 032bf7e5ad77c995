// Package apperr defines the error taxonomy shared across the pipeline.
// Callers match with errors.As and decide severity at the cmd boundary:
// config errors are fatal, everything else aborts the single request or
// batch without partial writes.
package apperr

import "fmt"

// ConfigError indicates missing or unusable configuration (credentials,
// paths). Fatal: the process exits.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Reason)
}

// ValidationError indicates a malformed input record or an out-of-range
// field. Reported to the caller; the request is aborted before any feature
// computation or model invocation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Reason)
}

// DataError indicates a query, merge or missing-row failure while assembling
// a batch. The batch is aborted; nothing partial is persisted.
type DataError struct {
	Op  string
	Err error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("data error: %s", e.Op)
}

func (e *DataError) Unwrap() error { return e.Err }

// ModelError indicates a missing or corrupt model artifact. Fatal to the
// predict request.
type ModelError struct {
	Path string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model error: %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("model error: %s", e.Path)
}

func (e *ModelError) Unwrap() error { return e.Err }
