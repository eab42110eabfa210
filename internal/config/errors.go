package config

import "fmt"

// StartupReason classifies why the server refused to start.
type StartupReason string

const (
	// ReasonMissingFile means a capability referenced a dataset file that
	// does not exist.
	ReasonMissingFile StartupReason = "missing-file"
	// ReasonMalformedData means a dataset or config file exists but could
	// not be parsed.
	ReasonMalformedData StartupReason = "malformed-data"
	// ReasonInvalidCapability means a capability definition is internally
	// inconsistent (duplicate name, unknown plugin type, unsupported operation).
	ReasonInvalidCapability StartupReason = "invalid-capability"
)

// StartupError is fatal: the server must not start in a partially-valid
// state. The capability that caused the failure is always named.
type StartupError struct {
	Capability string
	Reason     StartupReason
	Err        error
}

// Error implements the error interface.
func (e *StartupError) Error() string {
	if e.Capability == "" {
		return fmt.Sprintf("startup failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("startup failed for capability %q (%s): %v", e.Capability, e.Reason, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *StartupError) Unwrap() error {
	return e.Err
}

// NewStartupError builds a StartupError naming the offending capability.
func NewStartupError(capability string, reason StartupReason, err error) *StartupError {
	return &StartupError{Capability: capability, Reason: reason, Err: err}
}
