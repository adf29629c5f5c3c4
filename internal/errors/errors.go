// Package errors provides standardized error types for vhostprov.
//
// Every failure that aborts provisioning is reported as a *ProvisionError.
// The error code tells the caller which part of the taxonomy it belongs to:
//
//   - INPUT: a required value was missing (nothing has been touched yet)
//   - VALIDATION: a value was present but malformed
//   - PERMISSION: the process lacks the privileges it needs
//   - CONFIG: the tool's own configuration is invalid
//   - FILESYSTEM: creating directories, files, ownership or modes failed
//   - DAEMON: nginx or systemctl reported a failure
//   - SSL: certificate issuance failed
//   - INTERNAL: anything else
//
// # Usage
//
//	return errors.Input("email address is required")
//	return errors.WrapStep(errors.ErrCodeDaemon, "bootstrap", "example.com", err)
//
//	if errors.Is(err, errors.ErrIssuanceFailed) {
//	    // bootstrap config is still active
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeInput      ErrorCode = "INPUT"      // Required input missing
	ErrCodeValidation ErrorCode = "VALIDATION" // Input validation failed
	ErrCodePermission ErrorCode = "PERMISSION" // Permission denied
	ErrCodeConfig     ErrorCode = "CONFIG"     // Configuration error
	ErrCodeFilesystem ErrorCode = "FILESYSTEM" // Directory, file or mode change failed
	ErrCodeDaemon     ErrorCode = "DAEMON"     // Web server daemon control failed
	ErrCodeSSL        ErrorCode = "SSL"        // Certificate issuance failed
	ErrCodeInternal   ErrorCode = "INTERNAL"   // Internal/unexpected error
)

// ProvisionError is a structured error carrying the provisioning context.
type ProvisionError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Domain  string    // Domain being provisioned (if known)
	Step    string    // Pipeline step that failed (if any)
	Hint    string    // Operator guidance, e.g. a log file to inspect
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *ProvisionError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}
	if e.Step != "" {
		msg = fmt.Sprintf("step %s: %s", e.Step, msg)
	}
	if e.Domain != "" {
		msg = fmt.Sprintf("%s: %s", e.Domain, msg)
	}
	if e.Hint != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Hint)
	}
	return msg
}

// Unwrap returns the underlying error for error chain traversal.
func (e *ProvisionError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *ProvisionError) Is(target error) bool {
	t, ok := target.(*ProvisionError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for use with errors.Is.
var (
	// ErrMissingInput indicates a required value was not supplied.
	ErrMissingInput = &ProvisionError{Code: ErrCodeInput, Message: "missing input"}

	// ErrInvalidDomain indicates the domain is not a valid hostname.
	ErrInvalidDomain = &ProvisionError{Code: ErrCodeValidation, Message: "invalid domain"}

	// ErrRootRequired indicates root privileges are required.
	ErrRootRequired = &ProvisionError{Code: ErrCodePermission, Message: "root privileges required"}

	// ErrConfigInvalid indicates the configuration is invalid or corrupt.
	ErrConfigInvalid = &ProvisionError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrFilesystem indicates a filesystem mutation failed.
	ErrFilesystem = &ProvisionError{Code: ErrCodeFilesystem, Message: "filesystem operation failed"}

	// ErrDaemon indicates nginx or systemctl failed.
	ErrDaemon = &ProvisionError{Code: ErrCodeDaemon, Message: "daemon control failed"}

	// ErrIssuanceFailed indicates certbot did not issue a certificate.
	ErrIssuanceFailed = &ProvisionError{Code: ErrCodeSSL, Message: "certificate issuance failed"}
)

// Input creates an error for a missing required value.
func Input(msg string) error {
	return &ProvisionError{Code: ErrCodeInput, Message: msg}
}

// Validation creates a validation error with a custom message.
func Validation(msg string) error {
	return &ProvisionError{Code: ErrCodeValidation, Message: msg}
}

// InvalidDomain creates a validation error for a rejected domain.
func InvalidDomain(domain string, reason error) error {
	return &ProvisionError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("invalid domain %q", domain),
		Err:     reason,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &ProvisionError{Code: code, Message: msg, Err: err}
}

// WrapStep attributes err to a pipeline step. A ProvisionError keeps its
// own code and hint; only missing context is filled in. When err merely
// wraps one, err stays the cause so its context text is kept, and the
// inner code still wins over code.
func WrapStep(code ErrorCode, step, domain string, err error) error {
	if pe, ok := err.(*ProvisionError); ok {
		out := *pe
		if out.Step == "" {
			out.Step = step
		}
		if out.Domain == "" {
			out.Domain = domain
		}
		return &out
	}
	var inner *ProvisionError
	if errors.As(err, &inner) {
		code = inner.Code
	}
	return &ProvisionError{Code: code, Step: step, Domain: domain, Err: err}
}

// WithHint returns a copy of err carrying operator guidance.
func WithHint(err error, hint string) error {
	var pe *ProvisionError
	if errors.As(err, &pe) {
		out := *pe
		out.Hint = hint
		return &out
	}
	return &ProvisionError{Code: ErrCodeInternal, Err: err, Hint: hint}
}

// HintOf returns the first non-empty hint in err's chain.
func HintOf(err error) string {
	for err != nil {
		if pe, ok := err.(*ProvisionError); ok && pe.Hint != "" {
			return pe.Hint
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// CodeOf returns the code of the first ProvisionError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var pe *ProvisionError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ErrCodeInternal
}

// Is reports whether any error in err's chain matches target.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
var As = errors.As
