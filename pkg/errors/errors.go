package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for the installer's failure classes
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Login negotiation errors
	ErrLoginFailed   ErrorCode = "LOGIN_FAILED"
	ErrGuardRequired ErrorCode = "GUARD_REQUIRED"

	// Distribution tool errors
	ErrToolNotFound ErrorCode = "TOOL_NOT_FOUND"
	ErrToolFailed   ErrorCode = "TOOL_FAILED"

	// Registry and download errors
	ErrRegistryRequest ErrorCode = "REGISTRY_REQUEST"
	ErrRegistryStatus  ErrorCode = "REGISTRY_STATUS"
	ErrRegistryDecode  ErrorCode = "REGISTRY_DECODE"
	ErrDownload        ErrorCode = "DOWNLOAD"

	// Profile and archive errors
	ErrProfileDecode  ErrorCode = "PROFILE_DECODE"
	ErrManifestParse  ErrorCode = "MANIFEST_PARSE"
	ErrArchiveExtract ErrorCode = "ARCHIVE_EXTRACT"
	ErrArchivePath    ErrorCode = "ARCHIVE_PATH"

	// FileSystem errors
	ErrFileAccess ErrorCode = "FILE_ACCESS"
	ErrFileCreate ErrorCode = "FILE_CREATE"
	ErrFileWrite  ErrorCode = "FILE_WRITE"
	ErrDirCreate  ErrorCode = "DIR_CREATE"
)

// Process exit codes. These are a contract surface: orchestration layers
// distinguish "needs a human" from "broken" by numeric code alone.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitGuardNeeded = 2
)

// InstallError represents a structured error with code and details
type InstallError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *InstallError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *InstallError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *InstallError) Is(target error) bool {
	var targetErr *InstallError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new InstallError with the given code and message
func New(code ErrorCode, message string) *InstallError {
	return &InstallError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new InstallError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *InstallError {
	return &InstallError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an InstallError
func Wrap(err error, code ErrorCode, message string) *InstallError {
	if err == nil {
		return nil
	}
	return &InstallError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *InstallError {
	if err == nil {
		return nil
	}
	return &InstallError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *InstallError) WithDetail(key string, value interface{}) *InstallError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not an InstallError
func GetErrorCode(err error) ErrorCode {
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an InstallError
func GetErrorDetails(err error) map[string]interface{} {
	var installErr *InstallError
	if errors.As(err, &installErr) {
		return installErr.Details
	}
	return nil
}

// ExitCode maps an error to the process exit-code contract. A nil error is
// success; a second-factor halt gets the reserved code; everything else is a
// plain failure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if IsErrorCode(err, ErrGuardRequired) {
		return ExitGuardNeeded
	}
	return ExitFailure
}
