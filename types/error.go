package types

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unified error code across the plugin.
type ErrorCode string

const (
	ErrEditorNotFound     ErrorCode = "EDITOR_NOT_FOUND"
	ErrInstanceReleased   ErrorCode = "INSTANCE_RELEASED"
	ErrDuplicateIdentity  ErrorCode = "DUPLICATE_IDENTITY"
	ErrEditorConstruction ErrorCode = "EDITOR_CONSTRUCTION"
	ErrInvalidDocument    ErrorCode = "INVALID_DOCUMENT"
	ErrPluginNotLoaded    ErrorCode = "PLUGIN_NOT_LOADED"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	EditorID EditorID  `json:"editor_id,omitempty"`
	Cause    error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.EditorID != "" {
		msg += fmt.Sprintf(" (editor %q)", e.EditorID)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so callers can test
// errors.Is(err, &types.Error{Code: types.ErrEditorNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithEditorID records the editor identifier the error concerns.
func (e *Error) WithEditorID(id EditorID) *Error {
	e.EditorID = id
	return e
}

// NewEditorNotFound reports a create request for an editor the plugin
// does not declare. The host should not retry with the same identifier.
func NewEditorNotFound(id EditorID) *Error {
	return NewError(ErrEditorNotFound, "no matching editor").WithEditorID(id)
}

// AsError extracts an *Error from the chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error chain.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// IsErrorCode reports whether any error in the chain carries code.
func IsErrorCode(err error, code ErrorCode) bool {
	return GetErrorCode(err) == code
}
