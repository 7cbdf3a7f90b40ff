package entities

import (
	"fmt"
	"strings"
)

// Error types reported in ErrorDetail.Type.
const (
	ErrorTypeConfig     = "config"
	ErrorTypeSchema     = "schema"
	ErrorTypeValidation = "validation"
	ErrorTypeInternal   = "internal"
)

// ErrorDetail is the serializable form of a schemagen error, used for
// structured logs and CLI diagnostics.
type ErrorDetail struct {
	// Wrapped is the detail of the underlying cause, if any.
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`

	Details map[string]any `json:"details,omitempty"`

	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`

	// Path locates the failing descriptor, rooted at "$".
	Path string `json:"path,omitempty"`
}

// Error renders "type/code: message (at path)" followed by the wrapped chain.
// Internal errors render as their bare message.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Type != "" && e.Type != ErrorTypeInternal {
		b.WriteString(e.Type)
		if e.Code != "" {
			b.WriteString("/" + e.Code)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, " (at %s)", e.Path)
	}
	if e.Wrapped != nil {
		b.WriteString(": " + e.Wrapped.Error())
	}
	return b.String()
}

// NewErrorDetail creates a new ErrorDetail with the given type and message.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{Type: errorType, Message: message}
}

// WithCode sets the code and returns the receiver.
func (e *ErrorDetail) WithCode(code string) *ErrorDetail {
	e.Code = code
	return e
}

// WithPath sets the descriptor path and returns the receiver.
func (e *ErrorDetail) WithPath(path string) *ErrorDetail {
	e.Path = path
	return e
}

// WithDetail adds one key to Details and returns the receiver.
func (e *ErrorDetail) WithDetail(key string, value any) *ErrorDetail {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}
