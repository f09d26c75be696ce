// Package errors provides the standardized error taxonomy for the selection pipeline.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Validation errors (bad user input, recoverable — the conversation re-prompts).
const (
	ErrCodeInvalidNumber     ErrorCode = "INVALID_NUMBER"
	ErrCodeValueOutOfRange   ErrorCode = "VALUE_OUT_OF_RANGE"
	ErrCodeUnknownOption     ErrorCode = "UNKNOWN_OPTION"
	ErrCodeAmbiguousOption   ErrorCode = "AMBIGUOUS_OPTION"
	ErrCodeInvalidEmail      ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidDimensions ErrorCode = "INVALID_DIMENSIONS"
	ErrCodeUnknownLocation   ErrorCode = "UNKNOWN_LOCATION"
)

// Structural errors (malformed caller-supplied state — an integration bug,
// never bad user input).
const (
	ErrCodeStateIndexOutOfRange ErrorCode = "STATE_INDEX_OUT_OF_RANGE"
	ErrCodeStateInconsistent    ErrorCode = "STATE_INCONSISTENT"
	ErrCodeStateSchemaInvalid   ErrorCode = "STATE_SCHEMA_INVALID"
	ErrCodeAnswersIncomplete    ErrorCode = "ANSWERS_INCOMPLETE"
)

// Domain errors (sizing is impossible for the given inputs).
const (
	ErrCodeZeroVolumeTank      ErrorCode = "ZERO_VOLUME_TANK"
	ErrCodeUnknownApplication  ErrorCode = "UNKNOWN_APPLICATION"
	ErrCodeUnknownDiffuser     ErrorCode = "UNKNOWN_DIFFUSER"
	ErrCodeUnknownEnvironment  ErrorCode = "UNKNOWN_ENVIRONMENT"
	ErrCodeCatalogLoadFailed   ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeQuotePersistFailed  ErrorCode = "QUOTE_PERSIST_FAILED"
	ErrCodeQuoteDispatchFailed ErrorCode = "QUOTE_DISPATCH_FAILED"
)

// Kind separates the three error families so callers can branch without
// inspecting individual codes.
type Kind string

const (
	KindValidation Kind = "validation"
	KindStructural Kind = "structural"
	KindDomain     Kind = "domain"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Kind      Kind                   `json:"kind"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a recoverable user-input error. The message must
// be self-explanatory since it is echoed back as the re-prompt.
func NewValidationError(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Kind:      KindValidation,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewOutOfRangeError creates a validation error that states the accepted range.
func NewOutOfRangeError(field string, min, max float64, got float64) *StandardError {
	return &StandardError{
		Code:    ErrCodeValueOutOfRange,
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s must be between %g and %g", field, min, max),
		Details: fmt.Sprintf("got %g", got),
		Metadata: map[string]interface{}{
			"field": field,
			"min":   min,
			"max":   max,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownOptionError creates a validation error listing the valid options.
func NewUnknownOptionError(field, input string, options []string) *StandardError {
	return &StandardError{
		Code:    ErrCodeUnknownOption,
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(options, ", ")),
		Details: fmt.Sprintf("got %q", input),
		Metadata: map[string]interface{}{
			"field":   field,
			"options": options,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewAmbiguousOptionError creates a validation error for a prefix matching
// more than one vocabulary entry.
func NewAmbiguousOptionError(field, input string, candidates []string) *StandardError {
	return &StandardError{
		Code:    ErrCodeAmbiguousOption,
		Kind:    KindValidation,
		Message: fmt.Sprintf("%q is ambiguous for %s, could be: %s", input, field, strings.Join(candidates, ", ")),
		Metadata: map[string]interface{}{
			"field":      field,
			"candidates": candidates,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewStructuralError creates a non-recoverable caller-state error.
func NewStructuralError(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Kind:      KindStructural,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewDomainError creates a fatal sizing error with enough detail to explain
// which input made the computation impossible.
func NewDomainError(code ErrorCode, message, details string) *StandardError {
	return &StandardError{
		Code:      code,
		Kind:      KindDomain,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewZeroVolumeTankError creates the domain error for unusable tank geometry.
func NewZeroVolumeTankError(length, width, depth float64) *StandardError {
	return &StandardError{
		Code:    ErrCodeZeroVolumeTank,
		Kind:    KindDomain,
		Message: "cannot size a zero-volume system",
		Details: fmt.Sprintf("tank %gm x %gm x %gm has no usable volume", length, width, depth),
		Metadata: map[string]interface{}{
			"length": length,
			"width":  width,
			"depth":  depth,
		},
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsValidation reports whether err is a validation (user input) error.
func IsValidation(err error) bool { return kindOf(err) == KindValidation }

// IsStructural reports whether err is a structural (caller bug) error.
func IsStructural(err error) bool { return kindOf(err) == KindStructural }

// IsDomain reports whether err is a domain (impossible sizing) error.
func IsDomain(err error) bool { return kindOf(err) == KindDomain }

func kindOf(err error) Kind {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Kind
	}
	return ""
}

// CodeOf returns the error code, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}
