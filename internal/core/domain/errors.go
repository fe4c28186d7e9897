package domain

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by a service wraps exactly one of these,
// and the HTTP layer maps the kind to a status code.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrRateLimited     = errors.New("rate limited")
)

// kindError is a specific, user-presentable error that belongs to a kind.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Authentication failures.
var (
	ErrNoToken            = newKindError(ErrUnauthenticated, "no token provided")
	ErrTokenInvalid       = newKindError(ErrUnauthenticated, "token invalid")
	ErrTokenExpired       = newKindError(ErrUnauthenticated, "token expired")
	ErrTokenRevoked       = newKindError(ErrUnauthenticated, "token revoked")
	ErrAccountNotFound    = newKindError(ErrUnauthenticated, "user not found")
	ErrAccountInactive    = newKindError(ErrUnauthenticated, "account deactivated")
	ErrInvalidCredentials = newKindError(ErrUnauthenticated, "invalid credentials")
)

// Authorization failures.
var (
	ErrNotIdentified = newKindError(ErrForbidden, "not identified")
	ErrRoleForbidden = newKindError(ErrForbidden, "role not allowed for this route")
	ErrClientAccess  = newKindError(ErrForbidden, "you do not have access to this client")
)

var (
	ErrUserNotFound   = newKindError(ErrNotFound, "user not found")
	ErrClientNotFound = newKindError(ErrNotFound, "client not found")
)

// A taken account email is reported as bad input, unlike per-owner client
// duplicates which are conflicts.
var ErrUserExists = newKindError(ErrValidation, "user with this email already exists")

var (
	ErrClientExists = newKindError(ErrConflict, "a client with this email already exists for your account")
	ErrSoleAdmin    = newKindError(ErrConflict, "sole administrator cannot be demoted, deactivated or deleted")
)

var ErrTooManyAttempts = newKindError(ErrRateLimited, "too many login attempts, try again later")

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violated field of an input.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Message)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError builds a ValidationError with no field detail.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// Add appends a field error.
func (e *ValidationError) Add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// OrNil returns nil when no field has been recorded, so callers can build the
// error unconditionally and return it at the end.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var kinds = []error{ErrValidation, ErrUnauthenticated, ErrForbidden, ErrNotFound, ErrConflict, ErrRateLimited}

// Describe returns the kind err belongs to and the message that may be shown
// to API callers. It returns (nil, "") for errors outside the taxonomy.
func Describe(err error) (kind error, msg string) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ErrValidation, ve.Message
	}
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind, ke.msg
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k, k.Error()
		}
	}
	return nil, ""
}
