package errx

import (
	"fmt"
	"net/http"
)

// Type classifies an error for transport mapping and retry decisions.
type Type string

const (
	TypeValidation     Type = "VALIDATION"
	TypeNotFound       Type = "NOT_FOUND"
	TypeConflict       Type = "CONFLICT"
	TypeAuthentication Type = "AUTHENTICATION"
	TypeAuthorization  Type = "AUTHORIZATION"
	TypeBusiness       Type = "BUSINESS"
	TypeRateLimit      Type = "RATE_LIMIT"
	TypeInternal       Type = "INTERNAL"
)

// Code identifies a registered error definition.
type Code struct {
	key string
}

type definition struct {
	code       string
	errType    Type
	httpStatus int
	message    string
}

// Registry holds the error definitions for one domain, namespaced by prefix.
type Registry struct {
	prefix      string
	definitions map[string]definition
}

// NewRegistry creates a registry whose codes are prefixed with the given
// domain name (e.g. "MATCH" -> "MATCH_NOT_FOUND").
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:      prefix,
		definitions: make(map[string]definition),
	}
}

// Register adds an error definition and returns its Code handle.
func (r *Registry) Register(code string, errType Type, httpStatus int, message string) Code {
	full := r.prefix + "_" + code
	r.definitions[full] = definition{
		code:       full,
		errType:    errType,
		httpStatus: httpStatus,
		message:    message,
	}
	return Code{key: full}
}

// New creates an error from a registered code.
func (r *Registry) New(c Code) *Error {
	def, ok := r.definitions[c.key]
	if !ok {
		return &Error{
			Code:       r.prefix + "_UNKNOWN",
			Type:       TypeInternal,
			HTTPStatus: http.StatusInternalServerError,
			Message:    "Unknown error code",
		}
	}
	return &Error{
		Code:       def.code,
		Type:       def.errType,
		HTTPStatus: def.httpStatus,
		Message:    def.message,
	}
}

// NewWithCause creates an error from a registered code, preserving the cause.
func (r *Registry) NewWithCause(c Code, cause error) *Error {
	err := r.New(c)
	err.cause = cause
	return err
}

// Error is a typed, transport-aware application error.
type Error struct {
	Code       string         `json:"code"`
	Type       Type           `json:"type"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithDetail attaches a single key/value detail and returns the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges a detail map into the error.
func (e *Error) WithDetails(details map[string]any) *Error {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// ToHTTPResponse renders the error body sent to API clients.
func (e *Error) ToHTTPResponse() map[string]any {
	resp := map[string]any{
		"code":    e.Code,
		"type":    e.Type,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		resp["details"] = e.Details
	}
	return resp
}

// Wrap converts an arbitrary error into an *Error of the given type.
func Wrap(err error, message string, errType Type) *Error {
	status := http.StatusInternalServerError
	switch errType {
	case TypeValidation:
		status = http.StatusBadRequest
	case TypeNotFound:
		status = http.StatusNotFound
	case TypeConflict:
		status = http.StatusConflict
	case TypeAuthentication:
		status = http.StatusUnauthorized
	case TypeAuthorization:
		status = http.StatusForbidden
	case TypeBusiness:
		status = http.StatusUnprocessableEntity
	case TypeRateLimit:
		status = http.StatusTooManyRequests
	}
	return &Error{
		Code:       "WRAPPED_" + string(errType),
		Type:       errType,
		Message:    message,
		HTTPStatus: status,
		cause:      err,
	}
}

// IsType reports whether err is an *Error of the given type.
func IsType(err error, errType Type) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Type == errType
}
