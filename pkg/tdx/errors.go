package tdx

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by the typed errors below through errors.Is.
var (
	ErrAuth              = errors.New("authentication failed")
	ErrHTTP              = errors.New("http request failed")
	ErrMalformedResponse = errors.New("malformed response")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrImport            = errors.New("import failed")
	ErrObjectType        = errors.New("wrong object type")
	ErrDuplicate         = errors.New("duplicate object")
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired    = errors.New("config is required")
	ErrBaseURLRequired   = errors.New("base URL is required")
	ErrCacheDisabled     = errors.New("cache disabled")
	ErrCacheKeyNotFound  = errors.New("key not found")
	ErrCacheEntryExpired = errors.New("entry expired")
	ErrNoTicketApp       = errors.New("ticket app ID not configured")
	ErrNoAssetApp        = errors.New("asset app ID not configured")
)

// AuthError reports that no valid token could be obtained. It is fatal to all
// further calls on the session.
type AuthError struct {
	Username string
	Err      error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	msg := "authentication failed"
	if e.Username != "" {
		msg += " for " + e.Username
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *AuthError) Unwrap() error { return e.Err }

// Is reports whether target is ErrAuth.
func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// HTTPError is a response whose status is not accepted for its verb.
type HTTPError struct {
	Method     string
	Path       string
	StatusCode int
	Reason     string
	Body       string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s failed: response code %d %s, returned: %s",
		e.Method, e.Path, e.StatusCode, e.Reason, strings.TrimSpace(e.Body))
}

// Is reports whether target is ErrHTTP.
func (e *HTTPError) Is(target error) bool { return target == ErrHTTP }

// MalformedResponseError is a response body that is not valid JSON.
type MalformedResponseError struct {
	Method string
	Path   string
	Raw    string
	Err    error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("invalid JSON received from %s %s: %s", e.Method, e.Path, e.Raw)
}

// Unwrap returns the decode error.
func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMalformedResponse.
func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformedResponse }

// NotFoundError is a cache or schema lookup miss. Scope names the containing
// object when the lookup is nested, such as the attribute owning a choice.
type NotFoundError struct {
	Kind  string
	Key   string
	Scope string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	if e.Scope != "" {
		return fmt.Sprintf("no %s found for %q in %s", e.Kind, e.Key, e.Scope)
	}

	return fmt.Sprintf("no %s found for %q", e.Kind, e.Key)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ValidationError identifies the field and the rule it violated.
type ValidationError struct {
	Entity string
	Field  string
	Rule   string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s: %s", e.Entity, e.Field, e.Rule)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ImportError is raised when raw data cannot be loaded into an entity.
type ImportError struct {
	Entity string
	Field  string
	Value  interface{}
	Reason string
}

// Error implements the error interface.
func (e *ImportError) Error() string {
	return fmt.Sprintf("attribute %s with value %v not allowed in %s: %s", e.Field, e.Value, e.Entity, e.Reason)
}

// Is reports whether target is ErrImport.
func (e *ImportError) Is(target error) bool { return target == ErrImport }

// ObjectTypeError is returned when a caller passes a value of the wrong shape.
type ObjectTypeError struct {
	Expected string
	Got      string
}

// Error implements the error interface.
func (e *ObjectTypeError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
}

// Is reports whether target is ErrObjectType.
func (e *ObjectTypeError) Is(target error) bool { return target == ErrObjectType }

// DuplicateError is returned when creating an object that already exists.
type DuplicateError struct {
	Kind string
	Key  string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Kind, e.Key)
}

// Is reports whether target is ErrDuplicate.
func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// IsNotFound checks if the error is a lookup miss or a 404 response.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}

	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 404
	}

	return false
}

// IsUnauthorized checks if the error is an authentication failure or a 401 response.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrAuth) {
		return true
	}

	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 401
	}

	return false
}

// IsValidation checks if the error came from schema validation or import.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) || errors.Is(err, ErrImport)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	httpErr := &HTTPError{}
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	return 0
}
