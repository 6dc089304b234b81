package lyrics

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies why a lyrics lookup failed.
type ErrorKind string

const (
	MissingParameter ErrorKind = "missing_parameter"
	MethodNotAllowed ErrorKind = "method_not_allowed"
	UpstreamTimeout  ErrorKind = "upstream_timeout"
	UpstreamError    ErrorKind = "upstream_error"
	InternalError    ErrorKind = "internal_error"
)

// ProxyError is a terminal lookup failure. StatusCode and Message are what the
// caller sees; Err keeps the underlying cause for logging only.
type ProxyError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *ProxyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Kind, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}

func newMissingParameter(message string) *ProxyError {
	return &ProxyError{Kind: MissingParameter, StatusCode: http.StatusBadRequest, Message: message}
}

// NewMethodNotAllowed reports a request method the proxy does not serve.
func NewMethodNotAllowed() *ProxyError {
	return &ProxyError{Kind: MethodNotAllowed, StatusCode: http.StatusMethodNotAllowed, Message: "Method not allowed"}
}

func newUpstreamTimeout(err error) *ProxyError {
	return &ProxyError{Kind: UpstreamTimeout, StatusCode: http.StatusRequestTimeout, Message: "Request timeout", Err: err}
}

func newUpstreamError(status int) *ProxyError {
	return &ProxyError{
		Kind:       UpstreamError,
		StatusCode: status,
		Message:    "Lyrics service error",
		Err:        fmt.Errorf("upstream responded %d %s", status, http.StatusText(status)),
	}
}

func newInternalError(err error) *ProxyError {
	return &ProxyError{Kind: InternalError, StatusCode: http.StatusInternalServerError, Message: "Error while searching for lyrics", Err: err}
}

// AsProxyError converts any error into a ProxyError, treating unknown errors
// as internal failures.
func AsProxyError(err error) *ProxyError {
	var pe *ProxyError
	if errors.As(err, &pe) {
		return pe
	}
	return newInternalError(err)
}

// IsKind reports whether err is a ProxyError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var pe *ProxyError
	return errors.As(err, &pe) && pe.Kind == kind
}
