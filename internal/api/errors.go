package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched with errors.Is against a *ServerError.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// TransportError means no usable response arrived: the request could not be
// sent, timed out, or was cancelled.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("executing request %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a failure reported by the backend, either through the
// error field of the envelope or a non-2xx status.
type ServerError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error (%d) on %s %s: %s", e.Status, e.Method, e.Path, e.Message)
}

// Is lets errors.Is match ErrNotFound and ErrUnauthorized by status.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// ParseError means the response body was not the expected JSON shape.
type ParseError struct {
	Method string
	Path   string
	Body   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unmarshaling response from %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsAuthError reports whether err (or any error in its chain) is a 401.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Message collapses any client error into the single line shown to the
// user next to the control that triggered it.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		transportErr *TransportError
		serverErr    *ServerError
		parseErr     *ParseError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return "Request cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond."
	case errors.As(err, &transportErr):
		return "Could not reach the server. Check your connection and try again."
	case errors.As(err, &serverErr):
		if serverErr.Status == http.StatusUnauthorized {
			return "Authentication failed. Check your API token."
		}
		if serverErr.Message != "" {
			return serverErr.Message
		}
		return http.StatusText(serverErr.Status)
	case errors.As(err, &parseErr):
		return "The server sent an unexpected response."
	default:
		return err.Error()
	}
}
