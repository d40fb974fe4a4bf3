package entity

import (
	"errors"
	"fmt"
)

// ErrConfiguration is matched by every error that is raised before any job
// is dispatched.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports an invalid invocation: no operation selected,
// more than one selected, an empty node or AUID list, or conflicting options.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// Configurationf builds a ConfigurationError from a format string.
func Configurationf(format string, args ...any) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// EmptyListFileError reports a list file with no meaningful lines.
type EmptyListFileError struct {
	Path string
}

func (e *EmptyListFileError) Error() string {
	return fmt.Sprintf("%s contains no meaningful lines", e.Path)
}

func (e *EmptyListFileError) Unwrap() error {
	return ErrConfiguration
}

// InvalidPoolSizeError reports a pool size that is not a positive integer.
type InvalidPoolSizeError struct {
	Size int
}

func (e *InvalidPoolSizeError) Error() string {
	return fmt.Sprintf("pool size: expected a positive value, got %d", e.Size)
}

func (e *InvalidPoolSizeError) Unwrap() error {
	return ErrConfiguration
}

// AuthenticationFailure is returned when a node answers 401 or 403.
type AuthenticationFailure struct {
	StatusCode int
	Reason     string
}

func (e *AuthenticationFailure) Error() string {
	if e.StatusCode == 403 {
		return fmt.Sprintf("not authorized (HTTP %d %s)", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("bad username or password (HTTP %d %s)", e.StatusCode, e.Reason)
}

// RemoteHTTPError is returned for any other non-200 answer.
type RemoteHTTPError struct {
	StatusCode int
	Reason     string
}

func (e *RemoteHTTPError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, e.Reason)
}

// TransportError wraps a connection-level failure (DNS, refused, timeout).
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
