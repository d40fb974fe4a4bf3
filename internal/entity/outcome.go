package entity

import (
	"errors"
	"net/http"
)

// RequestedText is what a successful cell reads in the report.
const RequestedText = "Requested"

// OutcomeKind classifies an outcome.
type OutcomeKind string

const (
	Success          OutcomeKind = "success"
	AuthFailure      OutcomeKind = "authentication"
	HTTPFailure      OutcomeKind = "http"
	TransportFailure OutcomeKind = "transport"
	SkippedFailure   OutcomeKind = "skipped"
	InternalFailure  OutcomeKind = "internal"
)

// Outcome is the immutable result of one job.
type Outcome struct {
	Kind       OutcomeKind `json:"kind"`
	StatusCode int         `json:"status_code,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Succeeded records a 200 answer.
func Succeeded(statusCode int, reason string) Outcome {
	return Outcome{Kind: Success, StatusCode: statusCode, Reason: reason}
}

// Skipped records a job that was never sent.
func Skipped(why string) Outcome {
	return Outcome{Kind: SkippedFailure, Error: why}
}

// Failed converts a job error into a failure outcome.
func Failed(err error) Outcome {
	var (
		authErr      *AuthenticationFailure
		httpErr      *RemoteHTTPError
		transportErr *TransportError
	)
	switch {
	case errors.As(err, &authErr):
		return Outcome{Kind: AuthFailure, StatusCode: authErr.StatusCode, Reason: authErr.Reason, Error: err.Error()}
	case errors.As(err, &httpErr):
		return Outcome{Kind: HTTPFailure, StatusCode: httpErr.StatusCode, Reason: httpErr.Reason, Error: err.Error()}
	case errors.As(err, &transportErr):
		return Outcome{Kind: TransportFailure, Error: err.Error()}
	default:
		return Outcome{Kind: InternalFailure, Error: err.Error()}
	}
}

// OK reports whether the node accepted the request.
func (o Outcome) OK() bool {
	return o.Kind == Success && o.StatusCode == http.StatusOK
}

// Text is the report cell for the outcome.
func (o Outcome) Text() string {
	switch {
	case o.OK():
		return RequestedText
	case o.Error != "":
		return o.Error
	case o.Reason != "":
		return o.Reason
	default:
		return string(o.Kind)
	}
}
