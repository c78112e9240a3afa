package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAuthStateMismatch  = errors.New("oauth state mismatch")
	ErrNormalizationEmpty = errors.New("normalization produced no posts")
	ErrEmptyToken         = errors.New("access token is empty")
)

// EndpointFailure records one failed cascade attempt.
type EndpointFailure struct {
	Kind    SourceKind
	Ordinal int
	Path    string
	Err     error
}

func (e *EndpointFailure) Error() string {
	return fmt.Sprintf("endpoint %d (%s %s): %v", e.Ordinal, e.Kind, e.Path, e.Err)
}

func (e *EndpointFailure) Unwrap() error { return e.Err }

// AllEndpointsExhausted is returned when no endpoint in a cascade succeeded.
type AllEndpointsExhausted struct {
	Failures []*EndpointFailure
}

func (e *AllEndpointsExhausted) Error() string {
	if len(e.Failures) == 0 {
		return "all endpoints exhausted: no endpoints to try"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return "all endpoints exhausted: " + strings.Join(parts, "; ")
}

func (e *AllEndpointsExhausted) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f)
	}
	return errs
}

// UpstreamError is a non-2xx answer from the social API or token backend.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, body)
}

// ExchangeError wraps a failed authorization code exchange.
type ExchangeError struct {
	Err error
}

func (e *ExchangeError) Error() string { return "token exchange failed: " + e.Err.Error() }

func (e *ExchangeError) Unwrap() error { return e.Err }
