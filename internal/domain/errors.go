package domain

import (
	"errors"
	"fmt"
)

// FaultKind classifies an upstream call failure. The set is stable so the
// presentation layer can render distinct messages without inspecting
// exchange-specific details.
type FaultKind string

const (
	FaultTimeout           FaultKind = "timeout"
	FaultAuth              FaultKind = "auth_error"
	FaultRateLimited       FaultKind = "rate_limited"
	FaultUpstream          FaultKind = "upstream_error"
	FaultMalformedResponse FaultKind = "malformed_response"
)

// Fault is a classified upstream failure. It wraps the underlying cause so
// callers can still unwrap with errors.Is / errors.As.
type Fault struct {
	Kind   FaultKind
	Detail string
	Err    error
	// Transient marks an UpstreamError the exchange declared worth retrying
	// (5xx-equivalent or an explicit "try again" code).
	Transient bool
}

// Error implements the error interface.
func (f *Fault) Error() string {
	if f.Detail != "" {
		return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
	}
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return string(f.Kind)
}

// Unwrap returns the underlying cause.
func (f *Fault) Unwrap() error {
	return f.Err
}

// NewFault creates a Fault of the given kind with a human-readable detail.
func NewFault(kind FaultKind, detail string) *Fault {
	return &Fault{Kind: kind, Detail: detail}
}

// WrapFault creates a Fault of the given kind wrapping an underlying error.
func WrapFault(kind FaultKind, err error) *Fault {
	return &Fault{Kind: kind, Err: err}
}

// KindOf extracts the FaultKind from an error chain. Unclassified errors map
// to FaultUpstream so consumers always receive a kind from the taxonomy.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return FaultUpstream
}

// Retryable reports whether a failure may succeed on an immediate retry:
// timeouts and transient upstream errors only. Auth failures, rate limits,
// client errors, and malformed payloads are deterministic; retrying them
// burns the attempt budget and can trip rate limits.
func Retryable(err error) bool {
	var f *Fault
	if !errors.As(err, &f) {
		return false
	}
	switch f.Kind {
	case FaultTimeout:
		return true
	case FaultUpstream:
		return f.Transient
	default:
		return false
	}
}

var (
	// ErrNoReport is returned by report accessors before the first refresh
	// cycle has completed successfully.
	ErrNoReport = errors.New("no report available yet")

	// ErrNotConfigured is returned when API credentials have not been
	// installed for the session.
	ErrNotConfigured = errors.New("api credentials not configured")
)
