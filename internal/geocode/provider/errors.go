package provider

import (
	"errors"
	"fmt"
)

// Kind classifies an adapter failure. The resolution manager treats every
// kind uniformly as "try the next backend"; kinds only decide whether the
// adapter itself retries.
type Kind int

const (
	// KindCredentialMissing means a required API key is absent. Raised at
	// construction time so the factory can exclude the backend up front.
	KindCredentialMissing Kind = iota
	// KindEmptyResult means the upstream responded but found no match.
	KindEmptyResult
	// KindRateLimited means the upstream returned a throttling status.
	KindRateLimited
	// KindTransport means a network-level failure (timeout, reset).
	KindTransport
	// KindUpstream means any other non-2xx or malformed payload.
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindCredentialMissing:
		return "credential_missing"
	case KindEmptyResult:
		return "empty_result"
	case KindRateLimited:
		return "rate_limited"
	case KindTransport:
		return "transport"
	case KindUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// Error is a classified failure from one backend.
type Error struct {
	Backend string
	Kind    Kind
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(backend string, kind Kind, err error) *Error {
	return &Error{Backend: backend, Kind: kind, Err: err}
}

func newErrorf(backend string, kind Kind, format string, args ...any) *Error {
	return &Error{Backend: backend, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// IsKind reports whether err carries the given classification.
func IsKind(err error, kind Kind) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == kind
}

// Retryable reports whether err is a transient failure (rate limit or
// transport) worth another attempt within the adapter's retry budget.
func Retryable(err error) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Kind == KindRateLimited || pe.Kind == KindTransport
}
