package model

import "fmt"

var (
	// SessionExpiredErr is returned for any operation on a session handle
	// whose TTL has passed or that never existed.
	SessionExpiredErr = fmt.Errorf("session expired")

	// NotReadyErr is returned when an invite artifact is requested before a
	// verification channel exists.
	NotReadyErr = fmt.Errorf("verification not started")

	// NotVerifiedErr is returned when a code is requested for a session
	// without a bound identity.
	NotVerifiedErr = fmt.Errorf("session not verified")

	// InvalidGrantErr covers absent, expired and already consumed codes.
	// Never retryable with the same code.
	InvalidGrantErr = fmt.Errorf("invalid grant")

	// ClientMismatchErr is returned before any store access when the relying
	// party's credentials do not match the configured ones.
	ClientMismatchErr = fmt.Errorf("client credentials mismatch")

	// InvariantViolationErr indicates external-platform or logic corruption,
	// e.g. a verification channel with more than two members. Requests that
	// hit it must fail rather than guess.
	InvariantViolationErr = fmt.Errorf("invariant violation")
)
