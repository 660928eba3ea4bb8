package stepauth

import "errors"

var (
	// ErrEngineNotReady is returned when a flow runs before Build wired all
	// collaborators.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrAccountNotFound is returned by UserStore implementations when no
	// non-deleted account matches a lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateKey is returned by UserStore implementations when a
	// uniqueness constraint rejects a write. The engine treats the store's
	// conflict signal as the authoritative duplicate check.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrDeviceContextMissing is returned when a flow needs the caller's
	// device identifier and the request context does not carry one.
	ErrDeviceContextMissing = errors.New("device identifier missing from request context")
	// ErrHandleExhausted is returned when handle allocation runs out of
	// retry attempts without finding a free candidate.
	ErrHandleExhausted = errors.New("handle allocation attempts exhausted")
)
