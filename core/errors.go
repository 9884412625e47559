package core

import (
	"github.com/go-faster/errors"
)

var (
	// ErrInvalidConfig is returned when backend construction or pipeline
	// assembly receives parameters outside the supported range.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrHandleNotFound is returned for handles this process never issued.
	ErrHandleNotFound = errors.New("unknown result handle")

	// ErrStatusUnavailable is returned when a handle is known but the
	// target cannot report a status for it.
	ErrStatusUnavailable = errors.New("job status unavailable")

	// ErrResultUnavailable is returned when a result is requested for a
	// job that has not completed.
	ErrResultUnavailable = errors.New("result not available")

	// ErrNotImplemented is returned when a target lacks an optional
	// capability, like native expectation values.
	ErrNotImplemented = errors.New("not implemented by target")
)
