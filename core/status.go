package core

import (
	"fmt"

	"github.com/go-faster/errors"
)

type Status int // Status of a job as reported to clients.

const (
	SUBMITTED Status = iota // Accepted by the target but not yet running.
	RUNNING                 // Being executed on the target.
	COMPLETED               // Finished; the result is cached.
	FAILED                  // Finished with failure.
	CANCELLED               // Finished with cancellation.
)

func (s Status) String() string {
	switch s {
	case SUBMITTED:
		return "submitted"
	case RUNNING:
		return "running"
	case COMPLETED:
		return "completed"
	case FAILED:
		return "failed"
	case CANCELLED:
		return "cancelled"
	default:
		return "unknown"
	}
}

// ToStatus maps a target-side status string onto the client-facing status.
// Targets report "loaded" and "connected" for jobs that are queued but not
// yet picked up.
func ToStatus(s string) (Status, error) {
	switch s {
	case "done":
		return COMPLETED, nil
	case "running":
		return RUNNING, nil
	case "loaded", "connected":
		return SUBMITTED, nil
	case "failed":
		return FAILED, nil
	case "cancelled":
		return CANCELLED, nil
	default:
		return 0, errors.Wrap(ErrStatusUnavailable, fmt.Sprintf("unknown status: %s", s))
	}
}
