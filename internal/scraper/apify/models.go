package apify

import (
	"time"

	"social_sync/internal/domain"
)

// Run is the subset of an actor run object the client reads.
type Run struct {
	ID               string     `json:"id"`
	ActID            string     `json:"actId"`
	Status           string     `json:"status"`
	StatusMessage    string     `json:"statusMessage"`
	DefaultDatasetID string     `json:"defaultDatasetId"`
	StartedAt        time.Time  `json:"startedAt"`
	FinishedAt       *time.Time `json:"finishedAt"`
}

type runEnvelope struct {
	Data Run `json:"data"`
}

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

const (
	statusReady     = "READY"
	statusRunning   = "RUNNING"
	statusSucceeded = "SUCCEEDED"
	statusFailed    = "FAILED"
	statusAborting  = "ABORTING"
	statusAborted   = "ABORTED"
	statusTimingOut = "TIMING-OUT"
	statusTimedOut  = "TIMED-OUT"
)

// Terminal reports whether the run has stopped.
func (r *Run) Terminal() bool {
	switch r.Status {
	case statusSucceeded, statusFailed, statusAborted, statusTimedOut:
		return true
	default:
		return false
	}
}

// RunStatus maps the backend status onto the domain status. Unfinished runs map to timed_out:
// the caller stopped waiting for them.
func (r *Run) RunStatus() domain.RunStatus {
	switch r.Status {
	case statusSucceeded:
		return domain.RunSucceeded
	case statusFailed:
		return domain.RunFailed
	case statusAborted, statusAborting:
		return domain.RunAborted
	default:
		return domain.RunTimedOut
	}
}
