package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrAlreadyConnected    = errors.New("account already connected")
	ErrScrapeFailed        = errors.New("scrape failed")
	ErrNotFound            = errors.New("account not found")
	ErrPartialStorage      = errors.New("content items not stored")
)

type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// AlreadyConnectedError carries the existing account so callers can continue as if connect succeeded.
type AlreadyConnectedError struct {
	Account *LinkedAccount
}

func (e *AlreadyConnectedError) Error() string {
	if e.Account == nil {
		return ErrAlreadyConnected.Error()
	}
	return fmt.Sprintf("%s: user %d already linked %s account %s",
		ErrAlreadyConnected, e.Account.UserID, e.Account.Platform, e.Account.ID)
}

func (e *AlreadyConnectedError) Is(target error) bool {
	return target == ErrAlreadyConnected
}

type ScrapeReason string

const (
	ReasonHandleNotFound ScrapeReason = "handle_not_found"
	ReasonBlocked        ScrapeReason = "blocked"
	ReasonBackendError   ScrapeReason = "backend_error"
	ReasonUnknown        ScrapeReason = "unknown"
)

// RunStatus is the terminal state reported by a scraping backend run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunAborted   RunStatus = "aborted"
	RunTimedOut  RunStatus = "timed_out"
)

// ScrapeFailure is returned when a backend run did not produce usable data.
type ScrapeFailure struct {
	Platform   Platform
	Handle     string
	RunID      string
	Status     RunStatus
	Reason     ScrapeReason
	LogExcerpt string
	Err        error
}

func (e *ScrapeFailure) Error() string {
	msg := fmt.Sprintf("%s %s @%s: %s", ErrScrapeFailed, e.Platform, e.Handle, e.Message())
	if e.RunID != "" {
		msg += fmt.Sprintf(" (run %s, status %s)", e.RunID, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Message is the caller-facing explanation of the failure.
func (e *ScrapeFailure) Message() string {
	switch e.Reason {
	case ReasonHandleNotFound:
		return "handle not found on " + string(e.Platform)
	case ReasonBlocked:
		return "scraping backend was blocked by " + string(e.Platform)
	case ReasonBackendError:
		return "scraping backend error"
	default:
		return "could not retrieve data for this handle"
	}
}

func (e *ScrapeFailure) Is(target error) bool {
	return target == ErrScrapeFailed
}

func (e *ScrapeFailure) Unwrap() error {
	return e.Err
}

// PartialStorageFailure is a non-fatal warning: the account is linked but its items were not stored.
type PartialStorageFailure struct {
	AccountID uuid.UUID
	Err       error
}

func (e *PartialStorageFailure) Error() string {
	return fmt.Sprintf("%s for account %s: %v", ErrPartialStorage, e.AccountID, e.Err)
}

func (e *PartialStorageFailure) Is(target error) bool {
	return target == ErrPartialStorage
}

func (e *PartialStorageFailure) Unwrap() error {
	return e.Err
}
