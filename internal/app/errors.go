package app

import (
	"errors"
	"fmt"
	"strings"
)

type PlanErrorCode string

const (
	ErrNoCapacity           PlanErrorCode = "NO_CAPACITY"
	ErrDependencyNotPlanned PlanErrorCode = "DEPENDENCY_NOT_PLANNED"
	ErrDependencyConstraint PlanErrorCode = "DEPENDENCY_CONSTRAINT"
	ErrNoRemainingHours     PlanErrorCode = "NO_REMAINING_HOURS"
	ErrPartialAllocation    PlanErrorCode = "PARTIAL_ALLOCATION"
	ErrAllocation           PlanErrorCode = "ALLOCATION_ERROR"
	ErrNoAccess             PlanErrorCode = "NO_ACCESS"
	ErrTaskCycle            PlanErrorCode = "TASK_CYCLE"
	ErrInvalidRequest       PlanErrorCode = "INVALID_REQUEST"
	ErrPushForwardFailed    PlanErrorCode = "PUSH_FORWARD_FAILED"
)

// PlanError is a scheduling failure with enough detail for the caller to
// retry with adjusted inputs.
type PlanError struct {
	Code    PlanErrorCode
	Message string

	TaskID string
	// RemainingHours is the hours still unplaced (partial allocation) or
	// the hours requested.
	RemainingHours float64
	// AvailableHours is the total capacity found in the searched window.
	AvailableHours float64
	// Conflicts names tasks that blocked the request.
	Conflicts []string

	Err error
}

func (e *PlanError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Code == ErrPartialAllocation {
		fmt.Fprintf(&b, " (%.2fh unplaced, %.2fh available)", e.RemainingHours, e.AvailableHours)
	}
	if len(e.Conflicts) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Conflicts, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *PlanError) Unwrap() error { return e.Err }

// NewPlanError builds a PlanError with a formatted message.
func NewPlanError(code PlanErrorCode, format string, args ...any) *PlanError {
	return &PlanError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// PlanErrorCodeOf extracts the code of a PlanError anywhere in err's chain.
func PlanErrorCodeOf(err error) (PlanErrorCode, bool) {
	var pe *PlanError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}

// IsPlanError reports whether err carries a PlanError with the given code.
func IsPlanError(err error, code PlanErrorCode) bool {
	c, ok := PlanErrorCodeOf(err)
	return ok && c == code
}
