package ring

import (
	"errors"
	"fmt"
)

// NotFoundError is implemented by errors meaning a remote resource does
// not exist, as opposed to the remote call failing.
type NotFoundError interface {
	error
	IsNotFound() bool
}

func IsNotFound(err error) bool {
	var nfe NotFoundError
	if errors.As(err, &nfe) {
		return nfe.IsNotFound()
	}
	return false
}

// AlreadyExistsError is implemented by errors meaning the mutation's
// target is already present. These are non-fatal: the run reports a
// warning and exits by the normal readiness rule.
type AlreadyExistsError interface {
	error
	IsExists() bool
}

func IsAlreadyExists(err error) bool {
	var aee AlreadyExistsError
	if errors.As(err, &aee) {
		return aee.IsExists()
	}
	return false
}

// PolicyNotFoundError is returned when a policy id matches no known
// policy category. Terminal for the run.
type PolicyNotFoundError struct {
	PolicyID string
}

func (e *PolicyNotFoundError) Error() string {
	return fmt.Sprintf("policy %s not found in any policy category", e.PolicyID)
}

func (e *PolicyNotFoundError) IsNotFound() bool {
	return true
}

// TargetGroupNotFoundError is returned when auto-promotion resolves the
// destination ring group by display name and no such group exists.
// Terminal for the run; promotion must never silently skip the mutation
// it was asked to perform.
type TargetGroupNotFoundError struct {
	GroupName string
}

func (e *TargetGroupNotFoundError) Error() string {
	return fmt.Sprintf("target group %q not found", e.GroupName)
}

func (e *TargetGroupNotFoundError) IsNotFound() bool {
	return true
}

// AlreadyAssignedError is returned when the mutation's target group is
// already in the policy's assignment list. The assignment set is keyed by
// group id, so a second assign would be a duplicate; callers treat this
// as a reported no-op, not a failure.
type AlreadyAssignedError struct {
	PolicyID  string
	GroupName string
}

func (e *AlreadyAssignedError) Error() string {
	return fmt.Sprintf("policy %s is already assigned to group %q", e.PolicyID, e.GroupName)
}

func (e *AlreadyAssignedError) IsExists() bool {
	return true
}

// ValidationError is returned when run inputs are rejected before any
// network activity.
type ValidationError struct {
	Name   string
	Reason string
}

func NewValidationError(name, reason string) *ValidationError {
	return &ValidationError{Name: name, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Name, e.Reason)
}
