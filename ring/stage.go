package ring

import "fmt"

// Stage is one tier of a progressive rollout. Policies move through the
// real stages in a fixed order, dev then test then prod; StageCompleted is
// a terminal pseudo-stage reachable only from prod and has no ring group
// of its own.
type Stage string

const (
	StageDev  Stage = "dev"
	StageTest Stage = "test"
	StageProd Stage = "prod"
	// StageCompleted marks a policy that is already assigned to the prod
	// ring. It is never a valid input stage.
	StageCompleted Stage = "completed"
)

// Valid reports whether s is a stage a run may start from. StageCompleted
// is excluded: it only ever appears as a computed next stage.
func (s Stage) Valid() bool {
	switch s {
	case StageDev, StageTest, StageProd:
		return true
	default:
		return false
	}
}

// Next returns the stage after s in the rollout order. Prod's successor is
// the terminal StageCompleted, which is its own successor.
func (s Stage) Next() Stage {
	switch s {
	case StageDev:
		return StageTest
	case StageTest:
		return StageProd
	default:
		return StageCompleted
	}
}

// ParseStage converts a user-supplied stage name into a Stage, failing
// with a ValidationError for anything other than dev, test or prod.
func ParseStage(value string) (Stage, error) {
	s := Stage(value)
	if !s.Valid() {
		return "", NewValidationError("stage", fmt.Sprintf("%q is not one of dev, test, prod", value))
	}
	return s, nil
}

// Action is what a run would do to move the policy forward: deploy it to
// its current stage's ring group, or promote it to the next stage's.
type Action string

const (
	ActionDeploy  Action = "deploy"
	ActionPromote Action = "promote"
)

// RingGroups maps each real stage to the display name of the Entra ID
// group targeted at that stage.
type RingGroups struct {
	Dev  string `json:"dev"`
	Test string `json:"test"`
	Prod string `json:"prod"`
}

// DefaultRingGroups returns the conventional group names used when no
// overrides are configured.
func DefaultRingGroups() RingGroups {
	return RingGroups{
		Dev:  "Intune-Dev-Users",
		Test: "Intune-Test-Users",
		Prod: "Intune-Prod-Users",
	}
}

// GroupFor returns the ring group name for s. The second return is false
// for StageCompleted and unknown stages, which have no group.
func (g RingGroups) GroupFor(s Stage) (string, bool) {
	switch s {
	case StageDev:
		return g.Dev, true
	case StageTest:
		return g.Test, true
	case StageProd:
		return g.Prod, true
	default:
		return "", false
	}
}

// Resolve maps the current stage and the policy's live assignment
// membership to the stage a promotion would target and the action that
// gets it there. A policy already assigned to its current stage's ring
// group promotes forward; one that is not must first deploy to the
// current stage. Exclusion assignments never count as ring membership.
func Resolve(current Stage, assignments AssignmentSet, groups RingGroups) (Stage, Action) {
	group, ok := groups.GroupFor(current)
	if ok && assignments.ContainsGroupName(group) {
		return current.Next(), ActionPromote
	}
	return current, ActionDeploy
}
