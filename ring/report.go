package ring

import "time"

// OutcomeStatus is the final disposition of one evaluation run.
type OutcomeStatus string

const (
	// OutcomeAlreadyComplete: the policy is assigned to the prod ring;
	// there is no further stage.
	OutcomeAlreadyComplete OutcomeStatus = "already-complete"
	// OutcomeNotReady: the success rate did not clear the threshold.
	OutcomeNotReady OutcomeStatus = "not-ready"
	// OutcomeReadyManual: the gate is cleared but auto-promote was off;
	// nothing was mutated.
	OutcomeReadyManual OutcomeStatus = "ready-manual"
	// OutcomeAlreadyAssigned: the mutation was requested but the target
	// group is already assigned; reported as a no-op warning.
	OutcomeAlreadyAssigned OutcomeStatus = "already-assigned"
	// OutcomeDeployed: the policy was assigned to its current stage's
	// ring group for the first time.
	OutcomeDeployed OutcomeStatus = "deployed"
	// OutcomePromoted: the policy was assigned to the next stage's ring
	// group.
	OutcomePromoted OutcomeStatus = "promoted"
)

// PromotionOutcome is everything one run concluded, with enough detail to
// build the persisted report without recomputation. Fields that only
// apply to some outcomes are omitted from JSON when empty.
type PromotionOutcome struct {
	Status       OutcomeStatus     `json:"status"`
	Policy       Policy            `json:"policy"`
	CurrentStage Stage             `json:"current_stage"`
	NextStage    Stage             `json:"next_stage"`
	Action       Action            `json:"action"`
	Threshold    int               `json:"threshold"`
	AutoPromote  bool              `json:"auto_promote"`
	Metrics      DeploymentMetrics `json:"metrics"`

	// ReadyForPromotion drives the process exit code: zero exactly when
	// this is true.
	ReadyForPromotion bool `json:"ready_for_promotion"`
	// Shortfall is threshold minus rate when the gate was not cleared.
	Shortfall float64 `json:"shortfall,omitempty"`

	// Assignments is the policy's assignment list as observed before any
	// mutation; SkippedGroups lists assignments whose group details could
	// not be resolved.
	Assignments   []GroupAssignment   `json:"assignments"`
	SkippedGroups []SkippedAssignment `json:"skipped_groups,omitempty"`

	// TargetGroup, PromotedAt and FinalAssignments are set when a
	// mutation ran: the resolved destination group, when the assign call
	// happened, and the assignment list re-fetched afterwards to verify
	// it.
	TargetGroup      *Group            `json:"target_group,omitempty"`
	PromotedAt       *time.Time        `json:"promoted_at,omitempty"`
	FinalAssignments []GroupAssignment `json:"final_assignments,omitempty"`

	// Guidance is the exact invocation that would perform the promotion,
	// set when the gate is cleared but auto-promote was off.
	Guidance string `json:"guidance,omitempty"`
}

// PromotionReport is the persisted snapshot of one run: the outcome plus
// run identity. Created once, never mutated.
type PromotionReport struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	PromotionOutcome
}
