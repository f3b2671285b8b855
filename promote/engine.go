// Package promote wires the domain core to the Graph client: it runs one
// policy's evaluation, performs the gated assignment mutation when called
// for, and assembles the run's report.
package promote

import (
	"context"
	"fmt"

	"github.com/WatchBeam/clock"
	"github.com/pkg/errors"
	"github.com/ringshift/ringshift/ring"
	"github.com/rs/zerolog/log"
)

// Client is the remote API surface the engine needs. *graph.Client
// satisfies it.
type Client interface {
	FindPolicy(ctx context.Context, policyID string) (*ring.Policy, error)
	GroupByName(ctx context.Context, name string) (*ring.Group, error)
	DeviceStatuses(ctx context.Context, policy ring.Policy) ([]ring.DeviceStatus, error)
	PolicyAssignments(ctx context.Context, policy ring.Policy) (*ring.AssignmentDetails, error)
	AddAssignment(ctx context.Context, policy ring.Policy, group ring.Group) error
}

// Config carries one run's inputs. It is built once at process start
// and passed in; the engine and the packages below it never read
// ambient environment state.
type Config struct {
	PolicyID    string
	Stage       ring.Stage
	Threshold   int
	AutoPromote bool
	RingGroups  ring.RingGroups
}

// Validate rejects bad inputs before any network activity.
func (c Config) Validate() error {
	if c.PolicyID == "" {
		return ring.NewValidationError("policy-id", "is required")
	}
	if c.Threshold < 1 || c.Threshold > 100 {
		return ring.NewValidationError("threshold", fmt.Sprintf("must be between 1 and 100, got %d", c.Threshold))
	}
	if !c.Stage.Valid() {
		return ring.NewValidationError("stage", fmt.Sprintf("%q is not one of dev, test, prod", string(c.Stage)))
	}
	return nil
}

// Engine evaluates one policy against its ring and optionally performs
// the promotion. One policy per run, synchronous; the caller owns the
// guarantee that at most one run mutates a given policy at a time.
type Engine struct {
	client Client
	clock  clock.Clock
}

func NewEngine(client Client) *Engine {
	return &Engine{client: client, clock: clock.C}
}

// Evaluation is everything observed and decided before any mutation.
type Evaluation struct {
	Policy      *ring.Policy
	Assignments *ring.AssignmentDetails
	Metrics     ring.DeploymentMetrics
	NextStage   ring.Stage
	Action      ring.Action
	Decision    ring.Decision
}

// Evaluate runs the read-only half of a promotion: detect the policy,
// load its assignments and device statuses, resolve the stage and apply
// the gate. Nothing is mutated regardless of the decision.
func (e *Engine) Evaluate(ctx context.Context, cfg Config) (*Evaluation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	policy, err := e.client.FindPolicy(ctx, cfg.PolicyID)
	if err != nil {
		return nil, errors.Wrap(err, "detecting policy")
	}

	assignments, err := e.client.PolicyAssignments(ctx, *policy)
	if err != nil {
		return nil, errors.Wrap(err, "loading assignments")
	}
	log.Info().
		Int("assignments", len(assignments.Set)).
		Int("skipped", len(assignments.Skipped)).
		Msg("assignments loaded")

	statuses, err := e.client.DeviceStatuses(ctx, *policy)
	if err != nil {
		return nil, errors.Wrap(err, "loading device statuses")
	}
	metrics := ring.Evaluate(statuses)
	log.Info().
		Int("devices", metrics.TotalDevices).
		Int("succeeded", metrics.Succeeded).
		Float64("rate", metrics.SuccessRate).
		Msg("deployment metrics computed")

	next, action := ring.Resolve(cfg.Stage, assignments.Set, cfg.RingGroups)
	decision := ring.Decide(metrics, next, cfg.Threshold, cfg.AutoPromote)
	log.Info().
		Str("current", string(cfg.Stage)).
		Str("next", string(next)).
		Str("action", string(action)).
		Str("decision", string(decision.Kind)).
		Msg("stage resolved")

	return &Evaluation{
		Policy:      policy,
		Assignments: assignments,
		Metrics:     metrics,
		NextStage:   next,
		Action:      action,
		Decision:    decision,
	}, nil
}

// Run performs a full promotion run: evaluate, act when the decision
// calls for it, and assemble the outcome the report is built from.
func (e *Engine) Run(ctx context.Context, cfg Config) (*ring.PromotionOutcome, error) {
	ev, err := e.Evaluate(ctx, cfg)
	if err != nil {
		return nil, err
	}
	outcome := newOutcome(cfg, ev)

	switch ev.Decision.Kind {
	case ring.DecisionAlreadyComplete:
		outcome.Status = ring.OutcomeAlreadyComplete
		log.Info().Str("policy", ev.Policy.ID).Msg("policy has completed its rollout")
	case ring.DecisionNotReady:
		outcome.Status = ring.OutcomeNotReady
		log.Info().
			Float64("shortfall", ev.Decision.Shortfall).
			Int("threshold", cfg.Threshold).
			Msg("success rate below threshold")
	case ring.DecisionAwaitTrigger:
		outcome.Status = ring.OutcomeReadyManual
		outcome.Guidance = promoteInvocation(cfg)
		log.Info().Str("run", outcome.Guidance).Msg("ready for promotion, auto-promote is off")
	case ring.DecisionExecute:
		if err := e.execute(ctx, cfg, ev, outcome); err != nil {
			return nil, err
		}
	}
	return outcome, nil
}

// execute performs the assignment mutation for a cleared gate: resolve
// the destination group, refuse a duplicate as a reported no-op, add the
// assignment, then re-fetch to verify and record the post-state.
func (e *Engine) execute(ctx context.Context, cfg Config, ev *Evaluation, outcome *ring.PromotionOutcome) error {
	groupName, ok := cfg.RingGroups.GroupFor(ev.NextStage)
	if !ok {
		// Unreachable: an execute decision implies a non-terminal stage.
		return errors.Errorf("no ring group for stage %s", ev.NextStage)
	}

	group, err := e.client.GroupByName(ctx, groupName)
	if err != nil {
		return errors.Wrap(err, "resolving target group")
	}
	outcome.TargetGroup = group

	if ev.Assignments.Set.Contains(group.ID) {
		outcome.Status = ring.OutcomeAlreadyAssigned
		log.Warn().
			Str("policy", ev.Policy.ID).
			Str("group", group.DisplayName).
			Msg("target group already assigned, nothing to do")
		return nil
	}

	if err := e.client.AddAssignment(ctx, *ev.Policy, *group); err != nil {
		if ring.IsAlreadyExists(err) {
			// The local duplicate check can lose a race with another
			// writer; the client's own refusal gets the same treatment.
			outcome.Status = ring.OutcomeAlreadyAssigned
			log.Warn().Err(err).Msg("target group already assigned, nothing to do")
			return nil
		}
		return errors.Wrap(err, "adding assignment")
	}

	promotedAt := e.clock.Now().UTC()
	outcome.PromotedAt = &promotedAt
	if ev.Action == ring.ActionDeploy {
		outcome.Status = ring.OutcomeDeployed
	} else {
		outcome.Status = ring.OutcomePromoted
	}

	after, err := e.client.PolicyAssignments(ctx, *ev.Policy)
	if err != nil {
		return errors.Wrap(err, "verifying assignment")
	}
	outcome.FinalAssignments = after.Set.Sorted()
	if !after.Set.Contains(group.ID) {
		log.Warn().
			Str("group", group.DisplayName).
			Msg("assignment not visible in verification read yet")
	}
	log.Info().
		Str("policy", ev.Policy.ID).
		Str("group", group.DisplayName).
		Str("status", string(outcome.Status)).
		Msg("assignment mutation verified")
	return nil
}

func newOutcome(cfg Config, ev *Evaluation) *ring.PromotionOutcome {
	return &ring.PromotionOutcome{
		Policy:            *ev.Policy,
		CurrentStage:      cfg.Stage,
		NextStage:         ev.NextStage,
		Action:            ev.Action,
		Threshold:         cfg.Threshold,
		AutoPromote:       cfg.AutoPromote,
		Metrics:           ev.Metrics,
		ReadyForPromotion: ev.Decision.Ready,
		Shortfall:         ev.Decision.Shortfall,
		Assignments:       ev.Assignments.Set.Sorted(),
		SkippedGroups:     ev.Assignments.Skipped,
	}
}

// promoteInvocation is the exact command that would perform the
// promotion this run only reported on.
func promoteInvocation(cfg Config) string {
	return fmt.Sprintf("ringshift promote --policy-id %s --stage %s --threshold %d --auto-promote",
		cfg.PolicyID, cfg.Stage, cfg.Threshold)
}
