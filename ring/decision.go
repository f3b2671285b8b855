package ring

// Ready reports whether the metrics clear the promotion gate. The rate
// comparison is inclusive, and a run with zero reporting devices is never
// ready no matter what the rate or threshold says: the explicit
// TotalDevices guard dominates.
func Ready(m DeploymentMetrics, threshold int) bool {
	return m.SuccessRate >= float64(threshold) && m.TotalDevices > 0
}

// Shortfall is how far the success rate falls below the threshold,
// rounded to two decimals. Zero when the gate is cleared.
func Shortfall(m DeploymentMetrics, threshold int) float64 {
	if Ready(m, threshold) {
		return 0
	}
	return round2(float64(threshold) - m.SuccessRate)
}

// DecisionKind is what the readiness gate concluded, before any mutation
// is attempted.
type DecisionKind string

const (
	// DecisionAlreadyComplete: the next stage is the terminal one, there
	// is nothing left to promote to.
	DecisionAlreadyComplete DecisionKind = "already-complete"
	// DecisionNotReady: the metrics do not clear the gate.
	DecisionNotReady DecisionKind = "not-ready"
	// DecisionAwaitTrigger: the gate is cleared but auto-promote is off,
	// so the run only reports readiness.
	DecisionAwaitTrigger DecisionKind = "await-trigger"
	// DecisionExecute: the gate is cleared and the mutation should run.
	DecisionExecute DecisionKind = "execute"
)

// Decision is the pure conclusion of the promotion gate.
type Decision struct {
	Kind      DecisionKind
	Ready     bool
	Shortfall float64
}

// Decide applies the promotion gate in its fixed order: the terminal
// stage short-circuits everything, then readiness, then the manual
// trigger gate. It is a pure function; acting on DecisionExecute is the
// caller's job.
func Decide(m DeploymentMetrics, next Stage, threshold int, autoPromote bool) Decision {
	ready := Ready(m, threshold)
	switch {
	case next == StageCompleted:
		return Decision{Kind: DecisionAlreadyComplete, Ready: ready}
	case !ready:
		return Decision{Kind: DecisionNotReady, Shortfall: Shortfall(m, threshold)}
	case !autoPromote:
		return Decision{Kind: DecisionAwaitTrigger, Ready: true}
	default:
		return Decision{Kind: DecisionExecute, Ready: true}
	}
}
