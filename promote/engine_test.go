package promote

import (
	"context"
	"errors"
	"testing"

	"github.com/WatchBeam/clock"
	"github.com/ringshift/ringshift/ring"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	FindPolicyFunc        func(ctx context.Context, policyID string) (*ring.Policy, error)
	GroupByNameFunc       func(ctx context.Context, name string) (*ring.Group, error)
	DeviceStatusesFunc    func(ctx context.Context, policy ring.Policy) ([]ring.DeviceStatus, error)
	PolicyAssignmentsFunc func(ctx context.Context, policy ring.Policy) (*ring.AssignmentDetails, error)
	AddAssignmentFunc     func(ctx context.Context, policy ring.Policy, group ring.Group) error
}

func (m *mockClient) FindPolicy(ctx context.Context, policyID string) (*ring.Policy, error) {
	return m.FindPolicyFunc(ctx, policyID)
}

func (m *mockClient) GroupByName(ctx context.Context, name string) (*ring.Group, error) {
	return m.GroupByNameFunc(ctx, name)
}

func (m *mockClient) DeviceStatuses(ctx context.Context, policy ring.Policy) ([]ring.DeviceStatus, error) {
	return m.DeviceStatusesFunc(ctx, policy)
}

func (m *mockClient) PolicyAssignments(ctx context.Context, policy ring.Policy) (*ring.AssignmentDetails, error) {
	return m.PolicyAssignmentsFunc(ctx, policy)
}

func (m *mockClient) AddAssignment(ctx context.Context, policy ring.Policy, group ring.Group) error {
	return m.AddAssignmentFunc(ctx, policy, group)
}

var testPolicy = ring.Policy{
	ID:          "0a1b2c3d-0000-1111-2222-333344445555",
	DisplayName: "Windows Baseline",
	Category:    ring.CategoryCompliance,
}

func compliantStatuses(succeeded, failed int) []ring.DeviceStatus {
	out := make([]ring.DeviceStatus, 0, succeeded+failed)
	for i := 0; i < succeeded; i++ {
		out = append(out, ring.DeviceStatus{Status: "compliant"})
	}
	for i := 0; i < failed; i++ {
		out = append(out, ring.DeviceStatus{Status: "error"})
	}
	return out
}

// happyClient returns a mock with a policy in dev that has perfect
// metrics; tests override the pieces they exercise.
func happyClient(assigned *ring.AssignmentDetails) *mockClient {
	return &mockClient{
		FindPolicyFunc: func(ctx context.Context, policyID string) (*ring.Policy, error) {
			p := testPolicy
			p.ID = policyID
			return &p, nil
		},
		PolicyAssignmentsFunc: func(ctx context.Context, policy ring.Policy) (*ring.AssignmentDetails, error) {
			return assigned, nil
		},
		DeviceStatusesFunc: func(ctx context.Context, policy ring.Policy) ([]ring.DeviceStatus, error) {
			return compliantStatuses(8, 0), nil
		},
		GroupByNameFunc: func(ctx context.Context, name string) (*ring.Group, error) {
			return &ring.Group{ID: "g-" + name, DisplayName: name}, nil
		},
		AddAssignmentFunc: func(ctx context.Context, policy ring.Policy, group ring.Group) error {
			return nil
		},
	}
}

func devAssigned() *ring.AssignmentDetails {
	return &ring.AssignmentDetails{
		Set: ring.NewAssignmentSet(
			ring.GroupAssignment{GroupID: "g-dev", GroupName: "Intune-Dev-Users"},
		),
	}
}

func testConfig() Config {
	return Config{
		PolicyID:    testPolicy.ID,
		Stage:       ring.StageDev,
		Threshold:   80,
		AutoPromote: true,
		RingGroups:  ring.DefaultRingGroups(),
	}
}

func TestRunValidatesBeforeAnyNetworkCall(t *testing.T) {
	calls := 0
	client := &mockClient{
		FindPolicyFunc: func(ctx context.Context, policyID string) (*ring.Policy, error) {
			calls++
			return &testPolicy, nil
		},
	}
	engine := NewEngine(client)

	for _, cfg := range []Config{
		{PolicyID: "", Stage: ring.StageDev, Threshold: 80},
		{PolicyID: "p", Stage: ring.StageDev, Threshold: 0},
		{PolicyID: "p", Stage: ring.StageDev, Threshold: 101},
		{PolicyID: "p", Stage: ring.Stage("staging"), Threshold: 80},
		{PolicyID: "p", Stage: ring.StageCompleted, Threshold: 80},
	} {
		_, err := engine.Run(context.Background(), cfg)
		require.Error(t, err)
		var ve *ring.ValidationError
		require.ErrorAs(t, err, &ve)
	}
	require.Zero(t, calls)
}

func TestRunPromotes(t *testing.T) {
	// The full happy path: dev ring is assigned, every device succeeded,
	// auto-promote on. The policy moves to test and the final set holds
	// both rings.
	client := happyClient(devAssigned())

	var added []string
	client.AddAssignmentFunc = func(ctx context.Context, policy ring.Policy, group ring.Group) error {
		added = append(added, group.DisplayName)
		return nil
	}
	client.PolicyAssignmentsFunc = func(ctx context.Context, policy ring.Policy) (*ring.AssignmentDetails, error) {
		set := ring.NewAssignmentSet(ring.GroupAssignment{GroupID: "g-dev", GroupName: "Intune-Dev-Users"})
		if len(added) > 0 {
			set.Add(ring.GroupAssignment{GroupID: "g-Intune-Test-Users", GroupName: "Intune-Test-Users"})
		}
		return &ring.AssignmentDetails{Set: set}, nil
	}

	engine := NewEngine(client)
	mock := clock.NewMockClock()
	engine.clock = mock

	outcome, err := engine.Run(context.Background(), testConfig())
	require.NoError(t, err)

	require.Equal(t, ring.OutcomePromoted, outcome.Status)
	require.True(t, outcome.ReadyForPromotion)
	require.Equal(t, ring.StageDev, outcome.CurrentStage)
	require.Equal(t, ring.StageTest, outcome.NextStage)
	require.Equal(t, ring.ActionPromote, outcome.Action)
	require.Equal(t, 100.0, outcome.Metrics.SuccessRate)
	require.Equal(t, []string{"Intune-Test-Users"}, added)

	require.NotNil(t, outcome.TargetGroup)
	require.Equal(t, "Intune-Test-Users", outcome.TargetGroup.DisplayName)
	require.NotNil(t, outcome.PromotedAt)
	require.Equal(t, mock.Now().UTC(), *outcome.PromotedAt)

	finalNames := make([]string, 0, len(outcome.FinalAssignments))
	for _, a := range outcome.FinalAssignments {
		finalNames = append(finalNames, a.GroupName)
	}
	require.Equal(t, []string{"Intune-Dev-Users", "Intune-Test-Users"}, finalNames)
}

func TestRunDeploysWhenNotInCurrentRing(t *testing.T) {
	client := happyClient(&ring.AssignmentDetails{Set: ring.NewAssignmentSet()})
	engine := NewEngine(client)

	outcome, err := engine.Run(context.Background(), testConfig())
	require.NoError(t, err)

	require.Equal(t, ring.OutcomeDeployed, outcome.Status)
	require.Equal(t, ring.ActionDeploy, outcome.Action)
	// Deploy targets the current stage's ring, not the next stage's.
	require.Equal(t, ring.StageDev, outcome.NextStage)
	require.Equal(t, "Intune-Dev-Users", outcome.TargetGroup.DisplayName)
}

func TestRunNotReady(t *testing.T) {
	client := happyClient(devAssigned())
	client.DeviceStatusesFunc = func(ctx context.Context, policy ring.Policy) ([]ring.DeviceStatus, error) {
		return compliantStatuses(5, 5), nil
	}
	engine := NewEngine(client)

	outcome, err := engine.Run(context.Background(), testConfig())
	require.NoError(t, err)

	require.Equal(t, ring.OutcomeNotReady, outcome.Status)
	require.False(t, outcome.ReadyForPromotion)
	require.Equal(t, 30.0, outcome.Shortfall)
	require.Nil(t, outcome.TargetGroup)
	require.Nil(t, outcome.PromotedAt)
}

func TestRunZeroDevicesIsNeverReady(t *testing.T) {
	client := happyClient(devAssigned())
	client.DeviceStatusesFunc = func(ctx context.Context, policy ring.Policy) ([]ring.DeviceStatus, error) {
		return nil, nil
	}
	engine := NewEngine(client)

	cfg := testConfig()
	cfg.Threshold = 1
	outcome, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, ring.OutcomeNotReady, outcome.Status)
	require.False(t, outcome.ReadyForPromotion)
	require.Zero(t, outcome.Metrics.TotalDevices)
}

func TestRunAwaitsManualTrigger(t *testing.T) {
	client := happyClient(devAssigned())
	mutated := false
	client.AddAssignmentFunc = func(ctx context.Context, policy ring.Policy, group ring.Group) error {
		mutated = true
		return nil
	}
	engine := NewEngine(client)

	cfg := testConfig()
	cfg.AutoPromote = false
	outcome, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, ring.OutcomeReadyManual, outcome.Status)
	require.True(t, outcome.ReadyForPromotion)
	require.False(t, mutated)
	require.Equal(t,
		"ringshift promote --policy-id "+testPolicy.ID+" --stage dev --threshold 80 --auto-promote",
		outcome.Guidance)
}

func TestRunAlreadyComplete(t *testing.T) {
	client := happyClient(&ring.AssignmentDetails{
		Set: ring.NewAssignmentSet(
			ring.GroupAssignment{GroupID: "g-prod", GroupName: "Intune-Prod-Users"},
		),
	})
	engine := NewEngine(client)

	cfg := testConfig()
	cfg.Stage = ring.StageProd
	outcome, err := engine.Run(context.Background(), cfg)
	require.NoError(t, err)

	require.Equal(t, ring.OutcomeAlreadyComplete, outcome.Status)
	require.Equal(t, ring.StageCompleted, outcome.NextStage)
	// Terminal short-circuits the mutation but readiness still reflects
	// the metrics, and with it the exit code.
	require.True(t, outcome.ReadyForPromotion)
	require.Nil(t, outcome.PromotedAt)
}

func TestRunAlreadyAssignedIsANoOpWarning(t *testing.T) {
	// The dev ring is assigned (so the action is promote to test), and
	// the test ring is somehow already in the set too.
	client := happyClient(&ring.AssignmentDetails{
		Set: ring.NewAssignmentSet(
			ring.GroupAssignment{GroupID: "g-dev", GroupName: "Intune-Dev-Users"},
			ring.GroupAssignment{GroupID: "g-Intune-Test-Users", GroupName: "Intune-Test-Users"},
		),
	})
	mutated := false
	client.AddAssignmentFunc = func(ctx context.Context, policy ring.Policy, group ring.Group) error {
		mutated = true
		return nil
	}
	engine := NewEngine(client)

	outcome, err := engine.Run(context.Background(), testConfig())
	require.NoError(t, err)

	require.Equal(t, ring.OutcomeAlreadyAssigned, outcome.Status)
	require.True(t, outcome.ReadyForPromotion)
	require.False(t, mutated)
	require.Len(t, outcome.Assignments, 2)
}

func TestRunAlreadyAssignedReportedByClient(t *testing.T) {
	// The local set misses the target group but the service refuses the
	// duplicate; the refusal downgrades to the same no-op warning.
	client := happyClient(devAssigned())
	client.AddAssignmentFunc = func(ctx context.Context, policy ring.Policy, group ring.Group) error {
		return &ring.AlreadyAssignedError{PolicyID: policy.ID, GroupName: group.DisplayName}
	}
	engine := NewEngine(client)

	outcome, err := engine.Run(context.Background(), testConfig())
	require.NoError(t, err)
	require.Equal(t, ring.OutcomeAlreadyAssigned, outcome.Status)
}

func TestRunTargetGroupNotFoundIsFatal(t *testing.T) {
	client := happyClient(devAssigned())
	client.GroupByNameFunc = func(ctx context.Context, name string) (*ring.Group, error) {
		return nil, &ring.TargetGroupNotFoundError{GroupName: name}
	}
	engine := NewEngine(client)

	_, err := engine.Run(context.Background(), testConfig())
	require.Error(t, err)
	require.True(t, ring.IsNotFound(err))
	var tgnf *ring.TargetGroupNotFoundError
	require.ErrorAs(t, err, &tgnf)
	require.Equal(t, "Intune-Test-Users", tgnf.GroupName)
}

func TestRunPolicyNotFoundIsFatal(t *testing.T) {
	client := happyClient(devAssigned())
	client.FindPolicyFunc = func(ctx context.Context, policyID string) (*ring.Policy, error) {
		return nil, &ring.PolicyNotFoundError{PolicyID: policyID}
	}
	engine := NewEngine(client)

	_, err := engine.Run(context.Background(), testConfig())
	require.Error(t, err)
	require.True(t, ring.IsNotFound(err))
}

func TestRunRemoteFailuresAbort(t *testing.T) {
	boom := errors.New("connection reset")

	t.Run("loading device statuses", func(t *testing.T) {
		client := happyClient(devAssigned())
		client.DeviceStatusesFunc = func(ctx context.Context, policy ring.Policy) ([]ring.DeviceStatus, error) {
			return nil, boom
		}
		_, err := NewEngine(client).Run(context.Background(), testConfig())
		require.Error(t, err)
		require.ErrorIs(t, err, boom)
		require.Contains(t, err.Error(), "loading device statuses")
	})

	t.Run("verification re-fetch", func(t *testing.T) {
		client := happyClient(devAssigned())
		fetches := 0
		client.PolicyAssignmentsFunc = func(ctx context.Context, policy ring.Policy) (*ring.AssignmentDetails, error) {
			fetches++
			if fetches > 1 {
				return nil, boom
			}
			return devAssigned(), nil
		}
		_, err := NewEngine(client).Run(context.Background(), testConfig())
		require.Error(t, err)
		require.Contains(t, err.Error(), "verifying assignment")
	})
}

func TestEvaluateNeverMutates(t *testing.T) {
	client := happyClient(devAssigned())
	client.AddAssignmentFunc = func(ctx context.Context, policy ring.Policy, group ring.Group) error {
		t.Fatal("evaluate must not mutate")
		return nil
	}
	client.GroupByNameFunc = func(ctx context.Context, name string) (*ring.Group, error) {
		t.Fatal("evaluate must not resolve the target group")
		return nil, nil
	}
	engine := NewEngine(client)

	ev, err := engine.Evaluate(context.Background(), testConfig())
	require.NoError(t, err)
	require.Equal(t, ring.DecisionExecute, ev.Decision.Kind)
	require.Equal(t, ring.StageTest, ev.NextStage)
}
