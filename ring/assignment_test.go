package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignmentSetAdd(t *testing.T) {
	s := NewAssignmentSet()

	require.True(t, s.Add(GroupAssignment{GroupID: "g1", GroupName: "Intune-Dev-Users"}))
	require.True(t, s.Add(GroupAssignment{GroupID: "g2", GroupName: "Intune-Test-Users"}))
	require.Len(t, s, 2)

	// A second add of the same group id is refused, even with different
	// details: the set is keyed by group id.
	require.False(t, s.Add(GroupAssignment{GroupID: "g1", GroupName: "Renamed-Group"}))
	require.Len(t, s, 2)
	require.Equal(t, "Intune-Dev-Users", s["g1"].GroupName)
}

func TestNewAssignmentSetDropsDuplicates(t *testing.T) {
	s := NewAssignmentSet(
		GroupAssignment{GroupID: "g1", GroupName: "first"},
		GroupAssignment{GroupID: "g1", GroupName: "second"},
	)
	require.Len(t, s, 1)
	require.Equal(t, "first", s["g1"].GroupName)
}

func TestAssignmentSetContains(t *testing.T) {
	s := NewAssignmentSet(
		GroupAssignment{GroupID: "g1", GroupName: "Intune-Dev-Users"},
		GroupAssignment{GroupID: "g2", GroupName: "Blocked-Devices", Exclude: true},
	)

	require.True(t, s.Contains("g1"))
	require.True(t, s.Contains("g2"))
	require.False(t, s.Contains("g3"))

	require.True(t, s.ContainsGroupName("Intune-Dev-Users"))
	// Exclusions are present in the set but never count as membership by
	// name.
	require.False(t, s.ContainsGroupName("Blocked-Devices"))
	require.False(t, s.ContainsGroupName("Intune-Test-Users"))
}

func TestAssignmentSetSorted(t *testing.T) {
	s := NewAssignmentSet(
		GroupAssignment{GroupID: "g3", GroupName: "zeta"},
		GroupAssignment{GroupID: "g1", GroupName: "alpha"},
		GroupAssignment{GroupID: "g2", GroupName: "alpha"},
	)

	sorted := s.Sorted()
	require.Len(t, sorted, 3)
	require.Equal(t, "g1", sorted[0].GroupID)
	require.Equal(t, "g2", sorted[1].GroupID)
	require.Equal(t, "g3", sorted[2].GroupID)
}

func TestAssignmentSetGroupNames(t *testing.T) {
	s := NewAssignmentSet(
		GroupAssignment{GroupID: "g1", GroupName: "beta"},
		GroupAssignment{GroupID: "g2", GroupName: "alpha"},
		GroupAssignment{GroupID: "g3", GroupName: "omitted", Exclude: true},
		GroupAssignment{GroupID: "g4"}, // name never resolved
	)
	require.Equal(t, []string{"alpha", "beta"}, s.GroupNames())
}
