package ring

import "sort"

// Group is an Entra ID security group, the unit policies are assigned to.
type Group struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// GroupAssignment ties a policy to one group with include or exclude
// semantics, plus an optional device filter reference carried through
// unchanged when assignments are rewritten.
type GroupAssignment struct {
	GroupID    string `json:"group_id"`
	GroupName  string `json:"group_name,omitempty"`
	Exclude    bool   `json:"exclude,omitempty"`
	FilterID   string `json:"filter_id,omitempty"`
	FilterType string `json:"filter_type,omitempty"`
}

// AssignmentSet holds a policy's assignments keyed by group id. A group
// appears at most once per policy, so adds of an already-present group are
// refused rather than duplicated.
type AssignmentSet map[string]GroupAssignment

// NewAssignmentSet builds a set from the given assignments. Later
// duplicates of the same group id are dropped.
func NewAssignmentSet(assignments ...GroupAssignment) AssignmentSet {
	s := make(AssignmentSet, len(assignments))
	for _, a := range assignments {
		s.Add(a)
	}
	return s
}

// Add inserts a and reports whether it was inserted. It returns false,
// leaving the set unchanged, when the group id is already present.
func (s AssignmentSet) Add(a GroupAssignment) bool {
	if _, ok := s[a.GroupID]; ok {
		return false
	}
	s[a.GroupID] = a
	return true
}

// Contains reports whether the set has an assignment for the group id,
// include or exclude.
func (s AssignmentSet) Contains(groupID string) bool {
	_, ok := s[groupID]
	return ok
}

// ContainsGroupName reports whether the set has an inclusion assignment
// for a group with the given display name. Exclusion assignments do not
// count: a policy excluded from a ring group is not deployed to that
// ring.
func (s AssignmentSet) ContainsGroupName(name string) bool {
	for _, a := range s {
		if !a.Exclude && a.GroupName == name {
			return true
		}
	}
	return false
}

// Sorted returns the assignments ordered by group name, then group id,
// for stable report and table output.
func (s AssignmentSet) Sorted() []GroupAssignment {
	out := make([]GroupAssignment, 0, len(s))
	for _, a := range s {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GroupName != out[j].GroupName {
			return out[i].GroupName < out[j].GroupName
		}
		return out[i].GroupID < out[j].GroupID
	})
	return out
}

// GroupNames returns the display names of the inclusion assignments,
// sorted. Assignments whose names could not be resolved are omitted.
func (s AssignmentSet) GroupNames() []string {
	var names []string
	for _, a := range s {
		if !a.Exclude && a.GroupName != "" {
			names = append(names, a.GroupName)
		}
	}
	sort.Strings(names)
	return names
}

// SkippedAssignment records an assignment whose group details could not
// be fetched, with the reason it was skipped.
type SkippedAssignment struct {
	GroupID string `json:"group_id"`
	Reason  string `json:"reason"`
}

// AssignmentDetails is the partial-success result of loading a policy's
// assignments and enriching each with its group's display name. Set holds
// the assignments that resolved; Skipped lists the ones that did not,
// each with its reason, so partial failures stay visible to callers
// instead of disappearing into a log line.
type AssignmentDetails struct {
	Set     AssignmentSet       `json:"-"`
	Skipped []SkippedAssignment `json:"skipped,omitempty"`
}
