package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-multierror"
	"github.com/ringshift/ringshift/ring"
	"github.com/rs/zerolog/log"
)

const (
	targetTypeGroup     = "#microsoft.graph.groupAssignmentTarget"
	targetTypeExclusion = "#microsoft.graph.exclusionGroupAssignmentTarget"
)

// assignmentTarget is Graph's polymorphic assignment target. Group and
// exclusion-group targets carry a group id; other kinds (all devices,
// all licensed users) do not and are carried through mutations verbatim.
type assignmentTarget struct {
	ODataType  string `json:"@odata.type"`
	GroupID    string `json:"groupId,omitempty"`
	FilterID   string `json:"deviceAndAppManagementAssignmentFilterId,omitempty"`
	FilterType string `json:"deviceAndAppManagementAssignmentFilterType,omitempty"`
}

type assignment struct {
	ID     string           `json:"id,omitempty"`
	Target assignmentTarget `json:"target"`
}

type assignRequest struct {
	Assignments []assignment `json:"assignments"`
}

func (c *Client) rawAssignments(ctx context.Context, collection, policyID string) ([]assignment, error) {
	return getPaged[assignment](ctx, c, c.url(collection+"/"+url.PathEscape(policyID)+"/assignments", nil))
}

// PolicyAssignments fetches the policy's group assignments and resolves
// each group's display name with one lookup per target. The lookups are
// per-item fallible: a failed one skips that assignment, with its
// reason, instead of failing the whole read, and the skips stay visible
// in the result. Non-group targets play no part in ring membership and
// are omitted here.
func (c *Client) PolicyAssignments(ctx context.Context, policy ring.Policy) (*ring.AssignmentDetails, error) {
	resource, ok := policy.Category.GraphResource()
	if !ok {
		return nil, fmt.Errorf("policy %s has unknown category %q", policy.ID, policy.Category)
	}

	raw, err := c.rawAssignments(ctx, resource.Collection, policy.ID)
	if err != nil {
		return nil, fmt.Errorf("retrieving assignments for policy %s: %w", policy.ID, err)
	}

	details := &ring.AssignmentDetails{Set: ring.NewAssignmentSet()}
	var lookupErrs *multierror.Error
	for _, a := range raw {
		var exclude bool
		switch a.Target.ODataType {
		case targetTypeGroup:
		case targetTypeExclusion:
			exclude = true
		default:
			log.Debug().Str("target", a.Target.ODataType).Msg("skipping non-group assignment target")
			continue
		}

		group, err := c.GroupByID(ctx, a.Target.GroupID)
		if err != nil {
			details.Skipped = append(details.Skipped, ring.SkippedAssignment{
				GroupID: a.Target.GroupID,
				Reason:  err.Error(),
			})
			lookupErrs = multierror.Append(lookupErrs, err)
			continue
		}

		ga := ring.GroupAssignment{
			GroupID:   a.Target.GroupID,
			GroupName: group.DisplayName,
			Exclude:   exclude,
		}
		// A filter type of "none" means no filter; carry a filter
		// reference only when one is actually set.
		if a.Target.FilterID != "" {
			ga.FilterID = a.Target.FilterID
			ga.FilterType = a.Target.FilterType
		}
		details.Set.Add(ga)
	}

	if err := lookupErrs.ErrorOrNil(); err != nil {
		log.Warn().
			Int("skipped", len(details.Skipped)).
			Err(err).
			Msg("some assignment groups could not be resolved")
	}
	return details, nil
}

// AddAssignment adds an inclusion assignment for the group to the
// policy. Graph's assign endpoint replaces the whole assignment list, so
// the current targets are re-fetched and carried over verbatim with the
// new group appended; existing assignments of every kind survive
// untouched. Attempting to add a group that is already targeted returns
// an AlreadyAssignedError and mutates nothing.
func (c *Client) AddAssignment(ctx context.Context, policy ring.Policy, group ring.Group) error {
	resource, ok := policy.Category.GraphResource()
	if !ok {
		return fmt.Errorf("policy %s has unknown category %q", policy.ID, policy.Category)
	}

	current, err := c.rawAssignments(ctx, resource.Collection, policy.ID)
	if err != nil {
		return fmt.Errorf("retrieving assignments for policy %s: %w", policy.ID, err)
	}

	next := make([]assignment, 0, len(current)+1)
	for _, a := range current {
		if a.Target.ODataType == targetTypeGroup && a.Target.GroupID == group.ID {
			return &ring.AlreadyAssignedError{PolicyID: policy.ID, GroupName: group.DisplayName}
		}
		// Assignment ids are owned by the service and not accepted back
		// on the assign call.
		a.ID = ""
		next = append(next, a)
	}
	next = append(next, assignment{
		Target: assignmentTarget{ODataType: targetTypeGroup, GroupID: group.ID},
	})

	var ignore json.RawMessage
	err = do(ctx, c, http.MethodPost,
		c.url(resource.Collection+"/"+url.PathEscape(policy.ID)+"/assign", nil),
		assignRequest{Assignments: next},
		&ignore,
	)
	if err != nil {
		return fmt.Errorf("assigning policy %s to group %s: %w", policy.ID, group.ID, err)
	}

	log.Info().
		Str("policy", policy.ID).
		Str("group", group.DisplayName).
		Msg("assignment added")
	return nil
}
