package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-multierror"
	"github.com/ringshift/ringshift/ring"
	"github.com/rs/zerolog/log"
)

// FindPolicy locates a policy id by probing each known category's
// collection in order; the first hit wins. A category miss is a 404 and
// moves on to the next probe; any other failure is collected, and if the
// id never matched the collected failures are returned so a transient
// outage is not mistaken for "policy does not exist". When every probe
// cleanly misses the result is a PolicyNotFoundError.
func (c *Client) FindPolicy(ctx context.Context, policyID string) (*ring.Policy, error) {
	var probeErrs *multierror.Error
	for _, category := range ring.PolicyCategories() {
		resource, _ := category.GraphResource()

		var raw map[string]json.RawMessage
		err := do(ctx, c, http.MethodGet, c.url(resource.Collection+"/"+url.PathEscape(policyID), nil), nil, &raw)
		if err != nil {
			var gerr *Error
			if errors.As(err, &gerr) && gerr.NotFound() {
				log.Debug().Str("category", string(category)).Msg("policy not in category")
				continue
			}
			probeErrs = multierror.Append(probeErrs, fmt.Errorf("probing category %s: %w", category, err))
			continue
		}

		policy := &ring.Policy{
			ID:          policyID,
			DisplayName: stringField(raw, resource.NameField),
			Category:    category,
		}
		log.Info().
			Str("policy", policy.ID).
			Str("name", policy.DisplayName).
			Str("category", string(category)).
			Msg("policy detected")
		return policy, nil
	}

	if err := probeErrs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("policy %s lookup: %w", policyID, err)
	}
	return nil, &ring.PolicyNotFoundError{PolicyID: policyID}
}

// stringField pulls one string property out of a partially-decoded
// resource, tolerating a missing or non-string value.
func stringField(raw map[string]json.RawMessage, field string) string {
	var s string
	if v, ok := raw[field]; ok {
		_ = json.Unmarshal(v, &s)
	}
	return s
}
