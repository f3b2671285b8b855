package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ringshift/ringshift/ring"
	"github.com/rs/zerolog/log"
)

type graphGroup struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// GroupByName resolves an Entra ID group by its display name. Display
// names are not unique in Entra; when several groups share one, the
// first match is used and a warning is logged rather than failing the
// run over tenant hygiene. No match at all is a TargetGroupNotFoundError.
func (c *Client) GroupByName(ctx context.Context, name string) (*ring.Group, error) {
	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("displayName eq '%s'", escapeODataString(name)))
	query.Set("$select", "id,displayName")

	groups, err := getPaged[graphGroup](ctx, c, c.url("groups", query))
	if err != nil {
		return nil, fmt.Errorf("looking up group %q: %w", name, err)
	}

	switch len(groups) {
	case 0:
		return nil, &ring.TargetGroupNotFoundError{GroupName: name}
	case 1:
	default:
		log.Warn().
			Str("group", name).
			Int("matches", len(groups)).
			Msg("multiple groups share this display name, using the first match")
	}
	return &ring.Group{ID: groups[0].ID, DisplayName: groups[0].DisplayName}, nil
}

// GroupByID fetches one group's details.
func (c *Client) GroupByID(ctx context.Context, id string) (*ring.Group, error) {
	var g graphGroup
	query := url.Values{}
	query.Set("$select", "id,displayName")
	if err := do(ctx, c, http.MethodGet, c.url("groups/"+url.PathEscape(id), query), nil, &g); err != nil {
		return nil, fmt.Errorf("looking up group %s: %w", id, err)
	}
	return &ring.Group{ID: g.ID, DisplayName: g.DisplayName}, nil
}

// escapeODataString doubles single quotes, the only escape OData string
// literals need.
func escapeODataString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
