package graph

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ringshift/ringshift/ring"
)

// deviceStatus is the union of the per-device report rows the different
// policy collections return; field names vary by category (userName vs
// userPrincipalName) so all variants are carried and normalized.
type deviceStatus struct {
	ID                   string    `json:"id"`
	DeviceDisplayName    string    `json:"deviceDisplayName"`
	UserName             string    `json:"userName"`
	UserPrincipalName    string    `json:"userPrincipalName"`
	Status               string    `json:"status"`
	LastReportedDateTime time.Time `json:"lastReportedDateTime"`
}

func (s deviceStatus) normalize() ring.DeviceStatus {
	user := s.UserPrincipalName
	if user == "" {
		user = s.UserName
	}
	return ring.DeviceStatus{
		DeviceID:     s.ID,
		DeviceName:   s.DeviceDisplayName,
		UserName:     user,
		Status:       s.Status,
		LastReported: s.LastReportedDateTime,
	}
}

// DeviceStatuses fetches the per-device deployment outcomes for the
// policy, following every page of the report.
func (c *Client) DeviceStatuses(ctx context.Context, policy ring.Policy) ([]ring.DeviceStatus, error) {
	resource, ok := policy.Category.GraphResource()
	if !ok {
		return nil, fmt.Errorf("policy %s has unknown category %q", policy.ID, policy.Category)
	}

	raw, err := getPaged[deviceStatus](ctx, c, c.url(resource.Collection+"/"+url.PathEscape(policy.ID)+"/deviceStatuses", nil))
	if err != nil {
		return nil, fmt.Errorf("retrieving device statuses for policy %s: %w", policy.ID, err)
	}

	out := make([]ring.DeviceStatus, 0, len(raw))
	for _, ds := range raw {
		out = append(out, ds.normalize())
	}
	return out, nil
}
