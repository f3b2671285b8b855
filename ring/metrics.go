package ring

import (
	"math"
	"time"
)

// Device status values reported by the Graph API for a policy's targeted
// devices. Anything outside this list still counts toward the total but
// lands in no typed tally.
const (
	DeviceStatusCompliant     = "compliant"
	DeviceStatusError         = "error"
	DeviceStatusConflict      = "conflict"
	DeviceStatusNotApplicable = "notApplicable"
	DeviceStatusPending       = "pending"
	DeviceStatusUnknown       = "unknown"
)

// DeviceStatus is one device's deployment outcome for the policy under
// evaluation, normalized from whichever report shape the policy's
// category uses.
type DeviceStatus struct {
	DeviceID     string    `json:"device_id"`
	DeviceName   string    `json:"device_name"`
	UserName     string    `json:"user_name,omitempty"`
	Status       string    `json:"status"`
	LastReported time.Time `json:"last_reported,omitempty"`
}

// DeploymentMetrics aggregates per-device outcomes into the counts the
// promotion decision is made from. The typed counts are independent
// tallies, not a partition of TotalDevices: the remote API may report
// overlapping categories, so their sum carries no invariant relative to
// the total.
type DeploymentMetrics struct {
	TotalDevices  int `json:"total_devices"`
	Succeeded     int `json:"succeeded"`
	Errors        int `json:"errors"`
	Conflicts     int `json:"conflicts"`
	NotApplicable int `json:"not_applicable"`
	Pending       int `json:"pending"`
	// SuccessRate is Succeeded/TotalDevices as a percentage, rounded to
	// two decimal places half away from zero, and 0 when no devices
	// reported. The rounding mode matters at threshold boundaries and is
	// pinned down by tests.
	SuccessRate float64 `json:"success_rate"`
}

// Evaluate computes DeploymentMetrics from raw device statuses. Pure
// function: the total is the length of the input, each typed count is the
// number of devices whose status maps to that category, with both pending
// and unknown counted as pending.
func Evaluate(statuses []DeviceStatus) DeploymentMetrics {
	m := DeploymentMetrics{TotalDevices: len(statuses)}
	for _, s := range statuses {
		switch s.Status {
		case DeviceStatusCompliant:
			m.Succeeded++
		case DeviceStatusError:
			m.Errors++
		case DeviceStatusConflict:
			m.Conflicts++
		case DeviceStatusNotApplicable:
			m.NotApplicable++
		case DeviceStatusPending, DeviceStatusUnknown:
			m.Pending++
		}
	}
	if m.TotalDevices > 0 {
		m.SuccessRate = round2(float64(m.Succeeded) / float64(m.TotalDevices) * 100)
	}
	return m
}

// round2 rounds to two decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
