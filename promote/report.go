package promote

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/WatchBeam/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ringshift/ringshift/pkg/secure"
	"github.com/ringshift/ringshift/ring"
)

// ReportFilename is the fixed name of the report artifact inside the
// output directory.
const ReportFilename = "promotion-report.json"

// NewReport stamps an outcome with run identity. Reports are built only
// from fully-completed evaluations; fatal paths never produce one.
func NewReport(outcome *ring.PromotionOutcome, clk clock.Clock) *ring.PromotionReport {
	return &ring.PromotionReport{
		RunID:            uuid.New().String(),
		GeneratedAt:      clk.Now().UTC(),
		PromotionOutcome: *outcome,
	}
}

// Report builds the report for an outcome using the engine's clock.
func (e *Engine) Report(outcome *ring.PromotionOutcome) *ring.PromotionReport {
	return NewReport(outcome, e.clock)
}

// WriteReport persists the report as indented JSON under dir, creating
// the directory if needed, and returns the file's path. An existing
// report from a previous run is overwritten. Reports carry tenant and
// group identifiers, so both the directory and the file stay owner-only.
func WriteReport(dir string, report *ring.PromotionReport) (string, error) {
	if err := secure.MkdirAll(dir, 0o700); err != nil {
		return "", errors.Wrap(err, "creating report directory")
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding report")
	}
	raw = append(raw, '\n')

	path := filepath.Join(dir, ReportFilename)
	f, err := secure.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", errors.Wrap(err, "opening report file")
	}
	defer f.Close()

	if _, err := f.Write(raw); err != nil {
		return "", errors.Wrap(err, "writing report file")
	}
	return path, nil
}
