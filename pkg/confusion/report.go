package confusion

import (
	"time"

	"github.com/google/uuid"
)

// Report is the result of one batch run. Findings holds exactly one entry
// per input package, in input order.
type Report struct {
	RunID     string                 `json:"run_id"`
	CheckedAt time.Time              `json:"checked_at"`
	Elapsed   time.Duration          `json:"elapsed"`
	Total     int                    `json:"total"`
	Counts    map[Classification]int `json:"counts"`
	Findings  []Finding              `json:"findings"`
}

// NewReport assembles a report from findings, tallying classifications.
func NewReport(findings []Finding, elapsed time.Duration) *Report {
	counts := make(map[Classification]int, 4)
	for _, f := range findings {
		counts[f.Classification]++
	}
	return &Report{
		RunID:     uuid.NewString(),
		CheckedAt: time.Now().UTC(),
		Elapsed:   elapsed,
		Total:     len(findings),
		Counts:    counts,
		Findings:  findings,
	}
}

// HasExposure reports whether any finding is classified as exposed.
func (r *Report) HasExposure() bool {
	return r.Counts[ClassExposed] > 0
}

// Worst returns the highest-severity classification present, or ClassSafe
// for an empty report.
func (r *Report) Worst() Classification {
	worst := ClassSafe
	for _, f := range r.Findings {
		if f.Classification.Rank() > worst.Rank() {
			worst = f.Classification
		}
	}
	return worst
}
