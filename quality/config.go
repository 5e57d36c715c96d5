/*
Package quality scores how trustworthy each data-producing entity is.

PURPOSE:
  Answers "can we rely on this store's (or supplier's) rows?" by scoring
  three pillars per group and combining them into a grade and a trust flag.

PILLARS:
  Completeness: 1 - (records missing any required field) / records
  Validity:     fraction of records passing ALL validity rules
  Consistency:  fraction of records passing ALL consistency rules
  Overall:      arithmetic mean of the three

GRADES:
  A >= 0.90, B >= 0.80, C >= 0.70, D >= 0.60, else F

TRUST:
  overall >= TrustThreshold AND records >= MinRecordsForTrust.
  A small group with a perfect score is NOT trusted.

EMPTY GROUPS:
  Scores, grade and trust are nil. Never defaulted to a passing value.

SEE ALSO:
  - rules.go: Validity and consistency rules
  - scorer.go: Per-group scoring
  - report.go: Dataset-wide report
*/
package quality

import (
	"time"

	"github.com/warp/retail-insights/retail"
)

// =============================================================================
// CONFIG
// =============================================================================

// Window is an accepted calendar window [From, To). A zero bound is open.
type Window struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// Config controls quality scoring. Pass it by value; the scorer never keeps it.
type Config struct {
	// CompletenessFields must be populated for a record to count as complete.
	CompletenessFields []retail.Field

	// ValidityRules and ConsistencyRules are evaluated independently per
	// record. nil means the defaults.
	ValidityRules    []Rule
	ConsistencyRules []Rule

	// ConsistencyTolerance is the relative tolerance between the recomputed
	// and the reported realized price.
	ConsistencyTolerance float64

	TrustThreshold     float64
	MinRecordsForTrust int

	DateWindow   Window
	PriceCeiling float64

	// CategoryHierarchy maps sub-department to its parent category. When
	// empty it is derived from the table being scored.
	CategoryHierarchy map[string]string
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		CompletenessFields:   append([]retail.Field(nil), retail.RequiredFields...),
		ConsistencyTolerance: 0.01,
		TrustThreshold:       0.75,
		MinRecordsForTrust:   10,
		DateWindow: Window{
			From: time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		PriceCeiling: 1_000_000,
	}
}

// Validate rejects out-of-domain settings.
func (c Config) Validate() error {
	if c.TrustThreshold < 0 || c.TrustThreshold > 1 {
		return retail.Invalid("quality.trust_threshold", c.TrustThreshold, "must be within [0,1]")
	}
	if c.MinRecordsForTrust < 0 {
		return retail.Invalid("quality.min_records_for_trust", c.MinRecordsForTrust, "must be >= 0")
	}
	if c.ConsistencyTolerance < 0 {
		return retail.Invalid("quality.consistency_tolerance", c.ConsistencyTolerance, "must be >= 0")
	}
	if c.PriceCeiling <= 0 {
		return retail.Invalid("quality.price_ceiling", c.PriceCeiling, "must be > 0")
	}
	w := c.DateWindow
	if !w.From.IsZero() && !w.To.IsZero() && !w.From.Before(w.To) {
		return retail.Invalid("quality.date_window", w, "from must be before to")
	}
	return nil
}

func (c Config) validityRules() []Rule {
	if c.ValidityRules != nil {
		return c.ValidityRules
	}
	return DefaultValidityRules()
}

func (c Config) consistencyRules() []Rule {
	if c.ConsistencyRules != nil {
		return c.ConsistencyRules
	}
	return DefaultConsistencyRules()
}

// =============================================================================
// GRADE
// =============================================================================

// Grade is a letter grade derived from the overall score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeFor is a step function of overall.
func GradeFor(overall float64) Grade {
	switch {
	case overall >= 0.90:
		return GradeA
	case overall >= 0.80:
		return GradeB
	case overall >= 0.70:
		return GradeC
	case overall >= 0.60:
		return GradeD
	default:
		return GradeF
	}
}
