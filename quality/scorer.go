package quality

import (
	"fmt"
	"sort"

	"github.com/warp/retail-insights/retail"
)

// =============================================================================
// SCORE
// =============================================================================

// Kind identifies what a score is grouped by.
type Kind string

const (
	KindStore    Kind = "store"
	KindSupplier Kind = "supplier"
	KindDataset  Kind = "dataset"
)

// KeyFunc returns the partition key for a kind.
func (k Kind) KeyFunc() retail.KeyFunc {
	switch k {
	case KindStore:
		return retail.ByStore
	case KindSupplier:
		return retail.BySupplier
	default:
		return func(retail.Record) string { return "all" }
	}
}

// Severity ranks an issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Severity cutoffs on the affected share of a group, in percent.
const (
	criticalPct = 10.0
	warningPct  = 5.0
)

func severityFor(pct float64) Severity {
	switch {
	case pct > criticalPct:
		return SeverityCritical
	case pct > warningPct:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Issue describes one failing check within a group.
type Issue struct {
	Pillar      Pillar
	Severity    Severity
	Rule        string
	Field       string
	Description string
	Count       int
	Percentage  float64
}

// Score is the quality judgment for one group. Pillar scores, grade and
// trust are nil when the group has no records.
type Score struct {
	GroupKey     string
	Kind         Kind
	Completeness *float64
	Validity     *float64
	Consistency  *float64
	Overall      *float64
	Grade        *Grade
	Trusted      *bool
	RecordCount  int
	Issues       []Issue
}

// IsTrusted is false when trust is undefined.
func (s Score) IsTrusted() bool { return s.Trusted != nil && *s.Trusted }

// =============================================================================
// SCORING
// =============================================================================

// ScoreGroup scores one partition. hierarchy feeds the category rule; pass
// nil to use cfg.CategoryHierarchy (or derive from the group itself).
func ScoreGroup(key string, kind Kind, records []retail.Record, cfg Config, hierarchy map[string]string) Score {
	score := Score{GroupKey: key, Kind: kind, RecordCount: len(records)}
	n := len(records)
	if n == 0 {
		return score
	}
	if hierarchy == nil {
		hierarchy = cfg.CategoryHierarchy
	}
	if len(hierarchy) == 0 {
		hierarchy = DeriveHierarchy(records)
	}
	env := newEnv(cfg, hierarchy)

	// Completeness
	incomplete := 0
	missing := make([]int, len(cfg.CompletenessFields))
	for _, r := range records {
		gap := false
		for i, f := range cfg.CompletenessFields {
			if r.Missing(f) {
				missing[i]++
				gap = true
			}
		}
		if gap {
			incomplete++
		}
	}
	complete := n - incomplete
	completeness := float64(complete) / float64(n)
	for i, f := range cfg.CompletenessFields {
		if missing[i] == 0 {
			continue
		}
		pct := float64(missing[i]) / float64(n) * 100
		score.Issues = append(score.Issues, Issue{
			Pillar:      PillarCompleteness,
			Severity:    severityFor(pct),
			Rule:        "required_field",
			Field:       string(f),
			Description: fmt.Sprintf("Missing %s: %.2f%%", f, pct),
			Count:       missing[i],
			Percentage:  pct,
		})
	}

	valid, vIssues := passRate(records, cfg.validityRules(), env, PillarValidity)
	consistent, cIssues := passRate(records, cfg.consistencyRules(), env, PillarConsistency)
	score.Issues = append(score.Issues, vIssues...)
	score.Issues = append(score.Issues, cIssues...)
	validity := float64(valid) / float64(n)
	consistency := float64(consistent) / float64(n)

	// One division over the passing counts so an exact 0.90 stays 0.90.
	overall := float64(complete+valid+consistent) / float64(3*n)
	grade := GradeFor(overall)
	trusted := overall >= cfg.TrustThreshold && n >= cfg.MinRecordsForTrust

	score.Completeness = &completeness
	score.Validity = &validity
	score.Consistency = &consistency
	score.Overall = &overall
	score.Grade = &grade
	score.Trusted = &trusted
	return score
}

// passRate returns the number of records passing every rule, plus one issue
// per rule that failed at least once.
func passRate(records []retail.Record, rules []Rule, env Env, pillar Pillar) (int, []Issue) {
	n := len(records)
	failed := make([]int, len(rules))
	passing := 0
	for _, r := range records {
		ok := true
		for i, rule := range rules {
			if !rule.Check(r, env) {
				failed[i]++
				ok = false
			}
		}
		if ok {
			passing++
		}
	}

	var issues []Issue
	for i, rule := range rules {
		if failed[i] == 0 {
			continue
		}
		pct := float64(failed[i]) / float64(n) * 100
		issues = append(issues, Issue{
			Pillar:      pillar,
			Severity:    severityFor(pct),
			Rule:        rule.Name,
			Field:       rule.Field,
			Description: fmt.Sprintf("%d records with %s (%.2f%%)", failed[i], rule.Description, pct),
			Count:       failed[i],
			Percentage:  pct,
		})
	}
	return passing, issues
}

// ScoreAll partitions the table by kind and scores every group. Results are
// sorted by overall score descending; undefined scores sort last and ties
// are broken by key.
func ScoreAll(table *retail.Table, kind Kind, cfg Config) []Score {
	hierarchy := cfg.CategoryHierarchy
	if len(hierarchy) == 0 {
		hierarchy = DeriveHierarchy(table.Records)
	}

	p := retail.PartitionBy(table.Records, kind.KeyFunc())
	scores := make([]Score, 0, p.Len())
	for _, g := range p.Groups {
		scores = append(scores, ScoreGroup(g.Key, kind, g.Records, cfg, hierarchy))
	}
	SortScores(scores)
	return scores
}

// SortScores orders scores best first.
func SortScores(scores []Score) {
	sort.SliceStable(scores, func(i, j int) bool {
		a, b := scores[i].Overall, scores[j].Overall
		switch {
		case a == nil && b == nil:
			return scores[i].GroupKey < scores[j].GroupKey
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return scores[i].GroupKey < scores[j].GroupKey
		}
	})
}
