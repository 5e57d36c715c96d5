package quality

import "github.com/warp/retail-insights/retail"

// Report is the dataset-wide quality picture.
type Report struct {
	TotalRecords   int
	TotalStores    int
	TotalSuppliers int

	// Dataset scores the whole table as a single group.
	Dataset Score

	Stores    []Score
	Suppliers []Score

	TrustedStores      int
	UntrustedStores    int
	TrustedSuppliers   int
	UntrustedSuppliers int

	// CriticalIssues are the dataset-level issues of severity critical.
	CriticalIssues []Issue
}

// BuildReport scores the dataset, every store and every supplier.
func BuildReport(table *retail.Table, cfg Config) Report {
	if len(cfg.CategoryHierarchy) == 0 {
		cfg.CategoryHierarchy = DeriveHierarchy(table.Records)
	}

	dataset := ScoreGroup("all", KindDataset, table.Records, cfg, nil)
	stores := ScoreAll(table, KindStore, cfg)
	suppliers := ScoreAll(table, KindSupplier, cfg)

	rep := Report{
		TotalRecords:   table.Len(),
		TotalStores:    len(stores),
		TotalSuppliers: len(suppliers),
		Dataset:        dataset,
		Stores:         stores,
		Suppliers:      suppliers,
	}
	rep.TrustedStores, rep.UntrustedStores = countTrust(stores)
	rep.TrustedSuppliers, rep.UntrustedSuppliers = countTrust(suppliers)

	for _, issue := range dataset.Issues {
		if issue.Severity == SeverityCritical {
			rep.CriticalIssues = append(rep.CriticalIssues, issue)
		}
	}
	return rep
}

func countTrust(scores []Score) (trusted, untrusted int) {
	for _, s := range scores {
		if s.IsTrusted() {
			trusted++
		} else {
			untrusted++
		}
	}
	return trusted, untrusted
}

// FilterScores keeps scores with overall >= minScore (when set) and, when
// trustedOnly, only trusted groups. Undefined scores never pass a minimum.
func FilterScores(scores []Score, minScore *float64, trustedOnly bool) ([]Score, error) {
	if minScore != nil && (*minScore < 0 || *minScore > 1) {
		return nil, retail.Invalid("min_score", *minScore, "must be within [0,1]")
	}
	out := make([]Score, 0, len(scores))
	for _, s := range scores {
		if trustedOnly && !s.IsTrusted() {
			continue
		}
		if minScore != nil && (s.Overall == nil || *s.Overall < *minScore) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Find returns the score whose key matches name case-insensitively.
func Find(scores []Score, kind Kind, name string) (Score, error) {
	for _, s := range scores {
		if retail.SameName(s.GroupKey, name) {
			return s, nil
		}
	}
	return Score{}, &retail.NotFoundError{Kind: string(kind), Name: name}
}
