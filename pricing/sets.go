package pricing

import (
	"sort"
	"strings"

	"github.com/warp/retail-insights/retail"
)

// CompetitiveSet is the group of substitutable SKUs sharing a
// sub-department and section.
type CompetitiveSet struct {
	SubDepartment  string
	Section        string
	TargetSKUs     []string
	CompetitorSKUs []string
}

// Key identifies the set.
func (s CompetitiveSet) Key() string {
	return retail.CompositeKey(s.SubDepartment, s.Section)
}

// BySet keys a record by its competitive set.
func BySet(r retail.Record) string {
	sub, sec := strings.TrimSpace(r.SubDepartment), strings.TrimSpace(r.Section)
	if sub == "" || sec == "" {
		return ""
	}
	return retail.CompositeKey(sub, sec)
}

// CompetitiveSets builds every set in the table, in first-appearance
// order. SKU lists are sorted by item code.
func CompetitiveSets(table *retail.Table, target string) []CompetitiveSet {
	return competitiveSets(table.Records, target)
}

func competitiveSets(records []retail.Record, target string) []CompetitiveSet {
	p := retail.PartitionBy(records, BySet)
	sets := make([]CompetitiveSet, 0, p.Len())
	for _, g := range p.Groups {
		parts := retail.SplitKey(g.Key)
		set := CompetitiveSet{SubDepartment: parts[0], Section: parts[1]}
		seen := make(map[string]bool)
		for _, r := range g.Records {
			sku := retail.BySKU(r)
			if sku == "" || seen[sku] {
				continue
			}
			seen[sku] = true
			if retail.SameName(r.Supplier, target) {
				set.TargetSKUs = append(set.TargetSKUs, sku)
			} else {
				set.CompetitorSKUs = append(set.CompetitorSKUs, sku)
			}
		}
		sort.Strings(set.TargetSKUs)
		sort.Strings(set.CompetitorSKUs)
		sets = append(sets, set)
	}
	return sets
}
