package retail

import "strings"

// =============================================================================
// KEYED PARTITIONS
// =============================================================================

// KeyFunc extracts a grouping key from a record. An empty key means the
// record belongs to no group.
type KeyFunc func(Record) string

// Common grouping keys.
var (
	ByStore    KeyFunc = func(r Record) string { return strings.TrimSpace(r.StoreName) }
	BySupplier KeyFunc = func(r Record) string { return strings.TrimSpace(r.Supplier) }
	BySKU      KeyFunc = func(r Record) string { return strings.TrimSpace(r.ItemCode) }
	ByCategory KeyFunc = func(r Record) string { return strings.TrimSpace(r.Category) }
)

// Group is one partition: a key and the records that map to it, in input
// order.
type Group struct {
	Key     string
	Records []Record
}

// Partition is an ordered mapping from key to record subset. Keys keep the
// order of their first appearance, so downstream rankings are stable.
type Partition struct {
	Groups []Group
	index  map[string]int
}

// PartitionBy splits records by key. Records with an empty key are dropped.
func PartitionBy(records []Record, key KeyFunc) Partition {
	p := Partition{index: make(map[string]int)}
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		i, ok := p.index[k]
		if !ok {
			i = len(p.Groups)
			p.index[k] = i
			p.Groups = append(p.Groups, Group{Key: k})
		}
		p.Groups[i].Records = append(p.Groups[i].Records, r)
	}
	return p
}

// Get returns the records for an exact key.
func (p Partition) Get(key string) ([]Record, bool) {
	i, ok := p.index[key]
	if !ok {
		return nil, false
	}
	return p.Groups[i].Records, true
}

// Lookup resolves a key case-insensitively and returns the canonical key.
func (p Partition) Lookup(name string) (Group, bool) {
	if i, ok := p.index[strings.TrimSpace(name)]; ok {
		return p.Groups[i], true
	}
	for _, g := range p.Groups {
		if SameName(g.Key, name) {
			return g, true
		}
	}
	return Group{}, false
}

// Keys returns the group keys in first-appearance order.
func (p Partition) Keys() []string {
	keys := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		keys[i] = g.Key
	}
	return keys
}

// Len returns the number of groups.
func (p Partition) Len() int { return len(p.Groups) }

// CompositeKey joins key parts with a separator that does not occur in
// normalized names.
func CompositeKey(parts ...string) string {
	return strings.Join(parts, "\x1f")
}

// SplitKey reverses CompositeKey.
func SplitKey(key string) []string {
	return strings.Split(key, "\x1f")
}

// Filter returns the records for which keep is true.
func Filter(records []Record, keep func(Record) bool) []Record {
	var out []Record
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// OfSupplier keeps records whose supplier matches name case-insensitively.
func OfSupplier(name string) func(Record) bool {
	return func(r Record) bool { return SameName(r.Supplier, name) }
}
