package dataprocessing

// Derived read-only views over a unified table. All views are pure
// functions: none mutate their input, and filtered results are fresh
// slices with no back-reference into the table.

// GroupRow is satisfied by both record kinds and is what the views
// operate on.
type GroupRow interface {
	GroupName() string
	NumericValues() map[string]float64
}

// GroupStats holds the per-group aggregates of one view row.
type GroupStats struct {
	Group string             `json:"group"`
	Count int                `json:"count"`
	Means map[string]float64 `json:"means"`
}

// GroupMeans computes the arithmetic mean of every numeric attribute for
// each group present in rows, one GroupStats per group. Result order is
// the configured group order first, then any remaining groups by first
// appearance; this order is deterministic and drives chart axis ordering
// downstream. An attribute's mean is taken over the rows that carry it.
func GroupMeans[T GroupRow](rows []T, order []string) []GroupStats {
	type acc struct {
		count int
		sums  map[string]float64
		cells map[string]int
	}
	accs := make(map[string]*acc)

	var present []string
	for _, row := range rows {
		name := row.GroupName()
		a, ok := accs[name]
		if !ok {
			a = &acc{sums: make(map[string]float64), cells: make(map[string]int)}
			accs[name] = a
			present = append(present, name)
		}
		a.count++
		for attr, val := range row.NumericValues() {
			a.sums[attr] += val
			a.cells[attr]++
		}
	}

	stats := make([]GroupStats, 0, len(accs))
	for _, name := range groupOrder(present, order) {
		a := accs[name]
		means := make(map[string]float64, len(a.sums))
		for attr, sum := range a.sums {
			means[attr] = sum / float64(a.cells[attr])
		}
		stats = append(stats, GroupStats{Group: name, Count: a.count, Means: means})
	}
	return stats
}

// CountByGroup returns the number of rows belonging to each group.
func CountByGroup[T GroupRow](rows []T) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		counts[row.GroupName()]++
	}
	return counts
}

// BestGroup returns the group whose mean of the named attribute is
// maximal, with ties broken by first occurrence in the deterministic group
// order. The boolean result is false when no row carries the attribute.
func BestGroup[T GroupRow](rows []T, attr string, order []string) (string, float64, bool) {
	var (
		best     string
		bestMean float64
		found    bool
	)
	for _, stats := range GroupMeans(rows, order) {
		mean, ok := stats.Means[attr]
		if !ok {
			continue
		}
		if !found || mean > bestMean {
			best, bestMean, found = stats.Group, mean, true
		}
	}
	return best, bestMean, found
}

// FilterByGroup returns the rows whose group tag equals group, in their
// original order. The empty string is the all-groups sentinel. A group
// absent from the table yields an empty result, not an error.
func FilterByGroup[T GroupRow](rows []T, group string) []T {
	filtered := make([]T, 0, len(rows))
	for _, row := range rows {
		if group == "" || row.GroupName() == group {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// groupOrder arranges the groups present in a table: configured order
// first, then unconfigured groups by first appearance.
func groupOrder(present, configured []string) []string {
	inTable := make(map[string]struct{}, len(present))
	for _, name := range present {
		inTable[name] = struct{}{}
	}

	ordered := make([]string, 0, len(present))
	taken := make(map[string]struct{}, len(present))
	for _, name := range configured {
		if _, ok := inTable[name]; ok {
			ordered = append(ordered, name)
			taken[name] = struct{}{}
		}
	}
	for _, name := range present {
		if _, ok := taken[name]; !ok {
			ordered = append(ordered, name)
		}
	}
	return ordered
}
