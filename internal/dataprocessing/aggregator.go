package dataprocessing

// AggregateEnv concatenates per-group environmental tables into one unified
// table. Row order is the concatenation order of the inputs; columns are
// the outer union of all input columns in first-seen order, so a column
// present in only some groups' files is simply absent from the other rows.
// Zero inputs produce an explicitly empty table (non-nil Rows, length zero).
func AggregateEnv(tables []EnvTable) EnvTable {
	unified := EnvTable{Rows: []EnvRecord{}}
	seen := make(map[string]struct{})
	for _, t := range tables {
		unified.Columns = unionColumns(unified.Columns, t.Columns, seen)
		unified.Rows = append(unified.Rows, t.Rows...)
	}
	return unified
}

// AggregateGrowth is the growth-table counterpart of AggregateEnv.
func AggregateGrowth(tables []GrowthTable) GrowthTable {
	unified := GrowthTable{Rows: []GrowthRecord{}}
	seen := make(map[string]struct{})
	for _, t := range tables {
		unified.Columns = unionColumns(unified.Columns, t.Columns, seen)
		unified.Rows = append(unified.Rows, t.Rows...)
	}
	return unified
}

func unionColumns(dst, src []string, seen map[string]struct{}) []string {
	for _, col := range src {
		if _, ok := seen[col]; ok {
			continue
		}
		seen[col] = struct{}{}
		dst = append(dst, col)
	}
	return dst
}
