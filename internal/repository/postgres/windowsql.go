package postgres

import (
	"fmt"
	"strings"

	"github.com/clinichq/admin-api/internal/metrics"
)

// windowPredicate renders a SQL condition restricting column to the given
// date windows, appending the window bounds to args. A single window becomes
// a plain range check; multiple windows become an OR of per-window ANDs, one
// clause per window even for adjacent months. An empty window list returns
// "" (no date filter).
func windowPredicate(column string, windows []metrics.DateWindow, args *[]interface{}, idx *int) string {
	switch len(windows) {
	case 0:
		return ""
	case 1:
		cond := fmt.Sprintf("%s >= $%d AND %s <= $%d", column, *idx, column, *idx+1)
		*args = append(*args, windows[0].Start, windows[0].End)
		*idx += 2
		return cond
	default:
		parts := make([]string, 0, len(windows))
		for _, w := range windows {
			parts = append(parts,
				fmt.Sprintf("(%s >= $%d AND %s <= $%d)", column, *idx, column, *idx+1))
			*args = append(*args, w.Start, w.End)
			*idx += 2
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	}
}
