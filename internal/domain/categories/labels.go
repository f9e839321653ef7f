package categories

import (
	"sort"
	"strconv"
	"strings"
)

// unparseableBound pushes labels with no recognizable range format to
// the end of a sorted list.
const unparseableBound = 999

// GroupedLabelDisplay maps the model's "other" bucket to the display
// label shown for each grouped field.
var GroupedLabelDisplay = map[string]string{
	"scorer_before_grouped_category": "20+",
	"clean_sheets_before_grouped":    "15+",
}

// GroupedLabelRaw maps widened display buckets back to the raw model
// category. The widening is intentional: "20+" collapses into the
// trained "15-20" bucket and "15+" into "10-15".
var GroupedLabelRaw = map[string]string{
	"20+": "15-20",
	"15+": "10-15",
}

// MainPositionDisplay maps internal main position codes to readable labels.
var MainPositionDisplay = map[string]string{
	"rightwing":         "Right Winger",
	"leftwing":          "Left Winger",
	"attackingmidfield": "Attacking Midfielder",
	"centralmidfield":   "Central Midfielder",
	"defensivemidfield": "Defensive Midfielder",
	"centerback":        "Center Back",
	"leftback":          "Left Back",
	"rightback":         "Right Back",
	"goalkeeper":        "Goalkeeper",
	"leftmidfield":      "Left Midfielder",
	"rightmidfield":     "Right Midfielder",
	"centerforward":     "Center Forward",
}

// PositionGroupDisplay maps internal position group codes to readable labels.
var PositionGroupDisplay = map[string]string{
	"defender":   "Defender",
	"goalkeeper": "Goalkeeper",
	"midfielder": "Midfielder",
	"attacker":   "Attacker",
}

// FootDisplay maps internal preferred foot codes to readable labels.
var FootDisplay = map[string]string{
	"left":  "Left Foot",
	"right": "Right Foot",
	"both":  "Both Feet",
}

// Reverse inverts a display map for translating user selections back to
// raw model categories.
func Reverse(display map[string]string) map[string]string {
	out := make(map[string]string, len(display))
	for raw, label := range display {
		out[label] = raw
	}
	return out
}

// MapDisplayToRaw translates a display label through table, passing the
// label through unchanged when the table has no entry. This leniency is
// for display remapping only; the feature builder's categorical cast
// stays strict.
func MapDisplayToRaw(label string, table map[string]string) string {
	if raw, ok := table[label]; ok {
		return raw
	}
	return label
}

// SortGroupedLabels orders range-bucket labels by ascending lower
// bound: "N+" sorts by N, "A-B" by A, anything else last. The sort is
// stable so tied or unparseable labels keep their input order.
func SortGroupedLabels(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	sort.SliceStable(out, func(i, j int) bool {
		return lowerBound(out[i]) < lowerBound(out[j])
	})
	return out
}

func lowerBound(label string) int {
	if strings.Contains(label, "+") {
		if n, err := strconv.Atoi(strings.TrimSuffix(label, "+")); err == nil {
			return n
		}
		return unparseableBound
	}
	if strings.Contains(label, "-") {
		if n, err := strconv.Atoi(strings.SplitN(label, "-", 2)[0]); err == nil {
			return n
		}
	}
	return unparseableBound
}
