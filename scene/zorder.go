package scene

import "sort"

// Sorted returns the draw order for the list: indices into Commands,
// draw commands ordered by ascending z with submission order breaking
// ties, and clip/transform state commands kept in their recorded
// positions relative to the draws they scope.
//
// State commands cannot be reordered freely, so sorting operates on
// spans: runs of draw commands between state commands sort internally,
// which matches how the painter assigns z within a clip or transform
// scope.
func (dl *DisplayList) Sorted() []int {
	order := make([]int, len(dl.Commands))
	for i := range order {
		order[i] = i
	}

	start := 0
	for i := 0; i <= len(dl.Commands); i++ {
		atState := i == len(dl.Commands) || !dl.Commands[i].IsDraw()
		if !atState {
			continue
		}
		if i > start {
			span := order[start:i]
			sort.SliceStable(span, func(a, b int) bool {
				return dl.Commands[span[a]].Z < dl.Commands[span[b]].Z
			})
		}
		start = i + 1
	}
	return order
}

// MaxZ returns the highest z in the list, or 0 for an empty list.
func (dl *DisplayList) MaxZ() int32 {
	var max int32
	for i := range dl.Commands {
		if c := &dl.Commands[i]; c.IsDraw() && c.Z > max {
			max = c.Z
		}
	}
	return max
}
