package player

import (
	"github.com/marquee-player/marquee/machine"
	"golang.org/x/exp/slices"
)

// normalizeRanges sorts ranges by start, drops empty ones and merges those that overlap or touch,
// producing the ascending non-overlapping form the machine accepts.
func normalizeRanges(ranges []machine.BufferRange) []machine.BufferRange {
	if len(ranges) == 0 {
		return nil
	}

	sorted := make([]machine.BufferRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Start < 0 {
			r.Start = 0
		}
		if r.End > r.Start {
			sorted = append(sorted, r)
		}
	}

	slices.SortFunc(sorted, func(a, b machine.BufferRange) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	merged := sorted[:0]
	for _, r := range sorted {
		if n := len(merged); n > 0 && r.Start <= merged[n-1].End {
			if r.End > merged[n-1].End {
				merged[n-1].End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}

	return merged
}
