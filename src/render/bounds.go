package render

import (
	"math"

	"sensor-dashboard/src/models"
)

// PaddingRatio is the share of the value range added above and below the data.
const PaddingRatio = 0.1

// AxisBounds pools minimum, maximum, first and last of every bucket and pads
// the pooled range by PaddingRatio on both sides. ok is false for no buckets.
//
// A flat series (hi == lo) is padded by max(|lo|*PaddingRatio, 1) so the axis
// keeps a usable height.
func AxisBounds(stats []models.MStatBucket) (lower, upper float64, ok bool) {
	if len(stats) == 0 {
		return 0, 0, false
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range stats {
		for _, v := range [4]float64{s.Minimum, s.Maximum, s.First, s.Last} {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	padding := (hi - lo) * PaddingRatio
	if padding == 0 {
		padding = math.Max(math.Abs(lo)*PaddingRatio, 1)
	}
	return lo - padding, hi + padding, true
}
