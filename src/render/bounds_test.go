package render

import (
	"testing"

	"sensor-dashboard/src/models"
)

func bucket(min, max, first, last float64) models.MStatBucket {
	return models.MStatBucket{Minimum: min, Maximum: max, First: first, Last: last, Average: (min + max) / 2}
}

func TestAxisBoundsSingleBucket(t *testing.T) {
	lower, upper, ok := AxisBounds([]models.MStatBucket{bucket(10, 20, 12, 18)})
	if !ok {
		t.Fatalf("expected bounds")
	}
	if lower != 9 || upper != 21 {
		t.Fatalf("bounds = [%v, %v], want [9, 21]", lower, upper)
	}
}

func TestAxisBoundsContainPool(t *testing.T) {
	cases := [][]models.MStatBucket{
		{bucket(400, 900, 450, 850), bucket(420, 1200, 1100, 500)},
		{bucket(-5, 3, 2, -4), bucket(-1, 1, 0, 0)},
		// values outside min..max are still pooled
		{bucket(10, 12, 8, 15)},
	}
	for i, stats := range cases {
		lower, upper, ok := AxisBounds(stats)
		if !ok {
			t.Fatalf("case %d: expected bounds", i)
		}
		lo, hi := stats[0].Minimum, stats[0].Minimum
		for _, s := range stats {
			for _, v := range []float64{s.Minimum, s.Maximum, s.First, s.Last} {
				lo = min(lo, v)
				hi = max(hi, v)
			}
		}
		if lower > lo || upper < hi {
			t.Fatalf("case %d: [%v, %v] does not contain [%v, %v]", i, lower, upper, lo, hi)
		}
		if upper-lower < hi-lo {
			t.Fatalf("case %d: padding shrank the range", i)
		}
	}
}

func TestAxisBoundsFlatSeries(t *testing.T) {
	lower, upper, _ := AxisBounds([]models.MStatBucket{bucket(21, 21, 21, 21)})
	if lower >= 21 || upper <= 21 {
		t.Fatalf("flat series must keep a non-empty axis, got [%v, %v]", lower, upper)
	}

	lower, upper, _ = AxisBounds([]models.MStatBucket{bucket(0, 0, 0, 0)})
	if lower != -1 || upper != 1 {
		t.Fatalf("zero series bounds = [%v, %v], want [-1, 1]", lower, upper)
	}
}

func TestAxisBoundsEmpty(t *testing.T) {
	if _, _, ok := AxisBounds(nil); ok {
		t.Fatalf("empty stats must not produce bounds")
	}
}
