package render

import (
	"math"
	"strconv"

	"sensor-dashboard/src/models"
)

// Tooltip lists the bucket values in display order. The Count line is only
// present when the bucket carries a non-zero sample count.
func Tooltip(b models.MStatBucket, unit string) []models.MLabel {
	labels := []models.MLabel{
		{Name: "First", Value: withUnit(b.First, unit)},
		{Name: "Last", Value: withUnit(b.Last, unit)},
		{Name: "Min", Value: withUnit(b.Minimum, unit)},
		{Name: "Max", Value: withUnit(b.Maximum, unit)},
		{Name: "Avg", Value: withUnit(b.Average, unit)},
	}
	if b.Count != nil && *b.Count > 0 {
		labels = append(labels, models.MLabel{Name: "Count", Value: strconv.Itoa(*b.Count) + " samples"})
	}
	return labels
}

func withUnit(v float64, unit string) string {
	s := FormatValue(v)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// FormatValue prints v with at most two decimals and no trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// Heading is the chart title shown above a channel.
func Heading(label, unit, intervalLabel string) string {
	return label + " Statistics (" + unit + ") - " + intervalLabel + " Intervals"
}
