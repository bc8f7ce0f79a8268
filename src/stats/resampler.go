package stats

import (
	"sort"

	"sensor-dashboard/src/models"
	"sensor-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// Resample merges minute buckets into buckets of bucketSeconds aligned on
// start - start % bucketSeconds (UTC). The result is ordered by start time.
//
// Merging keeps the lowest minimum, the highest maximum, the first value of
// the earliest bucket, the last value of the latest bucket, the
// count-weighted average and the summed count.
func Resample(records []models.MBucketRecord, bucketSeconds int64) []models.MBucketRecord {
	if len(records) == 0 {
		return []models.MBucketRecord{}
	}

	sorted := make([]models.MBucketRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})

	if bucketSeconds < utils.MinuteSeconds {
		bucketSeconds = utils.MinuteSeconds
	}

	var out []models.MBucketRecord
	var weighted, total float64
	for _, r := range sorted {
		start, end := utils.AlignBucket(r.StartTime, bucketSeconds)

		if len(out) == 0 || out[len(out)-1].StartTime != start {
			if len(out) > 0 {
				out[len(out)-1].Average = weighted / total
			}
			out = append(out, models.MBucketRecord{
				Channel:   r.Channel,
				StartTime: start,
				EndTime:   end,
				Minimum:   r.Minimum,
				Maximum:   r.Maximum,
				First:     r.First,
			})
			weighted, total = 0, 0
		}

		cur := &out[len(out)-1]
		cur.Minimum = min(cur.Minimum, r.Minimum)
		cur.Maximum = max(cur.Maximum, r.Maximum)
		cur.Last = r.Last
		cur.Count += r.Count
		w := float64(weight(r))
		weighted += r.Average * w
		total += w
	}
	out[len(out)-1].Average = weighted / total

	return out
}

// weight treats a bucket without a count as a single sample.
func weight(r models.MBucketRecord) int {
	if r.Count <= 0 {
		return 1
	}
	return r.Count
}
