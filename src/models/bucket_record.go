package models

import "time"

// MBucketRecord represents a closed bucket for a channel, anchored at StartTime.
// Minute buckets are stored as records; coarser intervals are resampled from them.
type MBucketRecord struct {
	Channel   string    `json:"channel"`
	StartTime int64     `json:"start_time"` // unix seconds, UTC
	EndTime   int64     `json:"end_time"`
	Minimum   float64   `json:"minimum"`
	Maximum   float64   `json:"maximum"`
	First     float64   `json:"first"`
	Last      float64   `json:"last"`
	Average   float64   `json:"average"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

// Stat projects the record onto the wire shape.
func (r MBucketRecord) Stat() MStatBucket {
	return MStatBucket{
		Minimum: r.Minimum,
		Maximum: r.Maximum,
		First:   r.First,
		Last:    r.Last,
		Average: r.Average,
		Count:   IntPtr(r.Count),
	}
}
