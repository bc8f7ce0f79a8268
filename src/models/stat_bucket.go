package models

// MStatBucket is one aggregation window of one channel.
// Minimum <= First, Last <= Maximum is expected but never enforced.
type MStatBucket struct {
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
	First   float64 `json:"first"`
	Last    float64 `json:"last"`
	Average float64 `json:"average"`
	Count   *int    `json:"count,omitempty"`
}

// -----------------------------------------------------------------------------

// MChannelSeries pairs bucket i with label Timestamps[i].
type MChannelSeries struct {
	Timestamps []string      `json:"timestamps"`
	Stats      []MStatBucket `json:"stats"`
	Interval   string        `json:"interval,omitempty"`
}

// Len returns the number of buckets, treating a nil series as empty.
func (s *MChannelSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Stats)
}

// -----------------------------------------------------------------------------

// MStatsResponse is the payload of GET /stats.
type MStatsResponse struct {
	Temperature *MChannelSeries `json:"temperature"`
	CO2         *MChannelSeries `json:"co2"`
}

// Channel returns the series for a channel name, nil when unknown or absent.
func (r *MStatsResponse) Channel(name string) *MChannelSeries {
	switch name {
	case ChannelTemperature:
		return r.Temperature
	case ChannelCO2:
		return r.CO2
	}
	return nil
}

// -----------------------------------------------------------------------------

// Channel names as they appear on the wire and in sensor messages.
const (
	ChannelTemperature = "temperature"
	ChannelCO2         = "co2"
)

// IntPtr is a helper for optional counts.
func IntPtr(v int) *int {
	return &v
}
