package models

// MSensorReading is one measured value inside a sensor message.
type MSensorReading struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// MSensorMessage is the payload published by sensors on MQTT or Kafka.
type MSensorMessage struct {
	Timestamp  string           `json:"timestamp"` // ISO 8601
	Readings   []MSensorReading `json:"readings"`
	ReceivedAt int64            `json:"received_at,omitempty"`
}

// -----------------------------------------------------------------------------

// MOpenMinute stores running statistics for the minute still being filled.
type MOpenMinute struct {
	Channel   string
	StartTime int64
	Minimum   float64
	Maximum   float64
	First     float64
	Last      float64
	Sum       float64
	Count     int
}

// Add folds one value into the running statistics.
func (m *MOpenMinute) Add(v float64) {
	if m.Count == 0 {
		m.Minimum, m.Maximum, m.First = v, v, v
	}
	if v < m.Minimum {
		m.Minimum = v
	}
	if v > m.Maximum {
		m.Maximum = v
	}
	m.Last = v
	m.Sum += v
	m.Count++
}
