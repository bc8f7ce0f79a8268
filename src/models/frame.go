package models

// -----------------------------------------------------------------------------
// Chart frames pushed to dashboard clients
// -----------------------------------------------------------------------------

// MLabel is one line of a bucket tooltip.
type MLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MCandleView is the client-facing description of one drawn bucket.
type MCandleView struct {
	Index     int      `json:"index"`
	Timestamp string   `json:"timestamp"`
	Direction string   `json:"direction"` // "up" or "down"
	Color     string   `json:"color"`
	Tooltip   []MLabel `json:"tooltip"`
}

// MChartFrame is a snapshot of one chart after a redraw.
type MChartFrame struct {
	Channel  string        `json:"channel"`
	Heading  string        `json:"heading"`
	Unit     string        `json:"unit"`
	Interval string        `json:"interval"`
	Version  uint64        `json:"version"`
	Lower    float64       `json:"lower"`
	Upper    float64       `json:"upper"`
	Labels   []string      `json:"labels"`
	Candles  []MCandleView `json:"candles"`
}

// -----------------------------------------------------------------------------

// MDashboardUpdate is the websocket message type sent on every redraw.
type MDashboardUpdate struct {
	Type      string                 `json:"type"` // "INITIAL" or "UPDATE"
	Interval  string                 `json:"interval"`
	Frames    map[string]MChartFrame `json:"frames"`
	Timestamp int64                  `json:"timestamp"`
	Status    MPollStatus            `json:"status"`
}

// MClientCommand for client messages
type MClientCommand struct {
	Command  string `json:"command"`
	Interval string `json:"interval"`
}

// MPollStatus represents the health of the polling loop.
type MPollStatus struct {
	SelectedInterval string `json:"selected_interval"`
	Polls            int64  `json:"polls"`
	Failures         int64  `json:"failures"`
	StaleDropped     int64  `json:"stale_dropped"`
	LastSuccess      int64  `json:"last_success"`
	LastError        string `json:"last_error,omitempty"`
}

// MCommandReply acknowledges or rejects one client command.
type MCommandReply struct {
	Type     string `json:"type"` // "ACK" or "ERROR"
	Command  string `json:"command"`
	Interval string `json:"interval,omitempty"`
	Error    string `json:"error,omitempty"`
}
