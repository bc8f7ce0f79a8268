package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"sensor-dashboard/src/helpers"
	"sensor-dashboard/src/models"
)

// Decode parses one broker payload into a sensor message.
func Decode(payload []byte) (models.MSensorMessage, error) {
	var msg models.MSensorMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, helpers.NewIngestError("malformed sensor message", err)
	}
	if msg.Timestamp == "" {
		return msg, helpers.NewIngestError("sensor message without timestamp", nil)
	}
	if len(msg.Readings) == 0 {
		return msg, helpers.NewIngestError(fmt.Sprintf("sensor message at %s has no readings", msg.Timestamp), nil)
	}
	return msg, nil
}

// deliver hands msg to out unless ctx is done first.
func deliver(ctx context.Context, out chan<- models.MSensorMessage, msg models.MSensorMessage) bool {
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}
