package stats

import (
	"sync"

	"sensor-dashboard/src/models"
	"sensor-dashboard/src/utils"
)

// LatestQueue keeps the most recent raw sensor messages.
type LatestQueue struct {
	mu   sync.Mutex
	ring *utils.Ring[models.MSensorMessage]
}

func NewLatestQueue(size int) *LatestQueue {
	return &LatestQueue{ring: utils.NewRing[models.MSensorMessage](size)}
}

func (q *LatestQueue) Push(msg models.MSensorMessage) {
	q.mu.Lock()
	q.ring.Push(msg)
	q.mu.Unlock()
}

// Snapshot returns the held messages oldest first without draining them.
func (q *LatestQueue) Snapshot() []models.MSensorMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Items()
}
