package utils

import (
	"sensor-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// RingBuffer is a fixed-size circular buffer of minute buckets for one channel.
// Rows are stored as flat feature arrays; no resizing allowed.
// -----------------------------------------------------------------------------

type RingBuffer struct {
	channel  string
	data     [][RB_NUM_FEATURES]float64
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewRingBuffer creates a new buffer with fixed capacity
func NewRingBuffer(channel string, capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 1000
	}

	return &RingBuffer{
		channel:  channel,
		data:     make([][RB_NUM_FEATURES]float64, capacity),
		capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// Append adds a bucket, overwriting the oldest one when full.
func (rb *RingBuffer) Append(r models.MBucketRecord) {
	rb.data[rb.index] = [RB_NUM_FEATURES]float64{
		RB_IDX_START_TIME: float64(r.StartTime),
		RB_IDX_MINIMUM:    r.Minimum,
		RB_IDX_MAXIMUM:    r.Maximum,
		RB_IDX_FIRST:      r.First,
		RB_IDX_LAST:       r.Last,
		RB_IDX_AVERAGE:    r.Average,
		RB_IDX_COUNT:      float64(r.Count),
	}

	rb.index = (rb.index + 1) % rb.capacity

	if rb.size < rb.capacity {
		rb.size++
	}
}

// -----------------------------------------------------------------------------

// GetLatest returns the n latest buckets, oldest first.
func (rb *RingBuffer) GetLatest(n int) []models.MBucketRecord {
	if rb.size == 0 || n <= 0 {
		return []models.MBucketRecord{}
	}

	count := min(n, rb.size)
	result := make([]models.MBucketRecord, count)

	// latest data is at index-1
	startIdx := (rb.index - count + rb.capacity) % rb.capacity

	for i := 0; i < count; i++ {
		result[i] = rb.record(rb.data[(startIdx+i)%rb.capacity])
	}

	return result
}

// -----------------------------------------------------------------------------

// GetAll returns all buckets in insertion order (oldest to newest)
func (rb *RingBuffer) GetAll() []models.MBucketRecord {
	return rb.GetLatest(rb.size)
}

func (rb *RingBuffer) record(row [RB_NUM_FEATURES]float64) models.MBucketRecord {
	start := int64(row[RB_IDX_START_TIME])
	return models.MBucketRecord{
		Channel:   rb.channel,
		StartTime: start,
		EndTime:   start + MinuteSeconds,
		Minimum:   row[RB_IDX_MINIMUM],
		Maximum:   row[RB_IDX_MAXIMUM],
		First:     row[RB_IDX_FIRST],
		Last:      row[RB_IDX_LAST],
		Average:   row[RB_IDX_AVERAGE],
		Count:     int(row[RB_IDX_COUNT]),
	}
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (rb *RingBuffer) Size() int {
	return rb.size
}

// Capacity returns buffer capacity (fixed)
func (rb *RingBuffer) Capacity() int {
	return rb.capacity
}

// IsFull returns whether buffer is full
func (rb *RingBuffer) IsFull() bool {
	return rb.size == rb.capacity
}

// Clear resets the buffer
func (rb *RingBuffer) Clear() {
	rb.index = 0
	rb.size = 0
}

// -----------------------------------------------------------------------------
// Ring is a bounded FIFO of arbitrary values, used for raw message snapshots.
// -----------------------------------------------------------------------------

type Ring[T any] struct {
	items    []T
	capacity int
	index    int
	size     int
}

func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 100
	}
	return &Ring[T]{items: make([]T, capacity), capacity: capacity}
}

// Push appends v, dropping the oldest value when full.
func (r *Ring[T]) Push(v T) {
	r.items[r.index] = v
	r.index = (r.index + 1) % r.capacity
	if r.size < r.capacity {
		r.size++
	}
}

// Items returns the held values, oldest first.
func (r *Ring[T]) Items() []T {
	out := make([]T, r.size)
	start := (r.index - r.size + r.capacity) % r.capacity
	for i := range out {
		out[i] = r.items[(start+i)%r.capacity]
	}
	return out
}

func (r *Ring[T]) Len() int {
	return r.size
}
