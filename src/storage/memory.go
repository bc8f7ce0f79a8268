package storage

import (
	"fmt"
	"sync"

	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"
	"sensor-dashboard/src/stats"
	"sensor-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// MemoryStore keeps minute buckets in one ring buffer per channel.
// -----------------------------------------------------------------------------

type MemoryStore struct {
	Config      *models.MConfig
	DataStreams map[string]*utils.RingBuffer
	Logger      *logger.Logger
	mu          sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewMemoryStore(cfg *models.MConfig, log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		Config:      cfg,
		DataStreams: make(map[string]*utils.RingBuffer),
		Logger:      log,
	}
}

// -----------------------------------------------------------------------------

func (m *MemoryStore) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.Config.Channels {
		m.DataStreams[ch.Name] = utils.NewRingBuffer(ch.Name, m.Config.Storage.MaxBuckets)
	}
	m.Logger.Info("Memory store ready (%d buckets per channel)", m.Config.Storage.MaxBuckets)
	return nil
}

// -----------------------------------------------------------------------------

func (m *MemoryStore) Append(record models.MBucketRecord) error {
	if record.Channel == "" {
		return fmt.Errorf("bucket record without channel")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rb, ok := m.DataStreams[record.Channel]
	if !ok {
		rb = utils.NewRingBuffer(record.Channel, m.Config.Storage.MaxBuckets)
		m.DataStreams[record.Channel] = rb
	}
	rb.Append(record)
	return nil
}

// -----------------------------------------------------------------------------

// Query resamples the buckets that fall inside the newest limit intervals.
func (m *MemoryStore) Query(channel string, bucketSeconds int64, limit int) ([]models.MBucketRecord, error) {
	if limit <= 0 {
		return []models.MBucketRecord{}, nil
	}
	bucketSeconds = max(bucketSeconds, utils.MinuteSeconds)

	m.mu.RLock()
	var records []models.MBucketRecord
	if rb, ok := m.DataStreams[channel]; ok {
		records = rb.GetAll()
	}
	m.mu.RUnlock()

	if len(records) == 0 {
		return []models.MBucketRecord{}, nil
	}

	var newest int64
	for _, r := range records {
		newest = max(newest, r.StartTime)
	}
	lastStart, _ := utils.AlignBucket(newest, bucketSeconds)
	cutoff := lastStart - int64(limit-1)*bucketSeconds

	window := records[:0]
	for _, r := range records {
		if r.StartTime >= cutoff {
			window = append(window, r)
		}
	}

	out := stats.Resample(window, bucketSeconds)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rb := range m.DataStreams {
		rb.Clear()
	}
	return nil
}
