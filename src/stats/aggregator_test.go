package stats

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"sensor-dashboard/src/helpers"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"
)

type recordingStore struct {
	mu      sync.Mutex
	records []models.MBucketRecord
}

func (s *recordingStore) Initialize() error { return nil }

func (s *recordingStore) Append(r models.MBucketRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

func (s *recordingStore) Query(string, int64, int) ([]models.MBucketRecord, error) {
	return nil, nil
}

func (s *recordingStore) Close() error { return nil }

func (s *recordingStore) all() []models.MBucketRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MBucketRecord(nil), s.records...)
}

func newTestAggregator(now time.Time) (*MinuteAggregator, *recordingStore) {
	log := logger.NewLogger(nil, "stats")
	log.SetOutput(io.Discard)
	store := &recordingStore{}
	a := NewMinuteAggregator(store, NewLatestQueue(3), log)
	a.Now = func() time.Time { return now }
	return a, store
}

func message(ts string, temp, co2 float64) models.MSensorMessage {
	return models.MSensorMessage{
		Timestamp: ts,
		Readings: []models.MSensorReading{
			{Type: models.ChannelTemperature, Value: temp},
			{Type: models.ChannelCO2, Value: co2},
		},
	}
}

// -----------------------------------------------------------------------------

func TestMinuteChangeClosesBuckets(t *testing.T) {
	a, store := newTestAggregator(time.Date(2024, 3, 1, 10, 1, 30, 0, time.UTC))

	for _, m := range []models.MSensorMessage{
		message("2024-03-01T10:00:05Z", 21.0, 400),
		message("2024-03-01T10:00:25Z", 23.0, 450),
		message("2024-03-01T10:00:45", 22.0, 430),
	} {
		if err := a.Process(m); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if len(store.all()) != 0 {
		t.Fatalf("minute closed too early")
	}

	a.Process(message("2024-03-01T10:01:02Z", 24.0, 500))

	records := store.all()
	if len(records) != 2 {
		t.Fatalf("expected one bucket per channel, got %+v", records)
	}
	co2, temp := records[0], records[1]
	if co2.Channel != models.ChannelCO2 || temp.Channel != models.ChannelTemperature {
		t.Fatalf("unexpected channel order %s %s", co2.Channel, temp.Channel)
	}

	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC).Unix()
	if temp.StartTime != start || temp.EndTime != start+60 {
		t.Fatalf("window = [%d, %d)", temp.StartTime, temp.EndTime)
	}
	if temp.Minimum != 21 || temp.Maximum != 23 || temp.First != 21 || temp.Last != 22 || temp.Average != 22 || temp.Count != 3 {
		t.Fatalf("temperature bucket = %+v", temp)
	}
	if co2.Minimum != 400 || co2.Maximum != 450 || co2.Last != 430 {
		t.Fatalf("co2 bucket = %+v", co2)
	}
}

func TestFlushClosesOnWallClock(t *testing.T) {
	a, store := newTestAggregator(time.Now())
	a.Process(message("2024-03-01T10:00:05Z", 21.0, 400))

	a.Flush(time.Date(2024, 3, 1, 10, 0, 59, 0, time.UTC))
	if len(store.all()) != 0 {
		t.Fatalf("flush inside the open minute must not close it")
	}

	a.Flush(time.Date(2024, 3, 1, 10, 1, 0, 0, time.UTC))
	if len(store.all()) != 2 {
		t.Fatalf("flush after the minute should close it, got %d", len(store.all()))
	}

	a.Flush(time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC))
	if len(store.all()) != 2 {
		t.Fatalf("nothing open, nothing to flush")
	}
}

func TestInvalidMessagesAreDropped(t *testing.T) {
	a, store := newTestAggregator(time.Now())

	err := a.Process(models.MSensorMessage{Timestamp: "yesterday"})
	if err == nil {
		t.Fatalf("expected an error for a bad timestamp")
	}
	var ingestErr *helpers.IngestError
	if !errors.As(err, &ingestErr) {
		t.Fatalf("expected an ingest error, got %T", err)
	}

	a.Process(models.MSensorMessage{
		Timestamp: "2024-03-01T10:00:05Z",
		Readings:  []models.MSensorReading{{Type: "humidity", Value: 40}},
	})
	a.Flush(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC))
	if len(store.all()) != 0 {
		t.Fatalf("unknown reading types must not create buckets")
	}
}

func TestLatestQueueIsBounded(t *testing.T) {
	a, _ := newTestAggregator(time.Unix(1700000000, 0))
	for i, ts := range []string{"2024-03-01T10:00:01Z", "2024-03-01T10:00:02Z", "2024-03-01T10:00:03Z", "2024-03-01T10:00:04Z"} {
		a.Process(message(ts, float64(i), 400))
	}

	latest := a.Latest.Snapshot()
	if len(latest) != 3 || latest[0].Timestamp != "2024-03-01T10:00:02Z" {
		t.Fatalf("latest = %+v", latest)
	}
	if latest[2].ReceivedAt != 1700000000 {
		t.Fatalf("received_at = %d", latest[2].ReceivedAt)
	}
	if len(a.Latest.Snapshot()) != 3 {
		t.Fatalf("snapshot must not drain the queue")
	}
}

func TestRunClosesOpenMinuteOnShutdown(t *testing.T) {
	a, store := newTestAggregator(time.Now())
	in := make(chan models.MSensorMessage, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		a.Run(ctx, in)
		close(done)
	}()

	in <- message("2024-03-01T10:00:05Z", 21.0, 400)
	close(in)
	<-done
	cancel()

	if len(store.all()) != 2 {
		t.Fatalf("expected open minute to be closed on shutdown, got %d", len(store.all()))
	}
}
