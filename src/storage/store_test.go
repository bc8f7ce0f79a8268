package storage

import (
	"io"
	"math"
	"testing"

	"sensor-dashboard/src/interfaces"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"
)

const base int64 = 1700000400 // aligned on 10 minutes

type storeFactory func(cfg *models.MConfig, log *logger.Logger) interfaces.IBucketStore

var factories = map[string]storeFactory{
	"memory": func(cfg *models.MConfig, log *logger.Logger) interfaces.IBucketStore {
		return NewMemoryStore(cfg, log)
	},
	"sqlite": func(cfg *models.MConfig, log *logger.Logger) interfaces.IBucketStore {
		cfg.Storage.DBPath = ":memory:"
		return NewSQLiteStore(cfg, log)
	},
}

func forEachStore(t *testing.T, maxBuckets int, fn func(t *testing.T, store interfaces.IBucketStore)) {
	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			cfg := &models.MConfig{
				Channels: []models.MChannelConfig{{Name: models.ChannelTemperature}, {Name: models.ChannelCO2}},
			}
			cfg.Storage.MaxBuckets = maxBuckets
			log := logger.NewLogger(nil, "storage")
			log.SetOutput(io.Discard)

			store := factory(cfg, log)
			if err := store.Initialize(); err != nil {
				t.Fatalf("initialize: %v", err)
			}
			defer store.Close()
			fn(t, store)
		})
	}
}

func minute(i int) models.MBucketRecord {
	f := float64(i)
	return models.MBucketRecord{
		Channel:   models.ChannelTemperature,
		StartTime: base + int64(i)*60,
		EndTime:   base + int64(i+1)*60,
		Minimum:   f,
		Maximum:   10 + f,
		First:     f + 1,
		Last:      f + 2,
		Average:   5 + f,
		Count:     2,
	}
}

func appendMinutes(t *testing.T, store interfaces.IBucketStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := store.Append(minute(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

// -----------------------------------------------------------------------------

func TestQueryMinuteBuckets(t *testing.T) {
	forEachStore(t, 100, func(t *testing.T, store interfaces.IBucketStore) {
		appendMinutes(t, store, 5)

		got, err := store.Query(models.ChannelTemperature, 60, 3)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 buckets, got %d", len(got))
		}
		for i, r := range got {
			want := minute(i + 2)
			if r.StartTime != want.StartTime || r.First != want.First || r.Last != want.Last || r.Count != 2 {
				t.Fatalf("bucket %d = %+v, want %+v", i, r, want)
			}
		}

		empty, err := store.Query(models.ChannelCO2, 60, 3)
		if err != nil || len(empty) != 0 {
			t.Fatalf("co2 should be empty: %v %v", empty, err)
		}
	})
}

func TestQueryResamplesTenMinutes(t *testing.T) {
	forEachStore(t, 100, func(t *testing.T, store interfaces.IBucketStore) {
		appendMinutes(t, store, 12)

		got, err := store.Query(models.ChannelTemperature, 600, 10)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 buckets, got %+v", got)
		}

		a, b := got[0], got[1]
		if a.StartTime != base || a.EndTime != base+600 {
			t.Fatalf("first bucket window [%d, %d)", a.StartTime, a.EndTime)
		}
		if a.Minimum != 0 || a.Maximum != 19 || a.First != 1 || a.Last != 11 || a.Count != 20 {
			t.Fatalf("first bucket = %+v", a)
		}
		if math.Abs(a.Average-9.5) > 1e-9 {
			t.Fatalf("first bucket average = %v", a.Average)
		}
		if b.StartTime != base+600 || b.Minimum != 10 || b.Maximum != 21 || b.First != 11 || b.Last != 13 || b.Count != 4 {
			t.Fatalf("second bucket = %+v", b)
		}

		latest, _ := store.Query(models.ChannelTemperature, 600, 1)
		if len(latest) != 1 || latest[0].StartTime != base+600 {
			t.Fatalf("limit 1 = %+v", latest)
		}
	})
}

func TestCapacityBound(t *testing.T) {
	forEachStore(t, 5, func(t *testing.T, store interfaces.IBucketStore) {
		appendMinutes(t, store, 8)

		got, err := store.Query(models.ChannelTemperature, 60, 100)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 5 || got[0].StartTime != minute(3).StartTime {
			t.Fatalf("expected the 5 newest buckets, got %+v", got)
		}
	})
}

func TestDuplicateMinuteIsMerged(t *testing.T) {
	forEachStore(t, 100, func(t *testing.T, store interfaces.IBucketStore) {
		store.Append(models.MBucketRecord{Channel: models.ChannelCO2, StartTime: base, Minimum: 1, Maximum: 5, First: 2, Last: 3, Average: 3, Count: 2})
		store.Append(models.MBucketRecord{Channel: models.ChannelCO2, StartTime: base, Minimum: 0, Maximum: 4, First: 4, Last: 1, Average: 2, Count: 2})

		got, err := store.Query(models.ChannelCO2, 60, 10)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected one merged bucket, got %+v", got)
		}
		r := got[0]
		if r.Minimum != 0 || r.Maximum != 5 || r.First != 2 || r.Last != 1 || r.Count != 4 || r.Average != 2.5 {
			t.Fatalf("merged bucket = %+v", r)
		}
	})
}

func TestAppendRequiresChannel(t *testing.T) {
	forEachStore(t, 10, func(t *testing.T, store interfaces.IBucketStore) {
		if err := store.Append(models.MBucketRecord{StartTime: base}); err == nil {
			t.Fatalf("expected an error for a record without channel")
		}
	})
}
