package stats

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sensor-dashboard/src/helpers"
	"sensor-dashboard/src/interfaces"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/metrics"
	"sensor-dashboard/src/models"
	"sensor-dashboard/src/utils"
)

// FlushPeriod is how often the aggregator checks the wall clock for a
// finished minute when no readings arrive.
const FlushPeriod = 5 * time.Second

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts ISO 8601 timestamps; zone-less values are UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// -----------------------------------------------------------------------------

// MinuteAggregator folds raw readings into per-channel minute buckets and
// appends each bucket to the store once its minute is over.
type MinuteAggregator struct {
	Store   interfaces.IBucketStore
	Latest  *LatestQueue
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time

	mu     sync.Mutex
	minute int64
	open   map[string]*models.MOpenMinute
}

// -----------------------------------------------------------------------------

func NewMinuteAggregator(store interfaces.IBucketStore, latest *LatestQueue, log *logger.Logger) *MinuteAggregator {
	return &MinuteAggregator{
		Store:  store,
		Latest: latest,
		Logger: log,
		Now:    time.Now,
		minute: -1,
		open:   make(map[string]*models.MOpenMinute),
	}
}

// -----------------------------------------------------------------------------

// Run consumes messages until ctx is cancelled or in is closed, flushing
// finished minutes on the way. The open minute is closed on return.
func (a *MinuteAggregator) Run(ctx context.Context, in <-chan models.MSensorMessage) {
	ticker := time.NewTicker(FlushPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.closeOpen()
			return
		case msg, ok := <-in:
			if !ok {
				a.closeOpen()
				return
			}
			if err := a.Process(msg); err != nil {
				a.Logger.Warning("Dropping message: %v", err)
			}
		case <-ticker.C:
			a.Flush(a.Now())
		}
	}
}

// -----------------------------------------------------------------------------

// Process adds one message. A reading for a later minute closes the open one;
// readings for an earlier minute are folded into the open minute.
func (a *MinuteAggregator) Process(msg models.MSensorMessage) error {
	ts, err := ParseTimestamp(msg.Timestamp)
	if err != nil {
		return helpers.NewIngestError("invalid message", err)
	}
	if msg.ReceivedAt == 0 {
		msg.ReceivedAt = a.Now().Unix()
	}
	if a.Latest != nil {
		a.Latest.Push(msg)
	}

	minute, _ := utils.AlignBucket(ts.Unix(), utils.MinuteSeconds)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.minute >= 0 && minute > a.minute {
		a.closeLocked()
	}
	if a.minute < 0 {
		a.minute = minute
	}

	for _, r := range msg.Readings {
		if r.Type != models.ChannelTemperature && r.Type != models.ChannelCO2 {
			a.Logger.Debug("Ignoring reading of type %q", r.Type)
			continue
		}
		om, ok := a.open[r.Type]
		if !ok {
			om = &models.MOpenMinute{Channel: r.Type, StartTime: a.minute}
			a.open[r.Type] = om
		}
		om.Add(r.Value)
		a.Metrics.ReadingIngested(r.Type)
	}
	return nil
}

// Flush closes the open minute when now is past it.
func (a *MinuteAggregator) Flush(now time.Time) {
	current, _ := utils.AlignBucket(now.Unix(), utils.MinuteSeconds)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.minute >= 0 && current > a.minute {
		a.closeLocked()
	}
}

func (a *MinuteAggregator) closeOpen() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.minute >= 0 {
		a.closeLocked()
	}
}

// closeLocked writes one bucket per channel seen in the open minute.
func (a *MinuteAggregator) closeLocked() {
	channels := make([]string, 0, len(a.open))
	for ch := range a.open {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	for _, ch := range channels {
		om := a.open[ch]
		if om.Count == 0 {
			continue
		}
		record := models.MBucketRecord{
			Channel:   ch,
			StartTime: om.StartTime,
			EndTime:   om.StartTime + utils.MinuteSeconds,
			Minimum:   om.Minimum,
			Maximum:   om.Maximum,
			First:     om.First,
			Last:      om.Last,
			Average:   om.Sum / float64(om.Count),
			Count:     om.Count,
			CreatedAt: a.Now().UTC(),
		}
		if err := a.Store.Append(record); err != nil {
			a.Logger.Error("Failed to store %s bucket %d: %v", ch, om.StartTime, err)
			continue
		}
		a.Metrics.BucketClosed(ch)
		a.Logger.Debug("Closed %s minute %d: %d samples", ch, om.StartTime, om.Count)
	}

	a.open = make(map[string]*models.MOpenMinute)
	a.minute = -1
}
