package poller

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"sensor-dashboard/src/config"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"
	"sensor-dashboard/src/render"
)

// -----------------------------------------------------------------------------

type fakeTicker struct {
	period  time.Duration
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeTickers struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeTickers) New(period time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{period: period, ch: make(chan time.Time)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *fakeTickers) all() []*fakeTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*fakeTicker(nil), f.tickers...)
}

// -----------------------------------------------------------------------------

type fakeSource struct {
	mu        sync.Mutex
	intervals []string
	responses []*models.MStatsResponse
	errs      []error
	gates     []chan struct{}
	entered   chan int
}

func (s *fakeSource) FetchStats(ctx context.Context, interval string) (*models.MStatsResponse, error) {
	s.mu.Lock()
	n := len(s.intervals)
	s.intervals = append(s.intervals, interval)
	var resp *models.MStatsResponse
	var err error
	var gate chan struct{}
	if n < len(s.responses) {
		resp = s.responses[n]
	} else if len(s.responses) > 0 {
		resp = s.responses[len(s.responses)-1]
	}
	if n < len(s.errs) {
		err = s.errs[n]
	}
	if n < len(s.gates) {
		gate = s.gates[n]
	}
	entered := s.entered
	s.mu.Unlock()

	if entered != nil {
		entered <- n
	}
	if gate != nil {
		<-gate
	}
	return resp, err
}

func (s *fakeSource) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.intervals...)
}

// -----------------------------------------------------------------------------

func response(label string, first, last float64) *models.MStatsResponse {
	series := func() *models.MChannelSeries {
		return &models.MChannelSeries{
			Timestamps: []string{label},
			Stats:      []models.MStatBucket{{Minimum: 10, Maximum: 20, First: first, Last: last, Average: 15}},
		}
	}
	return &models.MStatsResponse{Temperature: series(), CO2: series()}
}

func newTestController(t *testing.T, src *fakeSource) (*Controller, *fakeTickers) {
	t.Helper()
	log := logger.NewLogger(nil, "poller")
	log.SetOutput(io.Discard)

	charts := make(map[string]*render.Chart)
	for _, ch := range config.DefaultChannels() {
		charts[ch.Name] = render.NewChart(ch, 400, 200, log)
	}

	c, err := NewController(config.DefaultIntervals(), "1min", src, charts, log)
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	tickers := &fakeTickers{}
	c.NewTicker = tickers.New
	return c, tickers
}

// -----------------------------------------------------------------------------

func TestSelectReschedulesAndFetchesOnce(t *testing.T) {
	src := &fakeSource{responses: []*models.MStatsResponse{response("10:00", 12, 18)}}
	c, tickers := newTestController(t, src)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Stop()
	c.Wait()

	if got := src.calls(); len(got) != 1 || got[0] != "1min" {
		t.Fatalf("initial fetches = %v", got)
	}
	first := tickers.all()[0]
	if first.period != 10*time.Second {
		t.Fatalf("1min ticker period = %v", first.period)
	}

	if err := c.Select("1hour"); err != nil {
		t.Fatalf("select: %v", err)
	}
	c.Wait()

	all := tickers.all()
	if len(all) != 2 {
		t.Fatalf("expected a new ticker, got %d", len(all))
	}
	if !first.isStopped() {
		t.Fatalf("old ticker still running")
	}
	if all[1].period != 60*time.Second || all[1].isStopped() {
		t.Fatalf("new ticker period=%v stopped=%v", all[1].period, all[1].isStopped())
	}
	if got := src.calls(); len(got) != 2 || got[1] != "1hour" {
		t.Fatalf("fetches after select = %v", got)
	}
	if c.Selected().Name != "1hour" || c.Status().SelectedInterval != "1hour" {
		t.Fatalf("selected = %+v", c.Selected())
	}
	frame := c.Charts[models.ChannelTemperature].Snapshot()
	if frame.Heading != "Temperature Statistics (°C) - 1 Hour Intervals" {
		t.Fatalf("heading = %q", frame.Heading)
	}
}

func TestTickTriggersFetch(t *testing.T) {
	src := &fakeSource{responses: []*models.MStatsResponse{response("10:00", 12, 18)}}
	c, tickers := newTestController(t, src)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Stop()
	c.Wait()

	tickers.all()[0].ch <- time.Now()

	deadline := time.Now().Add(2 * time.Second)
	for len(src.calls()) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("tick did not trigger a fetch")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSelectUnknownIntervalIsRejected(t *testing.T) {
	src := &fakeSource{}
	c, tickers := newTestController(t, src)

	if err := c.Select("5min"); err == nil {
		t.Fatalf("expected an error for an unknown interval")
	}
	if c.Selected().Name != "1min" || len(tickers.all()) != 0 || len(src.calls()) != 0 {
		t.Fatalf("rejected selection changed state")
	}
}

func TestFailureLeavesChartsUntouched(t *testing.T) {
	src := &fakeSource{
		responses: []*models.MStatsResponse{response("10:00", 12, 18), nil},
		errs:      []error{nil, errors.New("connection refused")},
	}
	c, _ := newTestController(t, src)

	var updates int
	c.OnUpdate(func(models.MDashboardUpdate) { updates++ })

	if err := c.FetchAndRender(context.Background()); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	before := c.Frames()

	if err := c.FetchAndRender(context.Background()); err == nil {
		t.Fatalf("expected fetch error")
	}
	after := c.Frames()

	for name := range before {
		if before[name].Version != after[name].Version || after[name].Labels[0] != "10:00" {
			t.Fatalf("%s chart changed after failure", name)
		}
	}
	st := c.Status()
	if st.Polls != 2 || st.Failures != 1 || st.LastError == "" || updates != 1 {
		t.Fatalf("unexpected status %+v updates=%d", st, updates)
	}
	if n, _ := c.ErrorHandler.State(); n != 1 {
		t.Fatalf("error handler count = %d", n)
	}
}

func TestEmptyChannelIsNoop(t *testing.T) {
	src := &fakeSource{responses: []*models.MStatsResponse{
		response("10:00", 12, 18),
		{Temperature: &models.MChannelSeries{}, CO2: response("10:01", 18, 12).CO2},
	}}
	c, _ := newTestController(t, src)

	c.FetchAndRender(context.Background())
	c.FetchAndRender(context.Background())

	temp := c.Charts[models.ChannelTemperature].Snapshot()
	co2 := c.Charts[models.ChannelCO2].Snapshot()
	if temp.Version != 1 || temp.Labels[0] != "10:00" {
		t.Fatalf("temperature chart should keep its data: %+v", temp)
	}
	if co2.Version != 2 || co2.Candles[0].Direction != "down" {
		t.Fatalf("co2 chart should be redrawn: %+v", co2)
	}
}

func TestStaleResponseIsDropped(t *testing.T) {
	slow := make(chan struct{})
	src := &fakeSource{
		responses: []*models.MStatsResponse{response("old", 12, 18), response("new", 18, 12)},
		gates:     []chan struct{}{slow},
		entered:   make(chan int, 2),
	}
	c, _ := newTestController(t, src)

	done := make(chan error, 1)
	go func() { done <- c.FetchAndRender(context.Background()) }()
	<-src.entered

	if err := c.FetchAndRender(context.Background()); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	<-src.entered

	close(slow)
	if err := <-done; err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	frame := c.Charts[models.ChannelTemperature].Snapshot()
	if frame.Labels[0] != "new" || frame.Version != 1 {
		t.Fatalf("stale response overwrote the chart: %+v", frame)
	}
	if c.Status().StaleDropped != 1 {
		t.Fatalf("stale dropped = %d", c.Status().StaleDropped)
	}
}
