package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sensor-dashboard/src/helpers"
	"sensor-dashboard/src/interfaces"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/metrics"
	"sensor-dashboard/src/models"
	"sensor-dashboard/src/render"
)

// -----------------------------------------------------------------------------

// Controller owns the selected interval and the refresh ticker, and feeds
// every fetched channel series to its chart.
type Controller struct {
	Intervals    []models.MInterval
	Source       interfaces.IStatsSource
	Charts       map[string]*render.Chart
	Logger       *logger.Logger
	ErrorHandler *helpers.ErrorHandler
	Metrics      *metrics.Metrics
	NewTicker    TickerFactory

	mu       sync.Mutex
	selected models.MInterval
	ticker   Ticker
	reset    chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	running  bool
	issued   uint64
	applied  uint64
	status   models.MPollStatus
	onUpdate func(models.MDashboardUpdate)

	loopWg  sync.WaitGroup
	fetchWg sync.WaitGroup
}

// -----------------------------------------------------------------------------

// NewController selects defaultInterval; it fails when that name is not in intervals.
func NewController(intervals []models.MInterval, defaultInterval string, source interfaces.IStatsSource,
	charts map[string]*render.Chart, log *logger.Logger) (*Controller, error) {

	c := &Controller{
		Intervals:    intervals,
		Source:       source,
		Charts:       charts,
		Logger:       log,
		ErrorHandler: helpers.NewErrorHandler(log),
		NewTicker:    NewTimeTicker,
		reset:        make(chan struct{}, 1),
	}

	in, ok := c.lookup(defaultInterval)
	if !ok {
		return nil, helpers.NewValidationError(fmt.Sprintf("unknown interval '%s'", defaultInterval))
	}
	c.selected = in
	c.status.SelectedInterval = in.Name
	return c, nil
}

// OnUpdate registers the hook called after each applied poll.
func (c *Controller) OnUpdate(fn func(models.MDashboardUpdate)) {
	c.mu.Lock()
	c.onUpdate = fn
	c.mu.Unlock()
}

func (c *Controller) lookup(name string) (models.MInterval, bool) {
	for _, in := range c.Intervals {
		if in.Name == name {
			return in, true
		}
	}
	return models.MInterval{}, false
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start arms the ticker for the selected interval, fetches once and then
// polls on every tick until ctx is cancelled or Stop is called.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("poller already running")
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.ticker = c.NewTicker(c.selected.Refresh())
	c.running = true
	interval := c.selected
	c.mu.Unlock()

	c.Logger.Info("Polling every %s (interval %s)", interval.Refresh(), interval.Name)

	c.loopWg.Add(1)
	go c.loop()

	c.trigger()
	return nil
}

// Stop cancels the loop and in-flight fetches and waits for them to finish.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.cancel()
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	c.mu.Unlock()

	c.loopWg.Wait()
	c.fetchWg.Wait()
}

// Wait blocks until every fetch launched so far has completed.
func (c *Controller) Wait() {
	c.fetchWg.Wait()
}

// -----------------------------------------------------------------------------

func (c *Controller) loop() {
	defer c.loopWg.Done()

	for {
		c.mu.Lock()
		ctx := c.ctx
		var tick <-chan time.Time
		if c.ticker != nil {
			tick = c.ticker.C()
		}
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-c.reset:
			// ticker replaced, pick up the new channel
		case <-tick:
			c.trigger()
		}
	}
}

// trigger launches one asynchronous fetch-then-render.
func (c *Controller) trigger() {
	c.mu.Lock()
	ctx := c.ctx
	c.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	c.fetchWg.Add(1)
	go func() {
		defer c.fetchWg.Done()
		c.FetchAndRender(ctx)
	}()
}

// -----------------------------------------------------------------------------
// Interval selection
// -----------------------------------------------------------------------------

// Select switches to the named interval: the running ticker is stopped, a
// new one is started at the interval's refresh period and one fetch is
// triggered immediately. Unknown names are rejected and change nothing.
func (c *Controller) Select(name string) error {
	in, ok := c.lookup(name)
	if !ok {
		return helpers.NewValidationError(fmt.Sprintf("unknown interval '%s'", name))
	}

	c.mu.Lock()
	c.selected = in
	c.status.SelectedInterval = in.Name
	running := c.running
	if running {
		if c.ticker != nil {
			c.ticker.Stop()
		}
		c.ticker = c.NewTicker(in.Refresh())
	}
	c.mu.Unlock()

	c.Logger.Info("Interval changed to %s, refreshing every %s", in.Name, in.Refresh())

	if running {
		select {
		case c.reset <- struct{}{}:
		default:
		}
		c.trigger()
	}
	return nil
}

// Refresh triggers one fetch outside the regular schedule.
func (c *Controller) Refresh() {
	c.trigger()
}

// ListIntervals returns the selectable intervals in display order.
func (c *Controller) ListIntervals() []models.MInterval {
	return append([]models.MInterval(nil), c.Intervals...)
}

// Selected returns the active interval.
func (c *Controller) Selected() models.MInterval {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Status reports poll counters.
func (c *Controller) Status() models.MPollStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Frames snapshots every chart.
func (c *Controller) Frames() map[string]models.MChartFrame {
	frames := make(map[string]models.MChartFrame, len(c.Charts))
	for name, chart := range c.Charts {
		frames[name] = chart.Snapshot()
	}
	return frames
}

// -----------------------------------------------------------------------------
// Fetch
// -----------------------------------------------------------------------------

// FetchAndRender performs one request for the selected interval and feeds
// each channel to its chart. On failure the charts keep their last state.
// A response that completes after a newer one was applied is dropped.
func (c *Controller) FetchAndRender(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	interval := c.selected
	c.mu.Unlock()

	start := time.Now()
	resp, err := c.Source.FetchStats(ctx, interval.Name)
	c.Metrics.PollDone(start, err)

	c.mu.Lock()
	c.status.Polls++
	if err != nil {
		c.status.Failures++
		c.status.LastError = err.Error()
		c.mu.Unlock()
		c.ErrorHandler.Handle(err, "fetch stats")
		return err
	}
	if seq < c.applied {
		c.status.StaleDropped++
		c.mu.Unlock()
		c.Metrics.StaleDropped()
		c.Logger.Debug("Dropping stale response #%d (applied #%d)", seq, c.applied)
		return nil
	}
	c.applied = seq

	for name, chart := range c.Charts {
		chart.SetHeading(interval)
		chart.Render(resp.Channel(name))
	}
	c.status.LastSuccess = time.Now().Unix()
	c.status.LastError = ""
	status := c.status
	hook := c.onUpdate
	c.mu.Unlock()

	c.ErrorHandler.ResetErrorCount()

	if hook != nil {
		hook(models.MDashboardUpdate{
			Type:      "UPDATE",
			Interval:  interval.Name,
			Frames:    c.Frames(),
			Timestamp: status.LastSuccess,
			Status:    status,
		})
	}
	return nil
}

var _ interfaces.IDashboardController = (*Controller)(nil)
