package render

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"

	"github.com/wcharczuk/go-chart/v2"
)

// maxXLabels bounds the number of category labels printed on the x axis.
const maxXLabels = 12

// -----------------------------------------------------------------------------

// Chart is one candlestick surface. Each Render fully replaces its data.
type Chart struct {
	Channel models.MChannelConfig
	Width   int
	Height  int
	Logger  *logger.Logger

	mu       sync.RWMutex
	labels   []string
	stats    []models.MStatBucket
	lower    float64
	upper    float64
	interval string
	heading  string
	version  uint64
	onRedraw func(models.MChartFrame)
}

// -----------------------------------------------------------------------------

func NewChart(channel models.MChannelConfig, width, height int, log *logger.Logger) *Chart {
	return &Chart{
		Channel: channel,
		Width:   width,
		Height:  height,
		Logger:  log,
		upper:   1,
		heading: channel.Label,
	}
}

// OnRedraw registers a hook called after every successful Render.
func (c *Chart) OnRedraw(fn func(models.MChartFrame)) {
	c.mu.Lock()
	c.onRedraw = fn
	c.mu.Unlock()
}

// SetHeading updates the interval the chart is titled with.
func (c *Chart) SetHeading(interval models.MInterval) {
	c.mu.Lock()
	c.interval = interval.Name
	c.heading = Heading(c.Channel.Label, c.Channel.Unit, interval.Label)
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Render replaces the chart data with series and redraws. Absent or empty
// series leave the chart untouched and report false.
func (c *Chart) Render(series *models.MChannelSeries) bool {
	if series.Len() == 0 {
		c.Logger.Debug("No %s data to display", c.Channel.Name)
		return false
	}

	lower, upper, _ := AxisBounds(series.Stats)

	stats := make([]models.MStatBucket, len(series.Stats))
	copy(stats, series.Stats)

	labels := make([]string, len(stats))
	for i := range labels {
		if i < len(series.Timestamps) {
			labels[i] = series.Timestamps[i]
		} else {
			labels[i] = strconv.Itoa(i)
		}
	}

	c.mu.Lock()
	c.stats = stats
	c.labels = labels
	c.lower, c.upper = lower, upper
	c.version++
	hook := c.onRedraw
	c.mu.Unlock()

	if hook != nil {
		hook(c.Snapshot())
	}
	return true
}

// -----------------------------------------------------------------------------

// Version increases by one on every redraw.
func (c *Chart) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Snapshot describes the currently drawn state for clients.
func (c *Chart) Snapshot() models.MChartFrame {
	c.mu.RLock()
	defer c.mu.RUnlock()

	frame := models.MChartFrame{
		Channel:  c.Channel.Name,
		Heading:  c.heading,
		Unit:     c.Channel.Unit,
		Interval: c.interval,
		Version:  c.version,
		Lower:    c.lower,
		Upper:    c.upper,
		Labels:   append([]string(nil), c.labels...),
		Candles:  make([]models.MCandleView, len(c.stats)),
	}
	for i, s := range c.stats {
		dir := DirectionOf(s)
		frame.Candles[i] = models.MCandleView{
			Index:     i,
			Timestamp: c.labels[i],
			Direction: string(dir),
			Color:     dir.Hex(),
			Tooltip:   Tooltip(s, c.Channel.Unit),
		}
	}
	return frame
}

// -----------------------------------------------------------------------------

// WriteSVG renders the chart as SVG.
func (c *Chart) WriteSVG(w io.Writer) error {
	return c.write(chart.SVG, w)
}

// WritePNG renders the chart as PNG.
func (c *Chart) WritePNG(w io.Writer) error {
	return c.write(chart.PNG, w)
}

func (c *Chart) write(rp chart.RendererProvider, w io.Writer) error {
	c.mu.RLock()
	graph := c.graph()
	c.mu.RUnlock()

	if err := graph.Render(rp, w); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", c.Channel.Name, err)
	}
	return nil
}

// graph builds the go-chart description. Callers hold the read lock.
func (c *Chart) graph() chart.Chart {
	n := len(c.stats)

	// Categories sit on integer positions with half a slot of margin.
	ticks := []chart.Tick{{Value: -0.5}}
	step := 1
	if n > maxXLabels {
		step = (n + maxXLabels - 1) / maxXLabels
	}
	for i := 0; i < n; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: c.labels[i]})
	}
	ticks = append(ticks, chart.Tick{Value: float64(max(n, 1)) - 0.5})

	return chart.Chart{
		Title:  c.heading,
		Width:  c.Width,
		Height: c.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  "Time",
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(max(n, 1)) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  c.Channel.Unit,
			Range: &chart.ContinuousRange{Min: c.lower, Max: c.upper},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return FormatValue(f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			candleSeries{name: c.Channel.Label, stats: c.stats},
		},
	}
}
