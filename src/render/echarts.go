package render

import (
	"fmt"
	"io"
	"strings"

	"sensor-dashboard/src/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// -----------------------------------------------------------------------------

// WriteInteractive renders the chart as a standalone ECharts kline page.
func (c *Chart) WriteInteractive(w io.Writer) error {
	kline := c.kline()
	if err := kline.Render(w); err != nil {
		return fmt.Errorf("failed to render interactive %s chart: %w", c.Channel.Name, err)
	}
	return nil
}

func (c *Chart) kline() *charts.Kline {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kline := charts.NewKLine()
	kline.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: c.heading,
			Width:     fmt.Sprintf("%dpx", c.Width),
			Height:    fmt.Sprintf("%dpx", c.Height),
		}),
		charts.WithAnimation(false),
		charts.WithTitleOpts(opts.Title{Title: c.heading}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time"}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: c.Channel.Unit,
			Min:  c.lower,
			Max:  c.upper,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: opts.FuncOpts("function (p) { return p.data.name; }"),
		}),
	)

	up, down := Up.Hex(), Down.Hex()
	kline.SetXAxis(c.labels).AddSeries(c.Channel.Label, klineItems(c.stats, c.labels, c.Channel.Unit),
		charts.WithItemStyleOpts(opts.ItemStyle{
			Color:        up,
			Color0:       down,
			BorderColor:  up,
			BorderColor0: down,
		}),
	)
	return kline
}

// klineItems orders values the way ECharts expects: open, close, low, high.
// Each item is named after its tooltip text so the formatter can print it.
func klineItems(stats []models.MStatBucket, labels []string, unit string) []opts.KlineData {
	items := make([]opts.KlineData, 0, len(stats))
	for i, s := range stats {
		items = append(items, opts.KlineData{
			Name:  tooltipHTML(labels[i], s, unit),
			Value: [4]float64{s.First, s.Last, s.Minimum, s.Maximum},
		})
	}
	return items
}

func tooltipHTML(label string, b models.MStatBucket, unit string) string {
	lines := []string{label}
	for _, l := range Tooltip(b, unit) {
		lines = append(lines, l.Name+": "+l.Value)
	}
	return strings.Join(lines, "<br/>")
}
