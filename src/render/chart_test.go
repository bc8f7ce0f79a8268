package render

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"
)

func newTestChart() *Chart {
	log := logger.NewLogger(nil, "render")
	log.SetOutput(io.Discard)
	return NewChart(models.MChannelConfig{Name: models.ChannelTemperature, Label: "Temperature", Unit: "°C"}, 600, 300, log)
}

func testSeries() *models.MChannelSeries {
	return &models.MChannelSeries{
		Timestamps: []string{"10:00", "10:01"},
		Stats: []models.MStatBucket{
			{Minimum: 10, Maximum: 20, First: 12, Last: 18, Average: 15, Count: models.IntPtr(6)},
			{Minimum: 11, Maximum: 19, First: 18, Last: 13, Average: 16},
		},
	}
}

func TestRenderEmptyIsNoop(t *testing.T) {
	c := newTestChart()
	if !c.Render(testSeries()) {
		t.Fatalf("expected redraw")
	}
	before := c.Snapshot()

	redraws := 0
	c.OnRedraw(func(models.MChartFrame) { redraws++ })

	if c.Render(nil) {
		t.Fatalf("absent series must not redraw")
	}
	if c.Render(&models.MChannelSeries{}) {
		t.Fatalf("empty series must not redraw")
	}
	after := c.Snapshot()
	if redraws != 0 || after.Version != before.Version || len(after.Candles) != 2 {
		t.Fatalf("chart state changed: %+v", after)
	}
}

func TestRenderReplacesState(t *testing.T) {
	c := newTestChart()
	c.SetHeading(models.MInterval{Name: "1min", Label: "1 Minute"})

	var frames []models.MChartFrame
	c.OnRedraw(func(f models.MChartFrame) { frames = append(frames, f) })

	c.Render(testSeries())
	c.Render(&models.MChannelSeries{
		Timestamps: []string{"11:00"},
		Stats:      []models.MStatBucket{{Minimum: 10, Maximum: 20, First: 12, Last: 18, Average: 15}},
	})

	if len(frames) != 2 {
		t.Fatalf("expected 2 redraw notifications, got %d", len(frames))
	}
	f := c.Snapshot()
	if f.Version != 2 || len(f.Candles) != 1 || f.Labels[0] != "11:00" {
		t.Fatalf("unexpected frame %+v", f)
	}
	if f.Lower != 9 || f.Upper != 21 {
		t.Fatalf("bounds = [%v, %v]", f.Lower, f.Upper)
	}
	if f.Candles[0].Color != "#0000ff" || f.Interval != "1min" {
		t.Fatalf("unexpected candle %+v interval %q", f.Candles[0], f.Interval)
	}
	if f.Heading != "Temperature Statistics (°C) - 1 Minute Intervals" {
		t.Fatalf("heading = %q", f.Heading)
	}
}

func TestWriteOutputs(t *testing.T) {
	c := newTestChart()

	// an undrawn chart still renders its empty axes
	var empty bytes.Buffer
	if err := c.WriteSVG(&empty); err != nil {
		t.Fatalf("empty svg: %v", err)
	}

	c.Render(testSeries())

	var svg bytes.Buffer
	if err := c.WriteSVG(&svg); err != nil {
		t.Fatalf("svg: %v", err)
	}
	if !strings.Contains(svg.String(), "<svg") {
		t.Fatalf("svg output missing root element")
	}

	var png bytes.Buffer
	if err := c.WritePNG(&png); err != nil {
		t.Fatalf("png: %v", err)
	}
	if !bytes.HasPrefix(png.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("png output missing signature")
	}

	var page bytes.Buffer
	if err := c.WriteInteractive(&page); err != nil {
		t.Fatalf("interactive: %v", err)
	}
	if !strings.Contains(page.String(), "echarts") {
		t.Fatalf("interactive page does not load echarts")
	}
}

func TestInteractiveTooltipCarriesBucketDetails(t *testing.T) {
	c := newTestChart()
	c.Render(testSeries())

	var page bytes.Buffer
	if err := c.WriteInteractive(&page); err != nil {
		t.Fatalf("interactive: %v", err)
	}
	out := page.String()
	for _, want := range []string{
		"10:00<br/>First: 12 °C<br/>Last: 18 °C<br/>Min: 10 °C<br/>Max: 20 °C<br/>Avg: 15 °C<br/>Count: 6 samples",
		"10:01<br/>First: 18 °C<br/>Last: 13 °C<br/>Min: 11 °C<br/>Max: 19 °C<br/>Avg: 16 °C\"",
		"return p.data.name;",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("interactive page missing %q", want)
		}
	}
}
