package render

import (
	"sensor-dashboard/src/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// -----------------------------------------------------------------------------
// candleSeries plugs the candle layout into a go-chart graph
// -----------------------------------------------------------------------------

type candleSeries struct {
	name  string
	stats []models.MStatBucket
}

func (s candleSeries) GetName() string { return s.name }

func (s candleSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (s candleSeries) GetStyle() chart.Style { return chart.Style{} }

func (s candleSeries) Validate() error { return nil }

func (s candleSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, _ chart.Style) {
	p := rangeProjection{box: canvasBox, xrange: xrange, yrange: yrange}
	Draw(rendererCanvas{r: r}, Layout(s.stats, p))
}

// -----------------------------------------------------------------------------

// rangeProjection maps through the ranges go-chart computed for the canvas.
type rangeProjection struct {
	box            chart.Box
	xrange, yrange chart.Range
}

func (p rangeProjection) X(index int) int {
	return p.box.Left + p.xrange.Translate(float64(index))
}

func (p rangeProjection) Y(value float64) int {
	return p.box.Bottom - p.yrange.Translate(value)
}

func (p rangeProjection) BucketWidth() float64 {
	return float64(p.xrange.Translate(1) - p.xrange.Translate(0))
}

// -----------------------------------------------------------------------------

type rendererCanvas struct {
	r chart.Renderer
}

func (c rendererCanvas) VLine(l Line, color drawing.Color, width float64) {
	c.r.SetStrokeColor(color)
	c.r.SetStrokeWidth(width)
	c.r.MoveTo(l.X, l.Y0)
	c.r.LineTo(l.X, l.Y1)
	c.r.Stroke()
}

func (c rendererCanvas) FillRect(rect Rect, color drawing.Color) {
	c.r.SetFillColor(color)
	c.r.SetStrokeWidth(0)
	c.r.MoveTo(rect.X0, rect.Y0)
	c.r.LineTo(rect.X1, rect.Y0)
	c.r.LineTo(rect.X1, rect.Y1)
	c.r.LineTo(rect.X0, rect.Y1)
	c.r.Close()
	c.r.Fill()
}
