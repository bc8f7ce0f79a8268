package render

import (
	"fmt"
	"math"

	"sensor-dashboard/src/models"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// -----------------------------------------------------------------------------
// Direction & colours
// -----------------------------------------------------------------------------

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

var (
	UpColor   = drawing.Color{R: 0, G: 0, B: 255, A: 255}
	DownColor = drawing.Color{R: 255, G: 0, B: 0, A: 255}
)

// DirectionOf is Up when the bucket closed at or above its opening value.
func DirectionOf(b models.MStatBucket) Direction {
	if b.First <= b.Last {
		return Up
	}
	return Down
}

// Color returns the draw colour of the direction.
func (d Direction) Color() drawing.Color {
	if d == Up {
		return UpColor
	}
	return DownColor
}

// Hex returns the colour as #rrggbb for html clients.
func (d Direction) Hex() string {
	c := d.Color()
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// -----------------------------------------------------------------------------
// Layout
// -----------------------------------------------------------------------------

// MaxBoxWidth caps the box width in pixels.
const MaxBoxWidth = 15.0

// Projection maps bucket indexes and values onto pixels.
type Projection interface {
	X(index int) int
	Y(value float64) int
	BucketWidth() float64
}

// Line is a vertical whisker.
type Line struct {
	X, Y0, Y1 int
}

// Rect is a filled box, Y0 above Y1 on screen.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Candle is the pixel geometry of one bucket.
type Candle struct {
	Index     int
	Direction Direction
	Whisker   Line
	Box       Rect
}

// Layout computes one candle per bucket, in index order.
func Layout(stats []models.MStatBucket, p Projection) []Candle {
	candles := make([]Candle, 0, len(stats))
	width := math.Min(p.BucketWidth()*0.8, MaxBoxWidth)
	w := int(math.Round(width))
	if w < 2 {
		w = 2
	}

	for i, s := range stats {
		x := p.X(i)
		top := min(p.Y(s.First), p.Y(s.Last))
		bottom := max(p.Y(s.First), p.Y(s.Last))
		if bottom-top < 1 {
			bottom = top + 1
		}

		x0 := x - w/2
		candles = append(candles, Candle{
			Index:     i,
			Direction: DirectionOf(s),
			Whisker:   Line{X: x, Y0: p.Y(s.Maximum), Y1: p.Y(s.Minimum)},
			Box:       Rect{X0: x0, Y0: top, X1: x0 + w, Y1: bottom},
		})
	}
	return candles
}

// -----------------------------------------------------------------------------
// Drawing
// -----------------------------------------------------------------------------

// Canvas is the minimal drawing surface a candle needs.
type Canvas interface {
	VLine(l Line, color drawing.Color, width float64)
	FillRect(r Rect, color drawing.Color)
}

// Draw paints each candle's whisker then its box.
func Draw(c Canvas, candles []Candle) {
	for _, cd := range candles {
		col := cd.Direction.Color()
		c.VLine(cd.Whisker, col, 1)
		c.FillRect(cd.Box, col)
	}
}

// -----------------------------------------------------------------------------

// PlotProjection is a fixed pixel projection over a plot area.
type PlotProjection struct {
	Left, Top, Right, Bottom int
	Count                    int
	Lower, Upper             float64
}

func (p PlotProjection) BucketWidth() float64 {
	if p.Count == 0 {
		return 0
	}
	return float64(p.Right-p.Left) / float64(p.Count)
}

func (p PlotProjection) X(index int) int {
	return p.Left + int(math.Round((float64(index)+0.5)*p.BucketWidth()))
}

func (p PlotProjection) Y(value float64) int {
	span := p.Upper - p.Lower
	if span == 0 {
		return p.Bottom
	}
	ratio := (value - p.Lower) / span
	return p.Bottom - int(math.Round(ratio*float64(p.Bottom-p.Top)))
}
