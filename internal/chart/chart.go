// Package chart renders the trend charts served at /chart.svg as SVG
// documents.
package chart

import (
	"errors"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	width  = 900
	height = 300

	// yHeadroom pads the y-range above the tallest point so the line never
	// touches the top edge.
	yHeadroom = 1.05
)

// Point is one datapoint of a series.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is one named line on the chart.
type Series struct {
	Name   string
	Points []Point
}

// palette assigns line colors in series order: total first (blue), then the
// optional per-domain series (green).
var palette = []drawing.Color{
	gochart.ColorBlue,
	gochart.ColorGreen,
	gochart.ColorOrange,
}

// Render draws a line chart of the given series to w as SVG. At least one
// series with at least one point is required.
func Render(w io.Writer, series ...Series) error {
	if len(series) == 0 {
		return errors.New("chart: no series to render")
	}

	var max float64
	var lines []gochart.Series
	for i, s := range series {
		if len(s.Points) == 0 {
			continue
		}

		points := s.Points
		// go-chart needs a nonzero x-range to draw a line. A lone point gets
		// a synthetic partner half a day earlier at the same value, so the
		// first published dump renders as a short flat segment.
		if len(points) == 1 {
			points = []Point{
				{Date: points[0].Date.Add(-12 * time.Hour), Value: points[0].Value},
				points[0],
			}
		}

		xs := make([]time.Time, len(points))
		ys := make([]float64, len(points))
		for j, p := range points {
			xs[j] = p.Date
			ys[j] = p.Value
			if p.Value > max {
				max = p.Value
			}
		}

		lines = append(lines, gochart.TimeSeries{
			Name: s.Name,
			Style: gochart.Style{
				StrokeColor: palette[i%len(palette)],
				StrokeWidth: 2.0,
			},
			XValues: xs,
			YValues: ys,
		})
	}

	if len(lines) == 0 {
		return errors.New("chart: no datapoints to render")
	}
	if max <= 0 {
		max = 1
	}

	graph := gochart.Chart{
		Width:  width,
		Height: height,
		XAxis: gochart.XAxis{
			Name:           "Date",
			ValueFormatter: gochart.TimeDateValueFormatter,
		},
		YAxis: gochart.YAxis{
			Name: "Shortened URLs",
			Range: &gochart.ContinuousRange{
				Min: 0,
				Max: max * yHeadroom,
			},
		},
		Series: lines,
	}

	return graph.Render(gochart.SVG, w)
}
