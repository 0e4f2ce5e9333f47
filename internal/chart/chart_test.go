package chart

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2019, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestRender(t *testing.T) {
	t.Run("renders a single series as SVG", func(t *testing.T) {
		var buf bytes.Buffer

		err := Render(&buf, Series{
			Name: "total",
			Points: []Point{
				{Date: day(1), Value: 100},
				{Date: day(2), Value: 150},
				{Date: day(3), Value: 225},
			},
		})
		if err != nil {
			t.Fatalf("Render() unexpected error: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "<svg") {
			t.Errorf("output does not look like SVG: %.80s", out)
		}
	})

	t.Run("renders multiple series", func(t *testing.T) {
		var buf bytes.Buffer

		err := Render(&buf,
			Series{
				Name:   "total",
				Points: []Point{{Date: day(1), Value: 10}, {Date: day(2), Value: 20}},
			},
			Series{
				Name:   "en.wikipedia.org",
				Points: []Point{{Date: day(1), Value: 4}, {Date: day(2), Value: 9}},
			},
		)
		if err != nil {
			t.Fatalf("Render() unexpected error: %v", err)
		}
		if buf.Len() == 0 {
			t.Error("Render() produced empty output")
		}
	})

	t.Run("renders a single datapoint", func(t *testing.T) {
		var buf bytes.Buffer

		err := Render(&buf, Series{
			Name:   "total",
			Points: []Point{{Date: day(1), Value: 42}},
		})
		if err != nil {
			t.Fatalf("Render() unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "<svg") {
			t.Error("output does not look like SVG")
		}
	})

	t.Run("skips empty series but renders the rest", func(t *testing.T) {
		var buf bytes.Buffer

		err := Render(&buf,
			Series{
				Name:   "total",
				Points: []Point{{Date: day(1), Value: 10}, {Date: day(2), Value: 20}},
			},
			Series{Name: "absent.example.org"},
		)
		if err != nil {
			t.Fatalf("Render() unexpected error: %v", err)
		}
		if buf.Len() == 0 {
			t.Error("Render() produced empty output")
		}
	})

	t.Run("fails with no series", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf); err == nil {
			t.Error("Render() expected error, got nil")
		}
	})

	t.Run("fails when every series is empty", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Render(&buf, Series{Name: "total"}); err == nil {
			t.Error("Render() expected error, got nil")
		}
	})
}
