// Package chart renders report series as PNG line plots (gonum/plot) and as
// standalone HTML pages (go-echarts).
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"ballcam-analyzer/internal/replay"
	"ballcam-analyzer/internal/report"
)

// Padding is added on both sides of the date axis.
const Padding = 14 * 24 * time.Hour

// ErrEmpty is returned when a chart has nothing to draw.
var ErrEmpty = errors.New("chart has no points")

var (
	selfColor    = color.RGBA{B: 255, A: 255}
	othersColor  = color.RGBA{R: 255, A: 255}
	averageColor = color.RGBA{G: 160, A: 255}
)

// Options control rendering.
type Options struct {
	// SelfLabel names the target player's series in the legend.
	SelfLabel string
	// Window is the moving average window over the target's series. Zero
	// disables it.
	Window int
}

// DefaultOptions match the standard report.
func DefaultOptions() Options {
	return Options{SelfLabel: "self", Window: report.DefaultWindow}
}

// xRange returns the padded date range covering every point.
func xRange(s report.SeriesSet) (time.Time, time.Time, bool) {
	var lo, hi time.Time
	found := false
	for _, pts := range [][]report.Point{s.Self, s.Others} {
		for _, p := range pts {
			if !found || p.Date.Before(lo) {
				lo = p.Date
			}
			if !found || p.Date.After(hi) {
				hi = p.Date
			}
			found = true
		}
	}
	return lo.Add(-Padding), hi.Add(Padding), found
}

func toXYs(pts []report.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i] = plotter.XY{X: float64(p.Date.Unix()), Y: p.Value}
	}
	return xys
}

// addLinePoints draws pts as a line with point markers.
func addLinePoints(p *plot.Plot, name string, pts []report.Point, c color.Color) error {
	if len(pts) == 0 {
		return nil
	}
	line, scatter, err := plotter.NewLinePoints(toXYs(pts))
	if err != nil {
		return fmt.Errorf("failed to create %s series: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(1)
	scatter.Color = c
	scatter.Shape = draw.CircleGlyph{}
	scatter.Radius = vg.Points(2)
	p.Add(line, scatter)
	p.Legend.Add(name, line, scatter)
	return nil
}

// RenderPNG writes c as a PNG file of the given size in inches.
func RenderPNG(c report.Chart, o Options, path string, width, height float64) error {
	lo, hi, ok := xRange(c.Series)
	if !ok {
		return ErrEmpty
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "% ballcam"
	p.X.Tick.Marker = plot.TimeTicks{Format: replay.DateLayout}
	p.X.Min = float64(lo.Unix())
	p.X.Max = float64(hi.Unix())
	p.Y.Min = 0
	p.Y.Max = 100
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	if err := addLinePoints(p, o.SelfLabel, c.Series.Self, selfColor); err != nil {
		return err
	}
	if err := addLinePoints(p, "others", c.Series.Others, othersColor); err != nil {
		return err
	}
	if avg := report.MovingAverage(c.Series.Self, o.Window); len(avg) > 0 {
		line, err := plotter.NewLine(toXYs(avg))
		if err != nil {
			return fmt.Errorf("failed to create average series: %w", err)
		}
		line.Color = averageColor
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%d-game average", o.Window), line)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	if err := p.Save(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func lineData(pts []report.Point) []opts.LineData {
	data := make([]opts.LineData, len(pts))
	for i, p := range pts {
		data[i] = opts.LineData{Value: []interface{}{p.Date.Format(replay.DateLayout), p.Value}}
	}
	return data
}

// RenderHTML writes c as a self-contained interactive HTML page.
func RenderHTML(c report.Chart, o Options, path string) error {
	lo, hi, ok := xRange(c.Series)
	if !ok {
		return ErrEmpty
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: c.Title, Width: "1200px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: c.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
			Name: "Date",
			Min:  lo.Format(replay.DateLayout),
			Max:  hi.Format(replay.DateLayout),
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "% ballcam", Min: 0, Max: 100}),
	)

	if len(c.Series.Self) > 0 {
		line.AddSeries(o.SelfLabel, lineData(c.Series.Self),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "blue"}),
		)
	}
	if len(c.Series.Others) > 0 {
		line.AddSeries("others", lineData(c.Series.Others),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "red"}),
		)
	}
	if avg := report.MovingAverage(c.Series.Self, o.Window); len(avg) > 0 {
		line.AddSeries(fmt.Sprintf("%d-game average", o.Window), lineData(avg),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "green"}),
		)
	}

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", c.Name, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// RenderAll writes every chart into dir as <name>.png and <name>.html and
// returns the written paths. Empty charts are skipped.
func RenderAll(cs []report.Chart, o Options, dir string) ([]string, error) {
	var written []string
	for _, c := range cs {
		png := filepath.Join(dir, c.Name+".png")
		if err := RenderPNG(c, o, png, 12, 6); err != nil {
			if errors.Is(err, ErrEmpty) {
				continue
			}
			return written, err
		}
		html := filepath.Join(dir, c.Name+".html")
		if err := RenderHTML(c, o, html); err != nil {
			return append(written, png), err
		}
		written = append(written, png, html)
	}
	return written, nil
}
