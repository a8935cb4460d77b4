package report

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/couchcryptid/flood-risk-etl/internal/domain"
)

// Figure size; the panels are stacked vertically on one page.
const (
	figWidth  = 12 * vg.Inch
	figHeight = 16 * vg.Inch
	numPanels = 5
)

var (
	colorRain       = rgb(0x1f77b4)
	colorSoil       = rgb(0x8b4513)
	colorDischarge  = rgb(0x17becf)
	colorEFD        = rgb(0xd62728)
	colorCFL        = rgb(0xff7f0e)
	colorPSe        = rgb(0x9467bd)
	colorMultiplier = rgb(0x2ca02c)
	colorThreshold  = rgb(0xe74c3c)
	colorBaseline   = rgb(0x808080)
)

func rgb(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

func translucent(c color.RGBA, alpha uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}

// stateColor converts a risk state's "#rrggbb" colour.
func stateColor(s domain.RiskState) color.RGBA {
	v, err := strconv.ParseUint(strings.TrimPrefix(s.Color(), "#"), 16, 32)
	if err != nil {
		return rgb(0x000000)
	}
	return rgb(uint32(v))
}

// WriteFigure renders the five-panel analysis of a as a PNG: hourly inputs
// with EFD, cumulative CFL, daily PSe, the risk state band and the risk
// multiplier. Days share one x axis; an hour is placed inside the column of
// its own calendar day, so omitted days do not leave gaps.
func WriteFigure(w io.Writer, a domain.Assessment) error {
	plots, err := figurePlots(a)
	if err != nil {
		return err
	}

	img := vgimg.New(figWidth, figHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      numPanels,
		Cols:      1,
		PadY:      6 * vg.Millimeter,
		PadTop:    4 * vg.Millimeter,
		PadBottom: 4 * vg.Millimeter,
		PadLeft:   4 * vg.Millimeter,
		PadRight:  6 * vg.Millimeter,
	}

	grid := make([][]*plot.Plot, len(plots))
	for i, p := range plots {
		grid[i] = []*plot.Plot{p}
	}
	canvases := plot.Align(grid, tiles, dc)
	for i, p := range plots {
		p.Draw(canvases[i][0])
	}

	png := vgimg.PngCanvas{Canvas: img}
	_, err = png.WriteTo(w)
	return err
}

// figurePlots builds one plot per panel, top to bottom.
func figurePlots(a domain.Assessment) ([]*plot.Plot, error) {
	f := newFigure(a)
	th := a.Thresholds
	panels := [numPanels]struct {
		title string
		build func(*plot.Plot) error
	}{
		{"Panel 1: Hourly Inputs and EFD", f.timeline},
		{"Panel 2: Cumulative Flood Load (CFL)", f.cumulativeCFL},
		{"Panel 3: Daily Persistent Saturation Excess (PSe)", f.dailyPSe},
		{"Panel 4: Daily Risk State", f.riskBand},
		{fmt.Sprintf("Panel 5: Risk Multiplier [1 + CFL/%g + PSe/%g + streak x %g]",
			th.StrainingCFL, th.StrainingPSe, th.StreakWeight), f.multiplier},
	}

	plots := make([]*plot.Plot, 0, numPanels)
	for i, panel := range panels {
		p := plot.New()
		p.Title.Text = panel.title
		if i == 0 && a.Name != "" {
			p.Title.Text = a.Name + ": Inland / Pluvial + Riverine Flood Risk\n" + panel.title
		}
		p.X.Min, p.X.Max = 0, f.days()
		p.X.Tick.Marker = dayTicks(a.Days)
		p.Y.Min = 0
		p.Legend.Top = true
		p.Add(plotter.NewGrid())

		if len(a.Days) == 0 {
			p.Title.Text += " (no data)"
		} else if err := panel.build(p); err != nil {
			return nil, fmt.Errorf("figure panel %d: %w", i+1, err)
		}
		plots = append(plots, p)
	}
	return plots, nil
}

type figure struct {
	a      domain.Assessment
	dayIdx map[domain.Date]int
}

func newFigure(a domain.Assessment) *figure {
	idx := make(map[domain.Date]int, len(a.Days))
	for i, d := range a.Days {
		idx[d.Date] = i
	}
	return &figure{a: a, dayIdx: idx}
}

func (f *figure) days() float64 { return float64(max(len(f.a.Days), 1)) }

// hourPos is the x position of t in days from the first plotted day.
func (f *figure) hourPos(t time.Time) float64 {
	frac := (float64(t.Hour()) + float64(t.Minute())/60) / 24
	return float64(f.dayIdx[domain.DayOf(t)]) + frac
}

// dayTicks labels the centre of each day column, thinned to about ten labels.
type dayTicks []domain.DailyRecord

func (d dayTicks) Ticks(_, _ float64) []plot.Tick {
	step := max(1, int(math.Ceil(float64(len(d))/10)))
	ticks := make([]plot.Tick, len(d))
	for i, day := range d {
		ticks[i] = plot.Tick{Value: float64(i) + 0.5}
		if i%step == 0 {
			ticks[i].Label = day.Date.Time().Format("Jan 02")
		}
	}
	return ticks
}

// swatch is a solid legend entry.
type swatch struct{ c color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.c, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}

func addLine(p *plot.Plot, name string, xys plotter.XYs, c color.Color, width vg.Length, fill color.Color) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	l.Color = c
	l.Width = width
	l.FillColor = fill
	p.Add(l)
	if name != "" {
		p.Legend.Add(name, l)
	}
	return nil
}

// addRect fills the data-space rectangle [x0,x1] x [y0,y1].
func addRect(p *plot.Plot, x0, x1, y0, y1 float64, c color.Color) error {
	poly, err := plotter.NewPolygon(plotter.XYs{{X: x0, Y: y0}, {X: x0, Y: y1}, {X: x1, Y: y1}, {X: x1, Y: y0}})
	if err != nil {
		return err
	}
	poly.Color = c
	poly.LineStyle.Width = 0
	p.Add(poly)
	return nil
}

func addHLine(p *plot.Plot, name string, v float64, c color.Color) {
	fn := plotter.NewFunction(func(float64) float64 { return v })
	fn.XMin, fn.XMax = p.X.Min, p.X.Max
	fn.Color = c
	fn.Width = vg.Points(1)
	fn.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	p.Add(fn)
	if name != "" {
		p.Legend.Add(name, fn)
	}
}

func (f *figure) timeline(p *plot.Plot) error {
	hours := f.a.Hours
	var peak, qMax float64
	for _, h := range hours {
		peak = max(peak, h.RainfallMM, h.EFD)
		qMax = max(qMax, h.RiverDischargeM3S)
	}
	peak = max(peak, 1)
	qMax = max(qMax, 1)

	rain := make(plotter.XYs, len(hours))
	efd := make(plotter.XYs, len(hours))
	soil := make(plotter.XYs, len(hours))
	flow := make(plotter.XYs, len(hours))
	for i, h := range hours {
		x := f.hourPos(h.Timestamp)
		rain[i] = plotter.XY{X: x, Y: h.RainfallMM}
		efd[i] = plotter.XY{X: x, Y: h.EFD}
		soil[i] = plotter.XY{X: x, Y: h.SoilMoisture * peak}
		flow[i] = plotter.XY{X: x, Y: h.RiverDischargeM3S / qMax * peak}
	}

	p.Y.Label.Text = "Rainfall mm / EFD"
	p.Y.Max = peak * 1.05
	if err := addLine(p, "Rainfall mm/hr", rain, colorRain, vg.Points(0.5), translucent(colorRain, 140)); err != nil {
		return err
	}
	if err := addLine(p, "Soil moisture (0-1, scaled)", soil, colorSoil, vg.Points(1.4), nil); err != nil {
		return err
	}
	if err := addLine(p, fmt.Sprintf("Discharge (scaled, max %.1f m3/s)", qMax), flow, colorDischarge, vg.Points(1.2), nil); err != nil {
		return err
	}
	return addLine(p, "EFD", efd, colorEFD, vg.Points(1), nil)
}

func (f *figure) cumulativeCFL(p *plot.Plot) error {
	days := f.a.Days
	pts := make(plotter.XYs, len(days))
	for i, d := range days {
		pts[i] = plotter.XY{X: float64(i) + 0.5, Y: d.CumulativeCFL}
	}
	p.Y.Label.Text = "Cumulative CFL"
	p.Y.Max = max(days[len(days)-1].CumulativeCFL*1.05, 1)
	return addLine(p, "", pts, colorCFL, vg.Points(2), translucent(colorCFL, 40))
}

func (f *figure) dailyPSe(p *plot.Plot) error {
	th := f.a.Thresholds.SaturatedDailyPSe
	vmax := th
	for i, d := range f.a.Days {
		vmax = max(vmax, d.DailyPSe)
		if d.DailyPSe <= 0 {
			continue
		}
		if err := addRect(p, float64(i)+0.1, float64(i)+0.9, 0, d.DailyPSe, translucent(colorPSe, 190)); err != nil {
			return err
		}
	}
	p.Y.Label.Text = "Daily PSe"
	p.Y.Max = vmax * 1.1
	p.Legend.Add("Daily PSe", swatch{translucent(colorPSe, 190)})
	addHLine(p, fmt.Sprintf("Saturated threshold (%g)", th), th, colorThreshold)
	return nil
}

func (f *figure) riskBand(p *plot.Plot) error {
	for i, d := range f.a.Days {
		if err := addRect(p, float64(i), float64(i+1), 0, 1, stateColor(d.RiskState)); err != nil {
			return err
		}
	}
	p.Y.Max = 1.4
	p.HideY()
	for _, s := range []domain.RiskState{domain.Stable, domain.Straining, domain.Failure} {
		p.Legend.Add(s.String(), swatch{stateColor(s)})
	}
	return nil
}

func (f *figure) multiplier(p *plot.Plot) error {
	days := f.a.Days
	vmax := 1.0
	pts := make(plotter.XYs, len(days))
	for i, d := range days {
		vmax = max(vmax, d.RiskMultiplier)
		pts[i] = plotter.XY{X: float64(i) + 0.5, Y: d.RiskMultiplier}
	}
	p.Y.Label.Text = "Risk Multiplier"
	p.Y.Max = vmax * 1.1
	addHLine(p, "Baseline (1.0)", 1, colorBaseline)
	return addLine(p, "", pts, colorMultiplier, vg.Points(2), translucent(colorMultiplier, 40))
}
