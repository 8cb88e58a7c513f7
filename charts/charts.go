// Package charts turns pipeline aggregates and the fixed model metrics into
// PNG images the dashboard embeds as data URIs.
package charts

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"image"
	"image/color"
	"io"
	"math"

	"churn-dashboard/pipeline"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	Width  = 720
	Height = 420
)

// ErrNoData is returned when an aggregate has nothing to draw.
var ErrNoData = errors.New("no data to chart")

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
}

func colorAt(i int) drawing.Color {
	return palette[i%len(palette)]
}

var chartPadding = chart.Style{Padding: chart.Box{Top: 24, Left: 16, Right: 24, Bottom: 16}}

// DataURI wraps PNG bytes so html/template emits them in an img src.
func DataURI(png []byte) template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
}

type renderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderPNG(r renderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Render draws one pipeline output with the chart its step declares.
func Render(out pipeline.Output) ([]byte, error) {
	if !out.Available() {
		return nil, ErrNoData
	}
	switch data := out.Data.(type) {
	case pipeline.Counts:
		switch out.Chart {
		case pipeline.HorizontalBar:
			return HorizontalBar(data)
		case pipeline.Pie:
			return Pie(data)
		default:
			return VerticalBar(data)
		}
	case pipeline.Distribution:
		return Histogram(data)
	case pipeline.ChurnShares:
		return StackedBar(data)
	case pipeline.PartnerChurnMeans:
		return GroupedBars(data)
	case pipeline.TenureMeans:
		return PointPlot(data)
	}
	return nil, fmt.Errorf("no renderer for %s chart of %T", out.Chart, out.Data)
}

// HorizontalBar draws one bar per label, largest first, counts at the bar ends.
func HorizontalBar(c pipeline.Counts) ([]byte, error) {
	if len(c.Labels) == 0 || c.Total() == 0 {
		return nil, ErrNoData
	}
	cv := newCanvas(Width, Height)
	const margin = 24

	labelW := 0
	for _, l := range c.Labels {
		labelW = max(labelW, cv.textWidth(l))
	}
	peak := 0
	for _, n := range c.Counts {
		peak = max(peak, n)
	}
	countW := cv.textWidth(fmt.Sprint(peak)) + 8

	x0 := margin + labelW + 10
	x1 := Width - margin - countW
	rowH := (Height - 2*margin) / len(c.Labels)
	barH := max(1, rowH*6/10)
	axis := color.Gray{Y: 90}

	for i, label := range c.Labels {
		top := margin + i*rowH + (rowH-barH)/2
		mid := top + barH/2
		w := int(math.Round(float64(x1-x0) * float64(c.Counts[i]) / float64(peak)))

		cv.fill(image.Rect(x0, top, x0+w, top+barH), colorAt(i))
		cv.text(x0-10-cv.textWidth(label), mid+cv.ascent()/2, label, color.Black)
		cv.text(x0+w+6, mid+cv.ascent()/2, fmt.Sprint(c.Counts[i]), axis)
	}
	cv.fill(image.Rect(x0-1, margin, x0, Height-margin), axis)
	cv.fill(image.Rect(x0, Height-margin, x1, Height-margin+1), axis)
	cv.text(x1-cv.textWidth("Count"), Height-margin+cv.ascent()+4, "Count", axis)
	return cv.encode()
}

// Histogram draws the bins as a filled step outline with the scaled density
// curve on top.
func Histogram(d pipeline.Distribution) ([]byte, error) {
	if d.N == 0 || len(d.Bins) == 0 {
		return nil, ErrNoData
	}
	xs := make([]float64, 0, 4*len(d.Bins))
	ys := make([]float64, 0, 4*len(d.Bins))
	top := 0.0
	for _, b := range d.Bins {
		n := float64(b.Count)
		xs = append(xs, b.Lo, b.Lo, b.Hi, b.Hi)
		ys = append(ys, 0, n, n, 0)
		top = math.Max(top, n)
	}
	series := []chart.Series{
		chart.ContinuousSeries{
			Name: "Count",
			Style: chart.Style{
				StrokeColor: colorAt(0),
				StrokeWidth: 1,
				FillColor:   colorAt(0).WithAlpha(140),
			},
			XValues: xs,
			YValues: ys,
		},
	}
	if len(d.Density) > 0 {
		dx := make([]float64, len(d.Density))
		dy := make([]float64, len(d.Density))
		for i, p := range d.Density {
			dx[i], dy[i] = p.X, p.Y
			top = math.Max(top, p.Y)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    "Density",
			Style:   chart.Style{StrokeColor: colorAt(1), StrokeWidth: 2},
			XValues: dx,
			YValues: dy,
		})
	}

	ch := chart.Chart{
		Width:      Width,
		Height:     Height,
		Background: chartPadding,
		XAxis: chart.XAxis{
			Name:  string(d.Field),
			Range: &chart.ContinuousRange{Min: d.Bins[0].Lo, Max: d.Bins[len(d.Bins)-1].Hi},
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	return renderPNG(ch)
}

// Pie labels each slice with its name and whole-number percentage.
func Pie(c pipeline.Counts) ([]byte, error) {
	if c.Total() == 0 {
		return nil, ErrNoData
	}
	pct := c.Percentages()
	values := make([]chart.Value, 0, len(c.Labels))
	for i, label := range c.Labels {
		if c.Counts[i] == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %s", label, pct[i]),
			Value: float64(c.Counts[i]),
			Style: chart.Style{FillColor: colorAt(i), StrokeColor: drawing.ColorWhite},
		})
	}
	return renderPNG(chart.PieChart{
		Width:  Height,
		Height: Height,
		Values: values,
	})
}

// VerticalBar draws one column per label in count order.
func VerticalBar(c pipeline.Counts) ([]byte, error) {
	if len(c.Labels) == 0 || c.Total() == 0 {
		return nil, ErrNoData
	}
	bars := make([]chart.Value, len(c.Labels))
	peak := 0
	for i, label := range c.Labels {
		bars[i] = chart.Value{
			Label: label,
			Value: float64(c.Counts[i]),
			Style: chart.Style{FillColor: colorAt(i), StrokeColor: colorAt(i)},
		}
		peak = max(peak, c.Counts[i])
	}
	return renderPNG(chart.BarChart{
		Width:      Width,
		Height:     Height,
		Background: chartPadding,
		BarWidth:   Width / (2 * len(bars)),
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(peak) * 1.1},
		},
		Bars: bars,
	})
}

// StackedBar draws one bar per payment method split into churn class shares,
// with a churn key beside it.
func StackedBar(s pipeline.ChurnShares) ([]byte, error) {
	if len(s.Groups) == 0 || len(s.Classes) == 0 {
		return nil, ErrNoData
	}
	bars := make([]chart.StackedBar, len(s.Groups))
	for i, group := range s.Groups {
		values := make([]chart.Value, len(s.Classes))
		for j, class := range s.Classes {
			values[j] = chart.Value{
				Label: fmt.Sprintf("Churn %s", class),
				Value: 100 * s.Shares[i][j],
				Style: chart.Style{FillColor: colorAt(j), StrokeColor: drawing.ColorWhite},
			}
		}
		bars[i] = chart.StackedBar{Name: group, Values: values}
	}
	figure, err := renderPNG(chart.StackedBarChart{
		Width:      Width + Width/3,
		Height:     Height,
		Background: chartPadding,
		BarSpacing: 40,
		Bars:       bars,
	})
	if err != nil {
		return nil, err
	}
	key, err := legendPanel("Churn", churnKey(s.Classes), Height)
	if err != nil {
		return nil, err
	}
	return sideBySide(figure, key)
}

// churnKey pairs each churn class with its colour in class order.
func churnKey(classes []string) []legendEntry {
	entries := make([]legendEntry, len(classes))
	for i, c := range classes {
		entries[i] = legendEntry{Label: c, Color: colorAt(i)}
	}
	return entries
}

// noBar keeps a category's slot on the axis without drawing anything.
var noBar = chart.Style{
	FillColor:   drawing.Color{R: 255, G: 255, B: 255, A: 0},
	StrokeColor: drawing.Color{R: 255, G: 255, B: 255, A: 0},
}

// groupBars builds one panel's bars. Groups whose mean is not valid keep
// their label but draw no bar. valid counts the drawn bars.
func groupBars(p pipeline.PartnerChurnMeans, value func(pipeline.PartnerChurnMean) (float64, bool)) (bars []chart.Value, top float64, valid int) {
	classes := p.ChurnClasses()
	classColor := func(churn string) drawing.Color {
		for i, c := range classes {
			if c == churn {
				return colorAt(i)
			}
		}
		return colorAt(0)
	}

	bars = make([]chart.Value, 0, len(p.Rows))
	for _, row := range p.Rows {
		label := fmt.Sprintf("P:%s C:%s", row.Partner, row.Churn)
		v, ok := value(row)
		if !ok {
			bars = append(bars, chart.Value{Label: label, Style: noBar})
			continue
		}
		bars = append(bars, chart.Value{
			Label: label,
			Value: v,
			Style: chart.Style{FillColor: classColor(row.Churn), StrokeColor: classColor(row.Churn)},
		})
		top = math.Max(top, v)
		valid++
	}
	return bars, top, valid
}

// GroupedBars draws mean tenure and mean monthly charges per (Partner, Churn)
// group as two bar panels in one figure. Bars are coloured by churn class and
// a churn key closes the figure.
func GroupedBars(p pipeline.PartnerChurnMeans) ([]byte, error) {
	tenureBars, tenureTop, tenureValid := groupBars(p, func(r pipeline.PartnerChurnMean) (float64, bool) {
		return r.MeanTenure, r.TenureValid
	})
	monthlyBars, monthlyTop, monthlyValid := groupBars(p, func(r pipeline.PartnerChurnMean) (float64, bool) {
		return r.MeanMonthlyCharges, r.MonthlyValid
	})
	if tenureValid == 0 && monthlyValid == 0 {
		return nil, ErrNoData
	}

	panel := func(title string, bars []chart.Value, top float64) ([]byte, error) {
		if top <= 0 {
			top = 1
		}
		return renderPNG(chart.BarChart{
			Title:      title,
			Width:      Width,
			Height:     Height,
			Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 24, Bottom: 16}},
			BarWidth:   Width / (2 * len(bars)),
			YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1}},
			Bars:       bars,
		})
	}

	tenure, err := panel("Mean Tenure_Months", tenureBars, tenureTop)
	if err != nil {
		return nil, err
	}
	monthly, err := panel("Mean Monthly_Charges", monthlyBars, monthlyTop)
	if err != nil {
		return nil, err
	}
	key, err := legendPanel("Churn", churnKey(p.ChurnClasses()), Height)
	if err != nil {
		return nil, err
	}
	return sideBySide(tenure, monthly, key)
}

// PointPlot draws mean Total_Charges per tenure bucket as connected points.
// Buckets with no Total_Charges are left out of the line.
func PointPlot(t pipeline.TenureMeans) ([]byte, error) {
	var xs, ys []float64
	for _, p := range t.Points {
		if p.Valid {
			xs = append(xs, p.Tenure)
			ys = append(ys, p.Mean)
		}
	}
	if len(xs) == 0 {
		return nil, ErrNoData
	}
	xMin, xMax := xs[0], xs[len(xs)-1]
	if xMin == xMax {
		xMin, xMax = xMin-1, xMax+1
	}
	yMax := 0.0
	for _, y := range ys {
		yMax = math.Max(yMax, y)
	}
	if yMax <= 0 {
		yMax = 1
	}

	return renderPNG(chart.Chart{
		Width:      Width,
		Height:     Height,
		Background: chartPadding,
		XAxis: chart.XAxis{
			Name:  "Tenure_Months",
			Range: &chart.ContinuousRange{Min: xMin, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  "Mean Total_Charges",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax * 1.1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeColor: colorAt(0),
					StrokeWidth: 2,
					DotColor:    colorAt(0),
					DotWidth:    5,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	})
}
