package charts

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

var (
	blueLight = color.RGBA{R: 247, G: 251, B: 255, A: 255}
	blueDark  = color.RGBA{R: 8, G: 48, B: 107, A: 255}
)

// blueScale maps t in [0, 1] from near-white to dark blue.
func blueScale(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	lerp := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + t*(float64(b)-float64(a))))
	}
	return color.RGBA{
		R: lerp(blueLight.R, blueDark.R),
		G: lerp(blueLight.G, blueDark.G),
		B: lerp(blueLight.B, blueDark.B),
		A: 255,
	}
}

// Heatmap draws an annotated matrix of counts on a blue scale. rows label
// the actual classes and cols the predicted ones.
func Heatmap(rows, cols []string, cells [][]int) ([]byte, error) {
	if len(rows) == 0 || len(cols) == 0 || len(cells) != len(rows) {
		return nil, ErrNoData
	}
	lo, hi := math.MaxInt, math.MinInt
	for i, r := range cells {
		if len(r) != len(cols) {
			return nil, fmt.Errorf("heatmap row %d has %d cells, want %d", i, len(r), len(cols))
		}
		for _, v := range r {
			lo, hi = min(lo, v), max(hi, v)
		}
	}

	cv := newCanvas(Height+Height/4, Height)
	const margin = 24
	labelW := cv.textWidth("Actual") + 8
	for _, r := range rows {
		labelW = max(labelW, cv.textWidth(r)+cv.textWidth("Actual")+16)
	}
	x0, y0 := margin+labelW, margin
	gridW := cv.img.Bounds().Dx() - x0 - margin
	gridH := Height - y0 - 3*margin
	cellW, cellH := gridW/len(cols), gridH/len(rows)

	for i, rowLabel := range rows {
		for j := range cols {
			v := cells[i][j]
			t := 0.0
			if hi > lo {
				t = float64(v-lo) / float64(hi-lo)
			}
			r := image.Rect(x0+j*cellW, y0+i*cellH, x0+(j+1)*cellW, y0+(i+1)*cellH)
			cv.fill(r, blueScale(t))

			ink := color.Color(color.Black)
			if t > 0.5 {
				ink = color.White
			}
			cv.centered((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2, fmt.Sprint(v), ink)
		}
		cv.text(x0-8-cv.textWidth(rowLabel), y0+i*cellH+cellH/2+cv.ascent()/2, rowLabel, color.Black)
	}
	for j, colLabel := range cols {
		cv.centered(x0+j*cellW+cellW/2, y0+gridH+margin/2, colLabel, color.Black)
	}
	cv.text(margin, y0+gridH/2+cv.ascent()/2, "Actual", color.Gray{Y: 90})
	cv.centered(x0+gridW/2, y0+gridH+margin+margin/2, "Predicted", color.Gray{Y: 90})
	return cv.encode()
}
