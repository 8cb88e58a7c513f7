package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// canvas is a plain RGBA surface for the figures go-chart has no type for.
type canvas struct {
	img  *image.RGBA
	face font.Face
}

func newCanvas(w, h int) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return &canvas{img: img, face: basicfont.Face7x13}
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *canvas) textWidth(s string) int {
	d := &font.Drawer{Face: c.face}
	return d.MeasureString(s).Ceil()
}

func (c *canvas) ascent() int {
	return c.face.Metrics().Ascent.Ceil()
}

// text draws s with its baseline at y.
func (c *canvas) text(x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

// centered draws s centred on (cx, cy).
func (c *canvas) centered(cx, cy int, s string, col color.Color) {
	c.text(cx-c.textWidth(s)/2, cy+c.ascent()/2, s, col)
}

func (c *canvas) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// sideBySide joins PNG panels horizontally into one figure.
func sideBySide(panels ...[]byte) ([]byte, error) {
	imgs := make([]image.Image, 0, len(panels))
	width, height := 0, 0
	for _, p := range panels {
		img, err := png.Decode(bytes.NewReader(p))
		if err != nil {
			return nil, fmt.Errorf("decode panel: %w", err)
		}
		b := img.Bounds()
		width += b.Dx()
		height = max(height, b.Dy())
		imgs = append(imgs, img)
	}

	c := newCanvas(width, height)
	x := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Draw(c.img, image.Rect(x, 0, x+b.Dx(), b.Dy()), img, b.Min, draw.Src)
		x += b.Dx()
	}
	return c.encode()
}

// legendEntry is one colour swatch of a legend key.
type legendEntry struct {
	Label string
	Color color.Color
}

const (
	legendPad    = 8
	legendSwatch = 10
	legendTop    = 24
)

func legendLine(face font.Face) int {
	return face.Metrics().Height.Ceil() + 4
}

// legendSwatchRect is where entry i's swatch sits in a legend panel.
func legendSwatchRect(face font.Face, i int) image.Rectangle {
	baseline := legendTop + legendPad + face.Metrics().Ascent.Ceil() + (i+1)*legendLine(face)
	return image.Rect(legendPad, baseline-legendSwatch, legendPad+legendSwatch, baseline)
}

// legendPanel draws a titled colour key as a narrow panel to set beside a
// figure with sideBySide.
func legendPanel(title string, entries []legendEntry, height int) ([]byte, error) {
	measure := newCanvas(1, 1)
	w := measure.textWidth(title)
	for _, e := range entries {
		w = max(w, legendSwatch+legendPad+measure.textWidth(e.Label))
	}

	c := newCanvas(w+3*legendPad, height)
	boxH := 2*legendPad + (len(entries)+1)*legendLine(c.face)
	box := image.Rect(legendPad/2, legendTop, c.img.Bounds().Dx()-legendPad/2, legendTop+boxH)
	c.fill(box, color.Gray{Y: 200})
	c.fill(box.Inset(1), color.White)

	c.text(legendPad, legendTop+legendPad+c.ascent(), title, color.Black)
	for i, e := range entries {
		sw := legendSwatchRect(c.face, i)
		c.fill(sw, e.Color)
		c.text(sw.Max.X+legendPad, sw.Max.Y, e.Label, color.Black)
	}
	return c.encode()
}
