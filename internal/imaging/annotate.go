package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/mj1618/fiberscope/internal/model"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Region is a selected element to mark on a capture, in document
// coordinates.
type Region struct {
	Label  string
	Bounds model.Bounds
}

var (
	boxColor     = color.RGBA{R: 0, G: 153, B: 255, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// Annotate draws a box and label for every region onto a copy of img.
// origin is the document area img was captured from; region bounds are
// mapped into image pixels using the ratio of the two sizes.
func Annotate(img image.Image, origin model.Bounds, regions []Region) *image.RGBA {
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	xdraw.Draw(rgba, b, img, b.Min, xdraw.Src)
	scaleX, scaleY := 1.0, 1.0
	if origin.Width > 0 {
		scaleX = float64(b.Dx()) / origin.Width
	}
	if origin.Height > 0 {
		scaleY = float64(b.Dy()) / origin.Height
	}

	for _, r := range regions {
		x := b.Min.X + int((r.Bounds.X-origin.X)*scaleX)
		y := b.Min.Y + int((r.Bounds.Y-origin.Y)*scaleY)
		w := int(r.Bounds.Width * scaleX)
		h := int(r.Bounds.Height * scaleY)
		drawRectangle(rgba, x, y, x+w, y+h, boxColor)
		drawRectangle(rgba, x+1, y+1, x+w-1, y+h-1, boxColor)
		drawTextWithOutline(rgba, r.Label, x+4, y+4)
	}
	return rgba
}

// NumberedRegions labels bounds 1..n in order.
func NumberedRegions(bounds []model.Bounds) []Region {
	out := make([]Region, len(bounds))
	for i, b := range bounds {
		out[i] = Region{Label: fmt.Sprintf("%d", i+1), Bounds: b}
	}
	return out
}

func isWithinBounds(bounds image.Rectangle, x, y int) bool {
	return x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y
}

// drawRectangle draws a rectangle outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	bounds := img.Bounds()
	if x1 < bounds.Min.X {
		x1 = bounds.Min.X
	}
	if y1 < bounds.Min.Y {
		y1 = bounds.Min.Y
	}
	if x2 > bounds.Max.X {
		x2 = bounds.Max.X
	}
	if y2 > bounds.Max.Y {
		y2 = bounds.Max.Y
	}
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for x := x1; x < x2; x++ {
		if isWithinBounds(bounds, x, y1) {
			img.Set(x, y1, c)
		}
		if isWithinBounds(bounds, x, y2-1) {
			img.Set(x, y2-1, c)
		}
	}
	for y := y1; y < y2; y++ {
		if isWithinBounds(bounds, x1, y) {
			img.Set(x1, y, c)
		}
		if isWithinBounds(bounds, x2-1, y) {
			img.Set(x2-1, y, c)
		}
	}
}

// drawTextWithOutline draws text with its top-left corner at (x, y).
func drawTextWithOutline(img *image.RGBA, text string, x, y int) {
	// basicfont.Face7x13 has an ascent of 11 pixels
	baseline := y + 11
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d := &font.Drawer{
				Dst:  img,
				Src:  image.NewUniform(outlineColor),
				Face: basicfont.Face7x13,
				Dot:  fixed.P(x+dx, baseline+dy),
			}
			d.DrawString(text)
		}
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(textColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(text)
}
