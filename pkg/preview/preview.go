package preview

import (
	"bytes"
	"fmt"
	"image"
	"regexp"

	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
	"github.com/fogleman/gg"
)

// FileName is the download name of a rendered preview.
const FileName = "image_with_grid.png"

// dash is the on/off pattern used for dashed lines, in pixels.
var dash = []float64{5, 5}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether c is a #rgb or #rrggbb colour.
func ValidColor(c string) bool {
	return hexColor.MatchString(c)
}

// Overlay describes the lines drawn on top of the source image.
type Overlay struct {
	Custom    bool
	Grid      split.Grid
	Lines     []split.Line
	ShowGrid  bool
	Confirmed bool

	// stroke used for uniform grid lines; custom lines carry their own
	Color  string
	Width  float64
	Dashed bool
}

// Visible reports whether the overlay draws anything at all. Grid lines
// stay hidden until the grid has been confirmed.
func (o Overlay) Visible() bool {
	if !o.ShowGrid {
		return false
	}
	return o.Custom || o.Confirmed
}

// Render draws src followed by the overlay on a fresh surface of the same size.
// The result depends only on its inputs.
func Render(src image.Image, o Overlay) image.Image {
	b := src.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(src, -b.Min.X, -b.Min.Y)

	if !o.Visible() {
		return dc.Image()
	}

	if !o.Custom {
		stroke(dc, o.Color, o.Width, o.Dashed)
		if o.Grid.Cols > 0 {
			cw := w / float64(o.Grid.Cols)
			for i := 1; i < o.Grid.Cols; i++ {
				x := float64(i) * cw
				dc.DrawLine(x, 0, x, h)
				dc.Stroke()
			}
		}
		if o.Grid.Rows > 0 {
			ch := h / float64(o.Grid.Rows)
			for i := 1; i < o.Grid.Rows; i++ {
				y := float64(i) * ch
				dc.DrawLine(0, y, w, y)
				dc.Stroke()
			}
		}
		return dc.Image()
	}

	for _, l := range o.Lines {
		stroke(dc, l.Color, l.Width, l.Style == split.Dashed)
		if l.Orientation == split.Horizontal {
			y := l.Position / 100 * h
			dc.DrawLine(0, y, w, y)
		} else {
			x := l.Position / 100 * w
			dc.DrawLine(x, 0, x, h)
		}
		dc.Stroke()
	}
	return dc.Image()
}

func stroke(dc *gg.Context, color string, width float64, dashed bool) {
	if !ValidColor(color) {
		color = "#ffffff"
	}
	if width <= 0 {
		width = 1
	}
	dc.SetHexColor(color)
	dc.SetLineWidth(width)
	if dashed {
		dc.SetDash(dash...)
	} else {
		dc.SetDash()
	}
}

// PNG renders the preview and encodes it.
func PNG(src image.Image, o Overlay) ([]byte, error) {
	var buf bytes.Buffer
	dc := gg.NewContextForImage(Render(src, o))
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}
	return buf.Bytes(), nil
}
