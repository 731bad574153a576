package split

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
)

// MaxGridSize caps rows and columns offered to users.
const MaxGridSize = 10

var (
	ErrInvalidGrid = errors.New("grid rows and cols must be at least 1")
	ErrEmptyImage  = errors.New("image has no pixels")
)

type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(s) {
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	}
	return "", fmt.Errorf("unknown orientation %q", s)
}

type Style string

const (
	Solid  Style = "solid"
	Dashed Style = "dashed"
)

func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(s)) {
	case Solid, "":
		return Solid, nil
	case Dashed:
		return Dashed, nil
	}
	return "", fmt.Errorf("unknown line style %q", s)
}

// Line is a custom split boundary. Position is a percentage (0..100)
// of the image height for horizontal lines and of the width for vertical ones.
type Line struct {
	Orientation Orientation `json:"type"`
	Position    float64     `json:"position"`
	Color       string      `json:"color"`
	Width       float64     `json:"width"`
	Style       Style       `json:"style"`
}

type Grid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

func (g Grid) Validate() error {
	if g.Rows < 1 || g.Cols < 1 {
		return ErrInvalidGrid
	}
	return nil
}

// Rect is an axis-aligned rectangle in floating point pixel units.
type Rect struct {
	X, Y, W, H float64
}

// Cell is one partition slot before any pixels are copied. Rect is the exact
// geometry, Bounds the same area snapped to whole pixels.
type Cell struct {
	Row    int
	Col    int
	Rect   Rect
	Bounds image.Rectangle
}

// snap rounds the edges x0..x1 and y0..y1 independently. Neighbouring cells are
// built from the same edge values, so they share their snapped edge as well.
func snap(x0, y0, x1, y1 float64) image.Rectangle {
	return image.Rect(
		int(math.Round(x0)),
		int(math.Round(y0)),
		int(math.Round(x1)),
		int(math.Round(y1)),
	)
}

// Tile is the encoded content of a Cell.
type Tile struct {
	Row      int             `json:"row"`
	Col      int             `json:"col"`
	Bounds   image.Rectangle `json:"-"`
	Data     []byte          `json:"-"`
	Selected bool            `json:"selected"`
}

// Empty reports whether the tile covers no pixels.
func (t Tile) Empty() bool {
	return len(t.Data) == 0
}
