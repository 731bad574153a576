package editor

import (
	"errors"
	"fmt"
	"image"

	"github.com/PhantomInTheWire/image-toolbox/pkg/preview"
	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
	"github.com/allape/gogger"
)

var l = gogger.New("editor")

var (
	ErrNoImage   = errors.New("no image loaded")
	ErrWrongMode = errors.New("operation not available in this mode")
	ErrTileIndex = errors.New("tile index out of range")
	ErrGridSize  = fmt.Errorf("grid rows and cols must be between 1 and %d", split.MaxGridSize)
	ErrStyle     = errors.New("invalid line style")
)

type Mode string

const (
	GridMode   Mode = "grid"
	CustomMode Mode = "custom"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case GridMode, CustomMode:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown split mode %q", s)
}

// Style is the stroke applied to newly drawn lines and to grid lines.
type Style struct {
	Color  string  `json:"color"`
	Width  float64 `json:"width"`
	Dashed bool    `json:"dashed"`
}

func (s Style) LineStyle() split.Style {
	if s.Dashed {
		return split.Dashed
	}
	return split.Solid
}

func (s Style) Validate() error {
	if !preview.ValidColor(s.Color) || s.Width <= 0 {
		return ErrStyle
	}
	return nil
}

var (
	DefaultGrid  = split.Grid{Rows: 3, Cols: 3}
	DefaultStyle = Style{Color: "#ffffff", Width: 1}
)

// Editor holds the complete state of one split session. It is not safe for
// concurrent use; a single owner feeds it events.
type Editor struct {
	name   string
	source image.Image

	mode        Mode
	grid        split.Grid
	lines       []split.Line
	orientation split.Orientation
	style       Style
	showGrid    bool
	confirmed   bool

	previewVisible bool
	tiles          []split.Tile
}

func New() *Editor {
	return &Editor{
		mode:        GridMode,
		grid:        DefaultGrid,
		orientation: split.Horizontal,
		style:       DefaultStyle,
		showGrid:    true,
	}
}

// Load replaces the source image. Existing tiles are discarded; custom lines
// are relative and carry over to the new image.
func (e *Editor) Load(name string, img image.Image) error {
	if img == nil {
		return ErrNoImage
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return split.ErrEmptyImage
	}
	e.name = name
	e.source = img
	e.tiles = nil
	e.previewVisible = true
	l.Verbose().Println("loaded", name, b.Dx(), "x", b.Dy())
	return nil
}

// PointerDown commits a line of the active orientation at image pixel (x, y).
func (e *Editor) PointerDown(x, y float64) error {
	if e.mode != CustomMode {
		return ErrWrongMode
	}
	fx, fy, err := e.fraction(x, y)
	if err != nil {
		return err
	}
	pos := fy
	if e.orientation == split.Vertical {
		pos = fx
	}
	e.lines = AddLine(e.lines, e.orientation, pos, e.style)
	e.previewVisible = true
	return nil
}

// ContextMenu removes a line close to image pixel (x, y), if there is one.
func (e *Editor) ContextMenu(x, y float64) (bool, error) {
	fx, fy, err := e.fraction(x, y)
	if err != nil {
		return false, err
	}
	var removed bool
	e.lines, removed = RemoveLineAt(e.lines, fx, fy)
	return removed, nil
}

func (e *Editor) fraction(x, y float64) (float64, float64, error) {
	if e.source == nil {
		return 0, 0, ErrNoImage
	}
	b := e.source.Bounds()
	return x / float64(b.Dx()) * 100, y / float64(b.Dy()) * 100, nil
}

// Undo pops the last custom line. With no lines left it clears the split
// result and hides the preview instead.
func (e *Editor) Undo() {
	var ok bool
	e.lines, ok = UndoLine(e.lines)
	if !ok {
		e.tiles = nil
		e.previewVisible = false
	}
}

// SetMode switches between grid and custom splitting, dropping custom lines
// and any grid confirmation.
func (e *Editor) SetMode(m Mode) {
	e.mode = m
	e.lines = nil
	e.confirmed = false
}

func (e *Editor) SetGrid(g split.Grid) error {
	if g.Rows < 1 || g.Cols < 1 || g.Rows > split.MaxGridSize || g.Cols > split.MaxGridSize {
		return ErrGridSize
	}
	e.grid = g
	return nil
}

func (e *Editor) SetStyle(s Style) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.style = s
	return nil
}

func (e *Editor) SetOrientation(o split.Orientation) {
	e.orientation = o
}

func (e *Editor) SetShowGrid(show bool) {
	e.showGrid = show
}

// Confirm makes grid lines visible on the preview.
func (e *Editor) Confirm() {
	e.confirmed = true
	e.previewVisible = true
}

// Split partitions the source with the current grid or custom lines.
func (e *Editor) Split() error {
	if e.source == nil {
		return ErrNoImage
	}
	p := split.ByGrid(e.grid)
	if e.mode == CustomMode {
		p = split.ByLines(e.lines)
	}
	tiles, err := split.Image(e.source, p)
	if err != nil {
		l.Error().Println("split", e.name, "failed:", err)
		return err
	}
	e.tiles = tiles
	e.previewVisible = true
	return nil
}

func (e *Editor) ToggleTile(i int) error {
	if i < 0 || i >= len(e.tiles) {
		return ErrTileIndex
	}
	if e.tiles[i].Empty() {
		return nil
	}
	e.tiles[i].Selected = !e.tiles[i].Selected
	return nil
}

// Reset returns the editor to a freshly created state, keeping the mode and
// line style the user picked.
func (e *Editor) Reset() {
	e.name = ""
	e.source = nil
	e.tiles = nil
	e.lines = nil
	e.grid = DefaultGrid
	e.previewVisible = false
}

func (e *Editor) Name() string { return e.name }
func (e *Editor) Source() image.Image { return e.source }
func (e *Editor) Mode() Mode { return e.mode }
func (e *Editor) Grid() split.Grid { return e.grid }
func (e *Editor) Style() Style { return e.style }
func (e *Editor) Orientation() split.Orientation { return e.orientation }
func (e *Editor) Confirmed() bool { return e.confirmed }
func (e *Editor) PreviewVisible() bool { return e.previewVisible }

// Lines returns a copy of the custom lines in insertion order.
func (e *Editor) Lines() []split.Line {
	return append([]split.Line(nil), e.lines...)
}

// Tiles returns the current split result.
func (e *Editor) Tiles() []split.Tile {
	return e.tiles
}

// SelectedTiles returns the tiles picked for export.
func (e *Editor) SelectedTiles() []split.Tile {
	var out []split.Tile
	for _, t := range e.tiles {
		if t.Selected && !t.Empty() {
			out = append(out, t)
		}
	}
	return out
}

// Overlay describes what the preview should draw for the current state.
func (e *Editor) Overlay() preview.Overlay {
	return preview.Overlay{
		Custom:    e.mode == CustomMode,
		Grid:      e.grid,
		Lines:     e.Lines(),
		ShowGrid:  e.showGrid,
		Confirmed: e.confirmed,
		Color:     e.style.Color,
		Width:     e.style.Width,
		Dashed:    e.style.Dashed,
	}
}

// Preview renders the source with the current overlay. It returns nil when
// nothing is loaded or the preview is hidden.
func (e *Editor) Preview() image.Image {
	if e.source == nil || !e.previewVisible {
		return nil
	}
	return preview.Render(e.source, e.Overlay())
}
