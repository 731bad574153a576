package editor

import (
	"errors"
	"image/color"
	"testing"

	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
	"github.com/disintegration/imaging"
)

func loaded(t *testing.T, w, h int) *Editor {
	t.Helper()
	e := New()
	if err := e.Load("test.png", imaging.New(w, h, color.NRGBA{G: 128, A: 255})); err != nil {
		t.Fatal(err)
	}
	return e
}

func TestPointerDownRequiresCustomMode(t *testing.T) {
	e := loaded(t, 200, 100)
	if err := e.PointerDown(10, 10); !errors.Is(err, ErrWrongMode) {
		t.Fatalf("expected ErrWrongMode, got %v", err)
	}

	e.SetMode(CustomMode)
	if err := e.PointerDown(10, 50); err != nil {
		t.Fatal(err)
	}
	e.SetOrientation(split.Vertical)
	if err := e.PointerDown(50, 10); err != nil {
		t.Fatal(err)
	}

	lines := e.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Orientation != split.Horizontal || lines[0].Position != 50 {
		t.Fatalf("first line %+v", lines[0])
	}
	if lines[1].Orientation != split.Vertical || lines[1].Position != 25 {
		t.Fatalf("second line %+v", lines[1])
	}
	if lines[0].Color != DefaultStyle.Color || lines[0].Style != split.Solid {
		t.Fatalf("line did not take the current style: %+v", lines[0])
	}
}

func TestPointerDownWithoutImage(t *testing.T) {
	e := New()
	e.SetMode(CustomMode)
	if err := e.PointerDown(1, 1); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestContextMenuRemovesNearLine(t *testing.T) {
	e := loaded(t, 100, 100)
	e.SetMode(CustomMode)
	_ = e.PointerDown(0, 30)
	e.SetOrientation(split.Vertical)
	_ = e.PointerDown(60, 0)

	removed, err := e.ContextMenu(90, 90)
	if err != nil || removed {
		t.Fatalf("nothing should be near (90,90): removed=%v err=%v", removed, err)
	}

	// the horizontal line at 30% is measured against y
	removed, _ = e.ContextMenu(61, 33)
	if !removed {
		t.Fatal("expected a line to be removed")
	}
	lines := e.Lines()
	if len(lines) != 1 || lines[0].Orientation != split.Vertical {
		t.Fatalf("expected the vertical line to remain, got %+v", lines)
	}
}

func TestRemoveLineAtFirstMatch(t *testing.T) {
	lines := []split.Line{
		{Orientation: split.Vertical, Position: 40},
		{Orientation: split.Vertical, Position: 42},
	}
	out, ok := RemoveLineAt(lines, 41, 0)
	if !ok || len(out) != 1 || out[0].Position != 42 {
		t.Fatalf("expected the first matching line to go, got %+v", out)
	}
	if len(lines) != 2 {
		t.Fatalf("input slice was modified")
	}

	// exactly at the tolerance does not count
	single := []split.Line{{Orientation: split.Vertical, Position: 40}}
	if _, ok := RemoveLineAt(single, 45, 0); ok {
		t.Fatal("distance of 5 should not match")
	}
	if out, ok := RemoveLineAt(single, 44.9, 0); !ok || len(out) != 0 {
		t.Fatalf("distance of 4.9 should match, got %+v", out)
	}
	if _, ok := RemoveLineAt(single, 35, 0); ok {
		t.Fatal("distance of 5 below should not match")
	}
}

func TestUndoBackToFreshState(t *testing.T) {
	e := loaded(t, 100, 100)
	e.SetMode(CustomMode)
	for i := 1; i <= 4; i++ {
		_ = e.PointerDown(0, float64(i*20))
	}
	if err := e.Split(); err != nil {
		t.Fatal(err)
	}
	if len(e.Tiles()) != 5 {
		t.Fatalf("got %d tiles, want 5", len(e.Tiles()))
	}

	for i := 0; i < 4; i++ {
		e.Undo()
	}
	if len(e.Lines()) != 0 {
		t.Fatalf("lines left after undo: %d", len(e.Lines()))
	}
	if len(e.Tiles()) != 5 || !e.PreviewVisible() {
		t.Fatal("undoing lines should leave the split result alone")
	}

	e.Undo()
	if len(e.Tiles()) != 0 || e.PreviewVisible() {
		t.Fatal("undo with no lines should clear tiles and hide the preview")
	}

	fresh := New()
	fresh.SetMode(CustomMode)
	if len(fresh.Lines()) != len(e.Lines()) {
		t.Fatal("line count differs from a fresh editor")
	}
}

func TestSetModeClearsLinesAndConfirmation(t *testing.T) {
	e := loaded(t, 100, 100)
	e.Confirm()
	e.SetMode(CustomMode)
	_ = e.PointerDown(0, 50)
	if e.Confirmed() {
		t.Fatal("mode switch should reset confirmation")
	}
	e.SetMode(GridMode)
	if len(e.Lines()) != 0 {
		t.Fatal("mode switch should clear lines")
	}
}

func TestSetGridBounds(t *testing.T) {
	e := New()
	for _, g := range []split.Grid{{Rows: 0, Cols: 1}, {Rows: 11, Cols: 1}, {Rows: 2, Cols: -1}} {
		if err := e.SetGrid(g); !errors.Is(err, ErrGridSize) {
			t.Errorf("%+v: expected ErrGridSize, got %v", g, err)
		}
	}
	if err := e.SetGrid(split.Grid{Rows: 10, Cols: 1}); err != nil {
		t.Fatal(err)
	}
}

func TestSplitGridAndToggle(t *testing.T) {
	e := loaded(t, 90, 60)
	if err := e.Split(); err != nil {
		t.Fatal(err)
	}
	if len(e.Tiles()) != 9 {
		t.Fatalf("default grid should give 9 tiles, got %d", len(e.Tiles()))
	}
	if err := e.ToggleTile(4); err != nil {
		t.Fatal(err)
	}
	if len(e.SelectedTiles()) != 8 {
		t.Fatalf("expected 8 selected tiles, got %d", len(e.SelectedTiles()))
	}
	if err := e.ToggleTile(9); !errors.Is(err, ErrTileIndex) {
		t.Fatalf("expected ErrTileIndex, got %v", err)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	e := loaded(t, 50, 50)
	_ = e.SetGrid(split.Grid{Rows: 5, Cols: 5})
	_ = e.Split()
	e.Reset()
	if e.Source() != nil || len(e.Tiles()) != 0 || e.PreviewVisible() {
		t.Fatal("reset should drop the image, tiles and preview")
	}
	if e.Grid() != DefaultGrid {
		t.Fatalf("grid %+v, want %+v", e.Grid(), DefaultGrid)
	}
	if err := e.Split(); !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
}

func TestPreviewHiddenUntilLoaded(t *testing.T) {
	e := New()
	if e.Preview() != nil {
		t.Fatal("preview without an image")
	}
	e = loaded(t, 20, 10)
	p := e.Preview()
	if p == nil || p.Bounds().Dx() != 20 || p.Bounds().Dy() != 10 {
		t.Fatal("preview should match the source size")
	}
}
