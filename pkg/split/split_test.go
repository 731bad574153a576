package split

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/PhantomInTheWire/image-toolbox/pkg/codec"
	"github.com/disintegration/imaging"
)

// quadrants builds a 100x100 image with a distinct colour per quadrant.
func quadrants() *image.NRGBA {
	img := imaging.New(100, 100, color.NRGBA{})
	colors := []color.NRGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
	}
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, colors[(y/50)*2+x/50])
		}
	}
	return img
}

func TestImageGrid(t *testing.T) {
	tiles, err := Image(quadrants(), ByGrid(Grid{Rows: 2, Cols: 2}))
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 4 {
		t.Fatalf("got %d tiles, want 4", len(tiles))
	}

	wantBounds := []image.Rectangle{
		image.Rect(0, 0, 50, 50),
		image.Rect(50, 0, 100, 50),
		image.Rect(0, 50, 50, 100),
		image.Rect(50, 50, 100, 100),
	}
	for i, tile := range tiles {
		if !tile.Selected {
			t.Errorf("tile %d not selected by default", i)
		}
		if tile.Bounds != wantBounds[i] {
			t.Errorf("tile %d bounds %v, want %v", i, tile.Bounds, wantBounds[i])
		}
		img, err := codec.Decode("tile", tile.Data)
		if err != nil {
			t.Fatal(err)
		}
		if img.Bounds().Dx() != 50 || img.Bounds().Dy() != 50 {
			t.Fatalf("tile %d size %v", i, img.Bounds())
		}
		r, g, b, _ := img.At(25, 25).RGBA()
		wr, wg, wb, _ := quadrants().At(wantBounds[i].Min.X+25, wantBounds[i].Min.Y+25).RGBA()
		if r != wr || g != wg || b != wb {
			t.Errorf("tile %d has the wrong content", i)
		}
	}
}

func TestImageCustomDuplicateLines(t *testing.T) {
	lines := []Line{
		{Orientation: Vertical, Position: 50},
		{Orientation: Vertical, Position: 50},
	}
	tiles, err := Image(quadrants(), ByLines(lines))
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 3 {
		t.Fatalf("got %d tiles, want 3", len(tiles))
	}
	if !tiles[1].Empty() || tiles[1].Selected {
		t.Fatalf("zero width tile should be empty and unselected: %+v", tiles[1])
	}
	if tiles[0].Empty() || tiles[2].Empty() {
		t.Fatalf("outer tiles should carry data")
	}
}

func TestImageNonZeroOrigin(t *testing.T) {
	src := quadrants().SubImage(image.Rect(50, 50, 100, 100))
	tiles, err := Image(src, ByGrid(Grid{Rows: 1, Cols: 2}))
	if err != nil {
		t.Fatal(err)
	}
	if tiles[0].Bounds != image.Rect(50, 50, 75, 100) {
		t.Fatalf("bounds %v", tiles[0].Bounds)
	}
}

func TestFileWritesSelectedTiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	if err := imaging.Save(quadrants(), in); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "tiles")
	names, err := File(in, out, ByGrid(Grid{Rows: 2, Cols: 2}))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"split_1_1.png", "split_1_2.png", "split_2_1.png", "split_2_2.png"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("name %d = %s, want %s", i, names[i], n)
		}
		if _, err := os.Stat(filepath.Join(out, n)); err != nil {
			t.Errorf("missing %s: %v", n, err)
		}
	}
}

func TestFileMissing(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.png"), t.TempDir(), ByGrid(Grid{Rows: 1, Cols: 1}))
	if err == nil {
		t.Fatal("expected an error")
	}
}
