package split

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/PhantomInTheWire/image-toolbox/pkg/codec"
	"github.com/allape/gogger"
	"github.com/disintegration/imaging"
)

var l = gogger.New("split")

// Partitioner computes the cells for an image of the given size.
type Partitioner func(width, height int) ([]Cell, error)

// ByGrid partitions uniformly.
func ByGrid(g Grid) Partitioner {
	return func(w, h int) ([]Cell, error) {
		return GridCells(w, h, g)
	}
}

// ByLines partitions along custom lines.
func ByLines(lines []Line) Partitioner {
	return func(w, h int) ([]Cell, error) {
		return CustomCells(w, h, lines)
	}
}

// TileName is the download name of the tile at row, col.
func TileName(row, col int) string {
	return fmt.Sprintf("split_%d_%d.png", row+1, col+1)
}

// Split copies every cell out of src and encodes it as PNG.
// Cells that round to zero pixels keep their slot but carry no data
// and start unselected.
func Split(src image.Image, cells []Cell) ([]Tile, error) {
	b := src.Bounds()
	tiles := make([]Tile, 0, len(cells))
	for _, c := range cells {
		rect := c.Bounds.Add(b.Min).Intersect(b)
		t := Tile{Row: c.Row, Col: c.Col, Bounds: rect}
		if rect.Empty() {
			l.Verbose().Println("skipping empty cell", c.Row, c.Col)
			tiles = append(tiles, t)
			continue
		}
		data, err := codec.Encode(TileName(c.Row, c.Col), imaging.Crop(src, rect), codec.PNG)
		if err != nil {
			return nil, err
		}
		t.Data = data
		t.Selected = true
		tiles = append(tiles, t)
	}
	return tiles, nil
}

// Image partitions src with p and encodes the tiles.
func Image(src image.Image, p Partitioner) ([]Tile, error) {
	b := src.Bounds()
	cells, err := p(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	return Split(src, cells)
}

// WriteTiles stores the selected, non-empty tiles in outDir
// and returns their file names.
func WriteTiles(outDir string, tiles []Tile) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	names := []string{}
	for _, t := range tiles {
		if !t.Selected || t.Empty() {
			continue
		}
		name := TileName(t.Row, t.Col)
		if err := os.WriteFile(filepath.Join(outDir, name), t.Data, 0644); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// File splits the image at inPath into outDir, returning tile file names.
func File(inPath, outDir string, p Partitioner) ([]string, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return nil, &codec.Error{Kind: codec.ReadFailure, Name: inPath, Err: err}
	}
	src, err := codec.Decode(filepath.Base(inPath), data)
	if err != nil {
		return nil, err
	}
	tiles, err := Image(src, p)
	if err != nil {
		return nil, err
	}
	return WriteTiles(outDir, tiles)
}
