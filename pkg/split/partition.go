package split

import (
	"sort"
)

// GridCells partitions a width x height image into a uniform rows x cols grid.
// Cells come out row-major.
func GridCells(width, height int, g Grid) ([]Cell, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	xs := uniform(float64(width), g.Cols)
	ys := uniform(float64(height), g.Rows)
	return cells(xs, ys), nil
}

// CustomCells partitions an image along user placed lines. Each axis is closed
// with synthetic boundaries at 0 and 100, so N horizontal and M vertical lines
// always yield (N+1)*(M+1) cells.
func CustomCells(width, height int, lines []Line) ([]Cell, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}

	xs := scale(Boundaries(lines, Vertical), float64(width))
	ys := scale(Boundaries(lines, Horizontal), float64(height))
	return cells(xs, ys), nil
}

// Boundaries returns the sorted positions of lines with orientation o,
// bracketed by 0 and 100.
func Boundaries(lines []Line, o Orientation) []float64 {
	out := []float64{0}
	for _, l := range lines {
		if l.Orientation != o {
			continue
		}
		out = append(out, clamp(l.Position))
	}
	sort.Float64s(out[1:])
	return append(out, 100)
}

func cells(xs, ys []float64) []Cell {
	out := make([]Cell, 0, (len(xs)-1)*(len(ys)-1))
	for row := 0; row < len(ys)-1; row++ {
		for col := 0; col < len(xs)-1; col++ {
			out = append(out, Cell{
				Row: row,
				Col: col,
				Rect: Rect{
					X: xs[col],
					Y: ys[row],
					W: xs[col+1] - xs[col],
					H: ys[row+1] - ys[row],
				},
				Bounds: snap(xs[col], ys[row], xs[col+1], ys[row+1]),
			})
		}
	}
	return out
}

// uniform returns n+1 evenly spaced edges over [0, size].
func uniform(size float64, n int) []float64 {
	step := size / float64(n)
	edges := make([]float64, n+1)
	for i := 0; i < n; i++ {
		edges[i] = float64(i) * step
	}
	edges[n] = size
	return edges
}

// scale maps percentage boundaries onto [0, size].
func scale(percent []float64, size float64) []float64 {
	edges := make([]float64, len(percent))
	for i, p := range percent {
		edges[i] = p * size / 100
	}
	return edges
}

func clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
