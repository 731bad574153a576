package editor

import (
	"math"

	"github.com/PhantomInTheWire/image-toolbox/pkg/split"
)

// RemoveTolerance is how close, in percentage points, a secondary click has to
// land to a line for the line to be removed.
const RemoveTolerance = 5.0

// AddLine appends a line at pos (percent along the axis of o) drawn with style.
// The input slice is never modified.
func AddLine(lines []split.Line, o split.Orientation, pos float64, s Style) []split.Line {
	out := make([]split.Line, len(lines), len(lines)+1)
	copy(out, lines)
	return append(out, split.Line{
		Orientation: o,
		Position:    pos,
		Color:       s.Color,
		Width:       s.Width,
		Style:       s.LineStyle(),
	})
}

// RemoveLineAt removes the first line near the click at (fx, fy), given as
// percentages of image width and height. Each line is measured against the
// click's coordinate on that line's own axis, regardless of the orientation
// currently selected for drawing.
func RemoveLineAt(lines []split.Line, fx, fy float64) ([]split.Line, bool) {
	for i, l := range lines {
		pos := fx
		if l.Orientation == split.Horizontal {
			pos = fy
		}
		if math.Abs(pos-l.Position) < RemoveTolerance {
			out := make([]split.Line, 0, len(lines)-1)
			out = append(out, lines[:i]...)
			return append(out, lines[i+1:]...), true
		}
	}
	return lines, false
}

// UndoLine drops the most recently added line.
func UndoLine(lines []split.Line) ([]split.Line, bool) {
	if len(lines) == 0 {
		return lines, false
	}
	return lines[:len(lines)-1 : len(lines)-1], true
}
