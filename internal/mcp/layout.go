package mcpserver

import (
	"math"

	"composer/internal/domain"
)

const (
	Padding = 20.0 // gap kept around placed components
	MaxRowW = 1200.0
)

// LayoutEngine handles automatic placement of components on the canvas
// so that agent-created components don't overlap existing ones.
type LayoutEngine struct {
	gridSize float64
	padding  float64
	maxRowW  float64
}

// NewLayoutEngine places on the given grid; a non-positive grid falls back
// to 10.
func NewLayoutEngine(gridSize float64) *LayoutEngine {
	if gridSize <= 0 {
		gridSize = 10
	}
	return &LayoutEngine{
		gridSize: gridSize,
		padding:  Padding,
		maxRowW:  MaxRowW,
	}
}

// snap rounds v to the nearest grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Round(v/le.gridSize) * le.gridSize
}

// NextPosition finds the first grid position, scanning rows top-to-bottom
// and columns left-to-right, where a component of the given size clears
// every existing box by the padding.
func (le *LayoutEngine) NextPosition(existing []domain.Rect, size domain.Size) domain.Position {
	if len(existing) == 0 {
		return domain.Position{}
	}

	padded := make([]domain.Rect, len(existing))
	for i, r := range existing {
		padded[i] = domain.Rect{
			Position: domain.Position{X: r.X - le.padding, Y: r.Y - le.padding},
			Size:     domain.Size{Width: r.Width + le.padding*2, Height: r.Height + le.padding*2},
		}
	}

	maxY := 0.0
	for _, r := range existing {
		maxY = math.Max(maxY, r.Y+r.Height)
	}

	candidate := domain.Rect{Size: size}
	for y := 0.0; y <= maxY+le.padding; y += le.gridSize {
		for x := 0.0; x+size.Width <= le.maxRowW || x == 0; x += le.gridSize {
			candidate.X = le.snap(x)
			candidate.Y = le.snap(y)

			overlaps := false
			for _, occ := range padded {
				if candidate.Intersects(occ) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return candidate.Position
			}
		}
	}

	// Fallback: place below everything
	return domain.Position{X: 0, Y: le.snap(maxY + le.padding)}
}

// ArrangeGroup lays boxes out in rows starting from start, wrapping at the
// maximum row width. It returns the new position of each box in order.
func (le *LayoutEngine) ArrangeGroup(sizes []domain.Size, start domain.Position) []domain.Position {
	x := le.snap(start.X)
	y := le.snap(start.Y)
	rowHeight := 0.0

	out := make([]domain.Position, len(sizes))
	for i, s := range sizes {
		if x > le.snap(start.X) && x+s.Width > le.maxRowW {
			x = le.snap(start.X)
			y += le.snap(rowHeight + le.padding)
			rowHeight = 0
		}
		out[i] = domain.Position{X: x, Y: y}
		rowHeight = math.Max(rowHeight, s.Height)
		x += le.snap(s.Width + le.padding)
	}
	return out
}
