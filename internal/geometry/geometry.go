// Package geometry provides pure clamping and normalization helpers for
// window bounds, zoom levels, rotations, and page numbers.
package geometry

import "math"

// Window size floors in terminal cells.
const (
	MinWidth  = 20
	MinHeight = 6
)

// Zoom limits. Values are clamped into [MinZoom, MaxZoom] and rounded to
// two decimal places.
const (
	MinZoom     = 0.25
	MaxZoom     = 4.0
	DefaultZoom = 1.0
)

// Cascade offset applied when duplicating a window.
const (
	duplicateOffsetX = 2
	duplicateOffsetY = 1
)

// Rect is a window rectangle in cell coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ClampTo fits r inside container: the rect is shrunk to the container's
// dimensions if oversized, shifted back inside if it overflows, and never
// drops below MinWidth x MinHeight.
func (r Rect) ClampTo(container Rect) Rect {
	if r.Width < MinWidth {
		r.Width = MinWidth
	}
	if r.Height < MinHeight {
		r.Height = MinHeight
	}
	if container.Width > 0 && r.Width > container.Width {
		r.Width = max(container.Width, MinWidth)
	}
	if container.Height > 0 && r.Height > container.Height {
		r.Height = max(container.Height, MinHeight)
	}

	if r.X < container.X {
		r.X = container.X
	}
	if r.Y < container.Y {
		r.Y = container.Y
	}
	if container.Width > 0 && r.X+r.Width > container.X+container.Width {
		r.X = container.X + container.Width - r.Width
	}
	if container.Height > 0 && r.Y+r.Height > container.Y+container.Height {
		r.Y = container.Y + container.Height - r.Height
	}
	if r.X < container.X {
		r.X = container.X
	}
	if r.Y < container.Y {
		r.Y = container.Y
	}
	return r
}

// Contains reports whether the point (x, y) falls inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// OffsetForDuplicate returns r cascaded down-right, wrapped back to the
// container origin when the offset would push it outside.
func OffsetForDuplicate(r, container Rect) Rect {
	moved := r
	moved.X += duplicateOffsetX
	moved.Y += duplicateOffsetY
	if container.Width > 0 && moved.X+moved.Width > container.X+container.Width {
		moved.X = container.X
	}
	if container.Height > 0 && moved.Y+moved.Height > container.Y+container.Height {
		moved.Y = container.Y
	}
	return moved.ClampTo(container)
}

// ClampZoom clamps z into [MinZoom, MaxZoom] and rounds to two decimals.
// Non-finite input maps to DefaultZoom.
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return DefaultZoom
	}
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	return math.Round(z*100) / 100
}

// NormalizeRotation snaps deg to the nearest multiple of 90 modulo 360.
// The result is always one of 0, 90, 180, 270, and the function is
// idempotent over its own output.
func NormalizeRotation(deg int) int {
	n := int(math.Round(float64(deg)/90.0)) * 90
	n %= 360
	if n < 0 {
		n += 360
	}
	return n
}

// ClampPage clamps a 1-indexed page number into [1, total]. When total is
// unknown (zero or negative) only the lower bound applies.
func ClampPage(n, total int) int {
	if n < 1 {
		return 1
	}
	if total > 0 && n > total {
		return total
	}
	return n
}
