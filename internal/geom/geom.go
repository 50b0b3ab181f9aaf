// Package geom holds the pixel-space primitives shared by the maze, the
// mobile entities and the collision rules.
package geom

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Vec is a point or an extent in pixel space.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) Add(o Vec) Vec {
	return Vec{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{X: v.X - o.X, Y: v.Y - o.Y}
}

// Dist returns the euclidean distance between v and o.
func (v Vec) Dist(o Vec) float64 {
	return math.Hypot(v.X-o.X, v.Y-o.Y)
}

// Rect is an axis-aligned box; Right and Bottom are exclusive edges.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// RectAround builds the box centered on c with the given half extents.
func RectAround(c, half Vec) Rect {
	return Rect{
		Left:   c.X - half.X,
		Top:    c.Y - half.Y,
		Right:  c.X + half.X,
		Bottom: c.Y + half.Y,
	}
}

func (r Rect) Shift(d Vec) Rect {
	return Rect{Left: r.Left + d.X, Top: r.Top + d.Y, Right: r.Right + d.X, Bottom: r.Bottom + d.Y}
}

// Overlaps reports strict overlap; boxes sharing only an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.Top < o.Bottom && r.Right > o.Left && r.Bottom > o.Top && r.Left < o.Right
}

// Within reports whether r lies inside bounds, edges included.
func (r Rect) Within(bounds Rect) bool {
	return r.Left >= bounds.Left && r.Top >= bounds.Top && r.Right <= bounds.Right && r.Bottom <= bounds.Bottom
}

// SideMidpoints returns the midpoints of the top, bottom, left and right sides.
func (r Rect) SideMidpoints() [4]Vec {
	cx := (r.Left + r.Right) / 2
	cy := (r.Top + r.Bottom) / 2
	return [4]Vec{
		{X: cx, Y: r.Top},
		{X: cx, Y: r.Bottom},
		{X: r.Left, Y: cy},
		{X: r.Right, Y: cy},
	}
}

// EllipseDist returns the normalized squared distance of p from the ellipse
// centered at c with radii r. Values <= 1 are inside or on the boundary.
func EllipseDist(c, r, p Vec) float64 {
	if r.X <= 0 || r.Y <= 0 {
		return math.Inf(1)
	}
	dx := (p.X - c.X) / r.X
	dy := (p.Y - c.Y) / r.Y
	return dx*dx + dy*dy
}

// EllipseContains includes the boundary.
func EllipseContains(c, r, p Vec) bool {
	return EllipseDist(c, r, p) <= 1
}

// EllipseContainsStrict excludes the boundary.
func EllipseContainsStrict(c, r, p Vec) bool {
	return EllipseDist(c, r, p) < 1
}

// Clamp limits v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Abs returns |v| for any signed number.
func Abs[T constraints.Signed | constraints.Float](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
