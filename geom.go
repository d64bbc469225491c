package inkwell

import "math"

// Vec2 is a 2D vector used for positions, offsets, sizes, and normals.
type Vec2 struct {
	X, Y float64
}

// Rect is an integer axis-aligned rectangle in device pixels. The origin is
// the top-left corner, Y grows downward.
type Rect struct {
	X, Y, Width, Height int
}

// RectF is a floating-point axis-aligned rectangle in scene units.
type RectF struct {
	X, Y, Width, Height float64
}

// IsEmpty reports whether r covers no pixels.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Intersection returns the overlap of r and o. The result never has a
// negative extent; disjoint rectangles yield a zero-size rect.
func (r Rect) Intersection(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x1, Y: y1, Width: max(x2-x1, 0), Height: max(y2-y1, 0)}
}

// Intersects reports whether r and o share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	return !r.Intersection(o).IsEmpty()
}

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// RectF converts r to floating point.
func (r Rect) RectF() RectF {
	return RectF{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}

// Right returns the X coordinate of the right edge.
func (r RectF) Right() float64 { return r.X + r.Width }

// Bottom returns the Y coordinate of the bottom edge.
func (r RectF) Bottom() float64 { return r.Y + r.Height }

// Center returns the center point of r.
func (r RectF) Center() Vec2 {
	return Vec2{X: r.X + r.Width*0.5, Y: r.Y + r.Height*0.5}
}

// Offset returns r translated by (dx, dy).
func (r RectF) Offset(dx, dy float64) RectF {
	return RectF{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Intersects reports whether the interiors of r and o overlap. Rectangles
// that only share an edge do not intersect.
func (r RectF) Intersects(o RectF) bool {
	return r.X < o.X+o.Width && o.X < r.X+r.Width &&
		r.Y < o.Y+o.Height && o.Y < r.Y+r.Height
}

// Contains reports whether (x, y) lies in r. The left and top edges are
// inside, the right and bottom edges are outside, matching image.Rectangle.
func (r RectF) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Union returns the smallest rectangle enclosing both r and o.
func (r RectF) Union(o RectF) RectF {
	x1 := math.Min(r.X, o.X)
	y1 := math.Min(r.Y, o.Y)
	x2 := math.Max(r.Right(), o.Right())
	y2 := math.Max(r.Bottom(), o.Bottom())
	return RectF{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// MinkowskiSum grows r by the extent of o, centered on r. Sweeping the center
// of o against the result is equivalent to sweeping o against r.
func (r RectF) MinkowskiSum(o RectF) RectF {
	return RectF{
		X:      r.X - o.Width*0.5,
		Y:      r.Y - o.Height*0.5,
		Width:  r.Width + o.Width,
		Height: r.Height + o.Height,
	}
}

// overlapsAxis tests one axis of a grid query. A zero-extent query axis is a
// coordinate test (containment); otherwise the open intervals must overlap.
func overlapsAxis(qPos, qLen, pos, length float64) bool {
	if qLen == 0 {
		return qPos >= pos && qPos < pos+length
	}
	return qPos < pos+length && pos < qPos+qLen
}

// matchesQuery reports whether item rect r satisfies query q. Zero-area
// queries degrade to point containment.
func (r RectF) matchesQuery(q RectF) bool {
	return overlapsAxis(q.X, q.Width, r.X, r.Width) && overlapsAxis(q.Y, q.Height, r.Y, r.Height)
}

// Corner indices used by the slide corner tolerance check.
const (
	cornerTopLeft = iota
	cornerTopRight
	cornerBottomRight
	cornerBottomLeft
)

// pointInCorner reports whether p lies beyond the given corner of r by no
// more than size along both of the corner's edges.
func pointInCorner(p Vec2, r RectF, corner int, size float64) bool {
	switch corner {
	case cornerTopLeft:
		return p.X <= r.X+size && p.Y <= r.Y+size
	case cornerTopRight:
		return p.X >= r.Right()-size && p.Y <= r.Y+size
	case cornerBottomRight:
		return p.X >= r.Right()-size && p.Y >= r.Bottom()-size
	case cornerBottomLeft:
		return p.X <= r.X+size && p.Y >= r.Bottom()-size
	}
	return false
}

// segmentHit is the result of clipping a segment against a rectangle. T1 and
// T2 are the entry and exit parameters along the segment; N1 and N2 are the
// normals of the entry and exit sides, pointing along the direction of travel.
type segmentHit struct {
	T1, T2 float64
	N1, N2 Vec2
}

// segmentRectIntersection clips the segment (x1,y1)-(x2,y2) against r using
// the Liang-Barsky parametric test.
func segmentRectIntersection(x1, y1, x2, y2 float64, r RectF) (segmentHit, bool) {
	dx := x2 - x1
	dy := y2 - y1

	hit := segmentHit{T1: -math.MaxFloat64, T2: math.MaxFloat64}

	sides := [4]struct {
		p, q float64
		n    Vec2
	}{
		{-dx, x1 - r.X, Vec2{1, 0}},
		{dx, r.Right() - x1, Vec2{-1, 0}},
		{-dy, y1 - r.Y, Vec2{0, 1}},
		{dy, r.Bottom() - y1, Vec2{0, -1}},
	}

	for _, s := range sides {
		if s.p == 0 {
			if s.q <= 0 {
				return hit, false
			}
			continue
		}
		t := s.q / s.p
		if s.p < 0 {
			if t > hit.T2 {
				return hit, false
			}
			if t > hit.T1 {
				hit.T1 = t
				hit.N1 = s.n
			}
		} else {
			if t < hit.T1 {
				return hit, false
			}
			if t < hit.T2 {
				hit.T2 = t
				hit.N2 = s.n
			}
		}
	}
	return hit, true
}

// sign returns the normal component that opposes displacement d: -1 when d
// is positive, 1 when negative, 0 otherwise.
func sign(d float64) float64 {
	switch {
	case d > 0:
		return -1
	case d < 0:
		return 1
	}
	return 0
}
