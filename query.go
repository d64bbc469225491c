package inkwell

import "math"

// Spatial queries run against the collision grid, so only sprites with
// collisions enabled are found. Results are freshly allocated and ordered as
// the grid returns them.

// QueryRect returns the sprites whose collision rect overlaps r.
func (sc *Scene) QueryRect(r RectF) []*Sprite {
	var out []*Sprite
	sc.queryBuf = sc.colGrid.Query(r, sc.queryBuf[:0])
	for _, it := range sc.queryBuf {
		if r.Intersects(it.Value.measureCollisionRect()) {
			out = append(out, it.Value)
		}
	}
	clear(sc.queryBuf)
	return out
}

// QuerySegment returns the sprites whose collision rect the segment from
// (x1, y1) to (x2, y2) passes through. A segment that starts or ends inside a
// rect counts.
func (sc *Scene) QuerySegment(x1, y1, x2, y2 float64) []*Sprite {
	bounds := RectF{
		X:      math.Min(x1, x2),
		Y:      math.Min(y1, y2),
		Width:  math.Abs(x2 - x1),
		Height: math.Abs(y2 - y1),
	}
	var out []*Sprite
	sc.queryBuf = sc.colGrid.Query(bounds, sc.queryBuf[:0])
	for _, it := range sc.queryBuf {
		hit, ok := segmentRectIntersection(x1, y1, x2, y2, it.Value.measureCollisionRect())
		if ok && hit.T1 < 1 && hit.T2 > 0 {
			out = append(out, it.Value)
		}
	}
	clear(sc.queryBuf)
	return out
}

// QueryPoint returns the sprites whose collision rect contains (x, y).
func (sc *Scene) QueryPoint(x, y float64) []*Sprite {
	var out []*Sprite
	sc.queryBuf = sc.colGrid.Query(RectF{X: x, Y: y}, sc.queryBuf[:0])
	for _, it := range sc.queryBuf {
		if it.Value.measureCollisionRect().Contains(x, y) {
			out = append(out, it.Value)
		}
	}
	clear(sc.queryBuf)
	return out
}
