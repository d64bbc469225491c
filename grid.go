package inkwell

import "math"

type itemLocation uint8

const (
	locationNone itemLocation = iota
	locationCells
	locationFixed
)

// cellSpan is an inclusive range of cell coordinates.
type cellSpan struct {
	x0, y0, x1, y1 int
}

// GridItem is a grid membership wrapping a payload. An item lives in at most
// one of the grid's cells, its fixed list, or nowhere.
type GridItem[T any] struct {
	Value T

	// Fixed items bypass the cells and match every query. The flag is
	// applied on the next Add.
	Fixed bool

	grid  *Grid[T]
	rect  RectF
	span  cellSpan
	where itemLocation

	// stamp is the last Query of the owning grid that visited the item.
	// It is reset whenever the item enters a grid, so a counter left over
	// from a previous grid can never hide it.
	stamp uint64
}

// NewGridItem wraps v in a detached grid item.
func NewGridItem[T any](v T) *GridItem[T] {
	return &GridItem[T]{Value: v}
}

// Rect returns the rectangle the item was last added with.
func (it *GridItem[T]) Rect() RectF { return it.rect }

// InGrid reports whether the item is currently held by a grid.
func (it *GridItem[T]) InGrid() bool { return it.where != locationNone }

// Grid is a uniform bucket grid over a bounded plane. Items outside the
// bounds are clamped into the edge cells, so they remain discoverable.
type Grid[T any] struct {
	bounds   RectF
	cellSize float64
	cols     int
	rows     int
	cells    [][]*GridItem[T]
	fixed    []*GridItem[T]

	stamp     uint64
	rebuckets int
}

// NewGrid creates a grid covering bounds with square cells of cellSize.
func NewGrid[T any](bounds RectF, cellSize float64) *Grid[T] {
	g := &Grid[T]{}
	g.layout(bounds, cellSize)
	return g
}

func (g *Grid[T]) layout(bounds RectF, cellSize float64) {
	if cellSize <= 0 {
		cellSize = 1
	}
	g.bounds = bounds
	g.cellSize = cellSize
	g.cols = max(int(math.Ceil(bounds.Width/cellSize)), 1)
	g.rows = max(int(math.Ceil(bounds.Height/cellSize)), 1)
	g.cells = make([][]*GridItem[T], g.cols*g.rows)
}

// Bounds returns the covered area.
func (g *Grid[T]) Bounds() RectF { return g.bounds }

// CellSize returns the edge length of a cell.
func (g *Grid[T]) CellSize() float64 { return g.cellSize }

// Rebuckets returns how many times an item's cell membership has been
// rewritten. Re-adding an item with an unchanged span does not count.
func (g *Grid[T]) Rebuckets() int { return g.rebuckets }

func (g *Grid[T]) cellCoord(v, origin float64, n int) int {
	c := math.Floor((v - origin) / g.cellSize)
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c >= float64(n):
		return n - 1
	}
	return int(c)
}

func (g *Grid[T]) spanOf(r RectF) cellSpan {
	return cellSpan{
		x0: g.cellCoord(r.X, g.bounds.X, g.cols),
		y0: g.cellCoord(r.Y, g.bounds.Y, g.rows),
		x1: g.cellCoord(r.X+max(r.Width, 0), g.bounds.X, g.cols),
		y1: g.cellCoord(r.Y+max(r.Height, 0), g.bounds.Y, g.rows),
	}
}

// Add inserts or updates it with rect r. Re-adding an item whose covered
// cell span is unchanged only records the new rect.
func (g *Grid[T]) Add(it *GridItem[T], r RectF) {
	if it.grid != nil && it.grid != g {
		it.grid.Remove(it)
	}
	it.rect = r

	if it.Fixed {
		if it.where == locationFixed {
			return
		}
		g.Remove(it)
		it.grid = g
		it.where = locationFixed
		it.stamp = 0
		g.fixed = append(g.fixed, it)
		return
	}

	span := g.spanOf(r)
	if it.where == locationCells && it.span == span {
		return
	}
	g.Remove(it)
	g.insert(it, span)
}

func (g *Grid[T]) insert(it *GridItem[T], span cellSpan) {
	it.grid = g
	it.where = locationCells
	it.span = span
	it.stamp = 0
	for y := span.y0; y <= span.y1; y++ {
		row := y * g.cols
		for x := span.x0; x <= span.x1; x++ {
			g.cells[row+x] = append(g.cells[row+x], it)
		}
	}
	g.rebuckets++
}

// Remove clears every membership of it. Removing a detached item is a no-op.
func (g *Grid[T]) Remove(it *GridItem[T]) {
	if it.grid != g {
		return
	}
	switch it.where {
	case locationCells:
		for y := it.span.y0; y <= it.span.y1; y++ {
			row := y * g.cols
			for x := it.span.x0; x <= it.span.x1; x++ {
				g.cells[row+x] = removeItem(g.cells[row+x], it)
			}
		}
	case locationFixed:
		g.fixed = removeItem(g.fixed, it)
	}
	it.where = locationNone
	it.grid = nil
}

// removeItem swap-removes it from s.
func removeItem[T any](s []*GridItem[T], it *GridItem[T]) []*GridItem[T] {
	for i, v := range s {
		if v == it {
			last := len(s) - 1
			s[i] = s[last]
			s[last] = nil
			return s[:last]
		}
	}
	return s
}

// Query appends to dst every item matching r and returns the extended slice.
// Fixed items always match. Cell items match when their rect overlaps r, or,
// for a zero-area r, when their rect contains the point. Each item appears
// once.
func (g *Grid[T]) Query(r RectF, dst []*GridItem[T]) []*GridItem[T] {
	g.stamp++
	for _, it := range g.fixed {
		it.stamp = g.stamp
		dst = append(dst, it)
	}

	span := g.spanOf(r)
	for y := span.y0; y <= span.y1; y++ {
		row := y * g.cols
		for x := span.x0; x <= span.x1; x++ {
			for _, it := range g.cells[row+x] {
				if it.stamp == g.stamp {
					continue
				}
				it.stamp = g.stamp
				if it.rect.matchesQuery(r) {
					dst = append(dst, it)
				}
			}
		}
	}
	return dst
}

// Resize re-buckets every held item under new bounds and cell size, keeping
// each item's rect.
func (g *Grid[T]) Resize(bounds RectF, cellSize float64) {
	var held []*GridItem[T]
	for i, cell := range g.cells {
		for _, it := range cell {
			if g.firstCell(it) == i {
				held = append(held, it)
			}
		}
	}

	g.layout(bounds, cellSize)
	for _, it := range held {
		g.insert(it, g.spanOf(it.rect))
	}
}

// Len returns the number of distinct items held.
func (g *Grid[T]) Len() int {
	n := len(g.fixed)
	for i, cell := range g.cells {
		for _, it := range cell {
			if g.firstCell(it) == i {
				n++
			}
		}
	}
	return n
}

// firstCell returns the index of the top-left cell of the item's span.
func (g *Grid[T]) firstCell(it *GridItem[T]) int {
	return it.span.y0*g.cols + it.span.x0
}
