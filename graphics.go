package inkwell

// graphicsContext is one entry of the clip stack. requested keeps the rect
// the caller asked for; clip is that rect intersected with the screen.
type graphicsContext struct {
	requested Rect
	clip      Rect
	offsetX   int
	offsetY   int
}

// Graphics draws bitmaps into a host frame through a nestable clip stack.
// The bottom context always exists and cannot be popped.
type Graphics struct {
	host   FrameSource
	screen Rect
	stack  []graphicsContext
}

// NewGraphics creates a drawing surface over host's frame.
func NewGraphics(host FrameSource) *Graphics {
	f := host.Frame()
	screen := Rect{Width: f.Width, Height: f.Height}
	return &Graphics{
		host:   host,
		screen: screen,
		stack:  []graphicsContext{{requested: screen, clip: screen}},
	}
}

// Host returns the frame source being drawn to.
func (g *Graphics) Host() FrameSource { return g.host }

// ScreenRect returns the full frame rectangle.
func (g *Graphics) ScreenRect() Rect { return g.screen }

func (g *Graphics) top() *graphicsContext { return &g.stack[len(g.stack)-1] }

// PushContext saves the current clip and draw offset; the new context starts
// as a copy.
func (g *Graphics) PushContext() {
	g.stack = append(g.stack, *g.top())
}

// PopContext restores the state saved by the matching PushContext.
func (g *Graphics) PopContext() {
	if len(g.stack) > 1 {
		g.stack = g.stack[:len(g.stack)-1]
	}
}

// Depth returns the number of pushed contexts.
func (g *Graphics) Depth() int { return len(g.stack) - 1 }

// SetClipRect restricts drawing in the current context to the given
// rectangle, intersected with the screen.
func (g *Graphics) SetClipRect(x, y, width, height int) {
	c := g.top()
	c.requested = Rect{X: x, Y: y, Width: width, Height: height}
	c.clip = g.screen.Intersection(c.requested)
}

// ClearClipRect resets the current context's clip to the whole screen.
func (g *Graphics) ClearClipRect() {
	c := g.top()
	c.requested = g.screen
	c.clip = g.screen
}

// ClipRect returns the effective clip of the current context.
func (g *Graphics) ClipRect() Rect { return g.top().clip }

// SetDrawOffset shifts everything drawn in the current context by (dx, dy).
// The clip rect is not shifted.
func (g *Graphics) SetDrawOffset(dx, dy int) {
	c := g.top()
	c.offsetX, c.offsetY = dx, dy
}

// DrawOffset returns the current context's draw offset.
func (g *Graphics) DrawOffset() (dx, dy int) {
	c := g.top()
	return c.offsetX, c.offsetY
}

// DrawBitmap composites b with its full-bitmap origin at (x, y). Opaque
// bitmaps overwrite, masked bitmaps leave masked-out pixels untouched.
func (g *Graphics) DrawBitmap(b *Bitmap, x, y int) {
	if b == nil || b.data == nil {
		return
	}
	c := g.top()
	blit(g.host, g.host.Frame(), b, x+c.offsetX+b.bx, y+c.offsetY+b.by, c.clip)
}

// FillRect fills r, shifted by the draw offset and clipped, with color.
// ColorClear is a no-op.
func (g *Graphics) FillRect(r Rect, color Color) {
	c := g.top()
	g.fill(r.Offset(c.offsetX, c.offsetY).Intersection(c.clip), color)
}

// Clear fills the whole current clip with color.
func (g *Graphics) Clear(color Color) {
	g.fill(g.top().clip, color)
}

func (g *Graphics) fill(r Rect, color Color) {
	if color == ColorClear || r.IsEmpty() {
		return
	}
	f := g.host.Frame()
	var fill byte
	if color == ColorWhite {
		fill = 0xFF
	}
	for y := r.Y; y < r.Y+r.Height; y++ {
		row := f.Pix[y*f.Stride:]
		for x := r.X; x < r.X+r.Width; x++ {
			bit := byte(0x80) >> (x % 8)
			row[x/8] = row[x/8]&^bit | fill&bit
		}
	}
	g.host.MarkUpdatedRows(r.Y, r.Y+r.Height-1)
}
