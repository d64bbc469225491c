package inkwell

import "time"

// Update culls sprites against the viewport, runs their update hooks, and
// builds the draw list sorted by z-index then insertion index.
func (sc *Scene) Update() {
	var t0 time.Time
	if sc.debug {
		t0 = time.Now()
	}

	for _, s := range sc.visible {
		s.onScreen = false
	}
	clear(sc.visible)
	sc.visible = sc.visible[:0]

	view := sc.g.ScreenRect().Offset(-sc.offsetX, -sc.offsetY).RectF()
	sc.visBuf = sc.visGrid.Query(view, sc.visBuf[:0])
	sc.stats.visCandidates = len(sc.visBuf)

	for _, it := range sc.visBuf {
		s := it.Value
		base := s.screenClipBase()
		if !base.Intersects(s.measureClipRect()) {
			continue
		}
		if s.updateFn != nil {
			s.updateFn(s)
			if s.scene != sc || !s.visible {
				continue
			}
		}
		// The hook may have changed the bitmap, size, or position.
		clip := s.measureClipRect()
		if !base.Intersects(clip) {
			continue
		}
		s.screenRect = s.measureScreenRect()
		s.screenClip = clip
		s.onScreen = true
		sc.visible = append(sc.visible, s)
	}
	clear(sc.visBuf)

	sc.mergeSort()

	if sc.debug {
		sc.stats.visible = len(sc.visible)
		sc.stats.updateTime = time.Since(t0)
	}
}

// VisibleSprites returns the draw list built by the last Update.
func (sc *Scene) VisibleSprites() []*Sprite { return sc.visible }

// Draw renders the draw list built by the last Update, then writes any
// queued screenshots.
func (sc *Scene) Draw() {
	var t0 time.Time
	if sc.debug {
		t0 = time.Now()
	}

	for _, s := range sc.visible {
		sc.drawSprite(s)
	}

	if sc.debug {
		sc.stats.drawTime = time.Since(t0)
		sc.debugLog(sc.stats)
	}
	sc.flushScreenshots()
}

func (sc *Scene) drawSprite(s *Sprite) {
	g := sc.g
	clip := s.screenClip
	g.PushContext()
	defer g.PopContext()
	g.SetClipRect(clip.X, clip.Y, clip.Width, clip.Height)

	switch s.mode {
	case DrawBitmap:
		g.DrawBitmap(s.bitmap, s.screenRect.X, s.screenRect.Y)
	case DrawTiled:
		drawTiles(g, s.bitmap, s.screenRect, clip, s.tileOffsetX, s.tileOffsetY)
	case DrawCustom:
		g.SetDrawOffset(s.screenRect.X, s.screenRect.Y)
		s.drawFn(s, g, s.screenRect)
	}
}

// drawTiles repeats b over rect, phase-shifted by (ox, oy), touching only the
// tiles that reach the part of rect inside clip.
func drawTiles(g *Graphics, b *Bitmap, rect, clip Rect, ox, oy int) {
	if b == nil || b.width <= 0 || b.height <= 0 {
		return
	}
	inner := clip.Intersection(rect)
	if inner.IsEmpty() {
		return
	}
	g.PushContext()
	defer g.PopContext()
	g.SetClipRect(inner.X, inner.Y, inner.Width, inner.Height)

	mx := (inner.X - rect.X - ox) % b.width
	if mx < 0 {
		mx += b.width
	}
	my := (inner.Y - rect.Y - oy) % b.height
	if my < 0 {
		my += b.height
	}
	endX := inner.X + inner.Width
	endY := inner.Y + inner.Height
	for x := inner.X - mx; x < endX; x += b.width {
		for y := inner.Y - my; y < endY; y += b.height {
			g.DrawBitmap(b, x, y)
		}
	}
}

// spriteLess orders the draw list by z-index, then insertion index.
func spriteLess(a, b *Sprite) bool {
	if a.z != b.z {
		return a.z < b.z
	}
	return a.index <= b.index
}

// mergeSort sorts sc.visible in-place using sc.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (sc *Scene) mergeSort() {
	n := len(sc.visible)
	if n <= 1 {
		return
	}
	if cap(sc.sortBuf) < n {
		sc.sortBuf = make([]*Sprite, n)
	}
	sc.sortBuf = sc.sortBuf[:n]

	a := sc.visible
	b := sc.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(sc.visible, sc.sortBuf)
	}
	clear(sc.sortBuf)
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []*Sprite, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if spriteLess(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
