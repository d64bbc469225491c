package inkwell

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const defaultCellSize = 64

// SceneConfig configures a Scene. The zero value covers the screen with
// 64-unit cells.
type SceneConfig struct {
	// GridBounds is the area the spatial grids cover. Sprites outside it are
	// still tracked, in the edge cells.
	GridBounds RectF
	CellSize   float64
}

// scrollAnim holds an active draw-offset tween.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Scene owns a set of sprites, the visibility and collision grids, and the
// per-frame state of the Move, Update, Draw triad. Scenes are independent of
// each other and not safe for concurrent use.
type Scene struct {
	g *Graphics

	sprites   []*Sprite
	moving    []*Sprite
	following []*Sprite
	visible   []*Sprite
	sortBuf   []*Sprite

	collisions []SpriteCollision
	pairs      pairCache
	sink       CollisionSink

	visGrid *Grid[*Sprite]
	colGrid *Grid[*Sprite]

	candidates []*GridItem[*Sprite]
	queryBuf   []*GridItem[*Sprite]
	visBuf     []*GridItem[*Sprite]

	offsetX    int
	offsetY    int
	screenClip Rect
	scroll     *scrollAnim

	debug      bool
	stats      debugStats
	testRunner *TestRunner

	// ScreenshotDir is where Screenshot writes PNG files.
	ScreenshotDir   string
	screenshotQueue []string
	screenshotSeq   int
}

// NewScene creates an empty scene drawing through g.
func NewScene(g *Graphics, cfg SceneConfig) *Scene {
	bounds := cfg.GridBounds
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = g.ScreenRect().RectF()
	}
	cell := cfg.CellSize
	if cell <= 0 {
		cell = defaultCellSize
	}
	return &Scene{
		g:             g,
		visGrid:       NewGrid[*Sprite](bounds, cell),
		colGrid:       NewGrid[*Sprite](bounds, cell),
		screenClip:    g.ScreenRect(),
		ScreenshotDir: "screenshots",
	}
}

// Graphics returns the drawing surface the scene renders to.
func (sc *Scene) Graphics() *Graphics { return sc.g }

// Add inserts s at the end of the draw-order tie-break sequence. A sprite in
// another scene is moved here. Adding twice is a no-op.
func (sc *Scene) Add(s *Sprite) {
	if s.scene == sc {
		return
	}
	if s.scene != nil {
		s.scene.Remove(s)
	}
	s.scene = sc
	s.index = len(sc.sprites)
	s.hasLastRect = false
	sc.sprites = append(sc.sprites, s)
	s.updateCollisions()
	s.updateVisibility()
	if s.follow.target != nil {
		sc.following = append(sc.following, s)
	}
}

// Remove detaches s. Its grid memberships, cached pairs, follow links in
// both directions, and pending motion are dropped. Later sprites are
// renumbered so indices stay dense.
func (sc *Scene) Remove(s *Sprite) {
	if s.scene != sc {
		return
	}
	sc.colGrid.Remove(s.colItem)
	sc.visGrid.Remove(s.visItem)
	sc.pairs.removeSprite(s)
	s.unfollow()
	sc.moving = removeSprite(sc.moving, s)
	if s.onScreen {
		sc.visible = removeSprite(sc.visible, s)
		s.onScreen = false
	}

	for _, o := range sc.sprites {
		if o.follow.target == s {
			o.unfollow()
		}
	}
	for _, o := range sc.sprites[s.index+1:] {
		o.index--
	}
	sc.sprites = removeSprite(sc.sprites, s)

	s.scene = nil
	s.index = -1
	s.hasLastRect = false
	s.moving = false
}

// RemoveAll detaches every sprite and clears all per-frame state.
func (sc *Scene) RemoveAll() {
	for _, s := range sc.sprites {
		sc.colGrid.Remove(s.colItem)
		sc.visGrid.Remove(s.visItem)
		s.scene = nil
		s.index = -1
		s.hasLastRect = false
		s.moving = false
		s.onScreen = false
		s.follow.target = nil
	}
	clear(sc.sprites)
	sc.sprites = sc.sprites[:0]
	clear(sc.moving)
	sc.moving = sc.moving[:0]
	clear(sc.following)
	sc.following = sc.following[:0]
	clear(sc.visible)
	sc.visible = sc.visible[:0]
	sc.clearCollisions()
	sc.pairs.clear()
}

// Sprites returns the active sprites in insertion order. The slice is owned
// by the scene.
func (sc *Scene) Sprites() []*Sprite { return sc.sprites }

// SpriteByName returns the first sprite in insertion order with the given
// name, or nil.
func (sc *Scene) SpriteByName(name string) *Sprite {
	for _, s := range sc.sprites {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Len returns the number of active sprites.
func (sc *Scene) Len() int { return len(sc.sprites) }

// Collisions returns the records found by the last Move. The slice is owned
// by the scene and reused by the next Move.
func (sc *Scene) Collisions() []SpriteCollision { return sc.collisions }

// SetCollisionSink forwards every collision recorded by Move to sink. Nil
// disables forwarding.
func (sc *Scene) SetCollisionSink(sink CollisionSink) { sc.sink = sink }

func (sc *Scene) clearCollisions() {
	clear(sc.collisions)
	sc.collisions = sc.collisions[:0]
}

// Move advances the test runner, followers and scroll tweens by dt seconds,
// then detects and resolves collisions for every sprite moved since the last
// Move.
func (sc *Scene) Move(dt float64) {
	var t0 time.Time
	if sc.debug {
		t0 = time.Now()
		sc.stats = debugStats{}
	}

	sc.clearCollisions()
	if sc.testRunner != nil {
		sc.testRunner.step(sc)
	}
	sc.updateScroll(dt)
	sc.updateFollowers(dt)

	sc.stats.moving = len(sc.moving)
	for i := 0; i < len(sc.moving); i++ {
		s := sc.moving[i]
		if s.scene != sc || !s.collisionsEnabled {
			s.resetMotion()
			continue
		}
		sc.resolveMoving(s)
		s.resetMotion()
	}
	clear(sc.moving)
	sc.moving = sc.moving[:0]

	if sc.sink != nil {
		for _, c := range sc.collisions {
			sc.sink.EmitCollision(c)
		}
	}

	if sc.debug {
		sc.stats.collisions = len(sc.collisions)
		sc.stats.moveTime = time.Since(t0)
	}
}

// --- Draw offset and screen clip ---

// SetDrawOffset scrolls the view: every sprite not pinned with
// SetIgnoresDrawOffset is drawn shifted by (dx, dy). It cancels ScrollTo.
func (sc *Scene) SetDrawOffset(dx, dy int) {
	sc.scroll = nil
	sc.offsetX, sc.offsetY = dx, dy
}

// DrawOffset returns the current draw offset.
func (sc *Scene) DrawOffset() (dx, dy int) { return sc.offsetX, sc.offsetY }

// ScrollTo animates the draw offset to (dx, dy) over duration seconds using
// easeFn. The tween advances during Move.
func (sc *Scene) ScrollTo(dx, dy int, duration float32, easeFn ease.TweenFunc) {
	sc.scroll = &scrollAnim{
		tweenX: gween.New(float32(sc.offsetX), float32(dx), duration, easeFn),
		tweenY: gween.New(float32(sc.offsetY), float32(dy), duration, easeFn),
	}
}

// Scrolling reports whether a ScrollTo tween is running.
func (sc *Scene) Scrolling() bool { return sc.scroll != nil }

func (sc *Scene) updateScroll(dt float64) {
	if sc.scroll == nil {
		return
	}
	if !sc.scroll.doneX {
		val, done := sc.scroll.tweenX.Update(float32(dt))
		sc.offsetX = int(math.Round(float64(val)))
		sc.scroll.doneX = done
	}
	if !sc.scroll.doneY {
		val, done := sc.scroll.tweenY.Update(float32(dt))
		sc.offsetY = int(math.Round(float64(val)))
		sc.scroll.doneY = done
	}
	if sc.scroll.doneX && sc.scroll.doneY {
		sc.scroll = nil
	}
}

// SetScreenClipRect limits drawing of every sprite that does not ignore the
// screen clip.
func (sc *Scene) SetScreenClipRect(x, y, width, height int) {
	sc.screenClip = sc.g.ScreenRect().Intersection(Rect{X: x, Y: y, Width: width, Height: height})
}

// ClearScreenClipRect resets the screen clip to the whole screen.
func (sc *Scene) ClearScreenClipRect() {
	sc.screenClip = sc.g.ScreenRect()
}

// ScreenClipRect returns the screen clip.
func (sc *Scene) ScreenClipRect() Rect { return sc.screenClip }

// ResizeGrid re-buckets both grids over new bounds and cell size.
func (sc *Scene) ResizeGrid(bounds RectF, cellSize float64) {
	sc.visGrid.Resize(bounds, cellSize)
	sc.colGrid.Resize(bounds, cellSize)
}

// SetDebugMode enables per-frame statistics on stderr.
func (sc *Scene) SetDebugMode(enabled bool) { sc.debug = enabled }
