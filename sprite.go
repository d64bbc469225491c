package inkwell

import "math"

// DrawFunc renders a custom sprite. rect is the sprite's screen rectangle;
// the graphics draw offset is already set to its origin and the clip to the
// sprite's clip rect.
type DrawFunc func(s *Sprite, g *Graphics, rect Rect)

// UpdateFunc runs once per Update for every sprite that is on screen. It may
// change the sprite's bitmap, size, or position.
type UpdateFunc func(s *Sprite)

// CollisionTypeFunc negotiates the response of s when it hits other.
type CollisionTypeFunc func(s, other *Sprite) CollisionType

// --- ID counter ---

// spriteIDCounter is a plain counter (no atomic, scenes are single-threaded).
var spriteIDCounter uint32

func nextSpriteID() uint32 {
	spriteIDCounter++
	return spriteIDCounter
}

type followState struct {
	target      *Sprite
	velocity    float64
	offset      Vec2
	refreshRate float64
	elapsed     float64
	sampled     Vec2
	hasSample   bool
}

// collisionInstance caches the rectangles used while resolving one sprite.
type collisionInstance struct {
	rect       RectF
	center     Vec2
	lastRect   RectF
	lastCenter Vec2
}

// Sprite is an axis-aligned visual and collision unit. A sprite is created
// detached and takes part in Move, Update and Draw only after Scene.Add.
type Sprite struct {
	Name     string
	UserData any

	id    uint32
	scene *Scene
	index int

	position Vec2
	width    float64
	height   float64
	anchor   Vec2

	mode        DrawMode
	bitmap      *Bitmap
	tileOffsetX int
	tileOffsetY int
	drawFn      DrawFunc
	updateFn    UpdateFunc

	visible bool
	z       int

	collisionsEnabled  bool
	innerRect          RectF
	hasInnerRect       bool
	collisionType      CollisionType
	collisionTypeFn    CollisionTypeFunc
	cacheCollisionType bool
	fastCollisions     bool

	ignoresDrawOffset bool
	ignoresScreenClip bool
	clipRect          Rect
	hasClipRect       bool
	clipRef           ClipReference

	follow followState

	visItem     *GridItem[*Sprite]
	colItem     *GridItem[*Sprite]
	lastRect    RectF
	hasLastRect bool
	moving      bool
	collision   collisionInstance

	screenRect Rect
	screenClip Rect
	onScreen   bool
}

// NewSprite creates a detached, visible, empty sprite anchored at its center
// with collisions disabled and the Slide collision type.
func NewSprite(name string) *Sprite {
	s := &Sprite{
		Name:          name,
		id:            nextSpriteID(),
		index:         -1,
		anchor:        Vec2{X: 0.5, Y: 0.5},
		visible:       true,
		collisionType: CollisionSlide,
		clipRef:       ClipRelative,
	}
	s.visItem = NewGridItem(s)
	s.colItem = NewGridItem(s)
	return s
}

// ID returns the sprite's process-unique identifier.
func (s *Sprite) ID() uint32 { return s.id }

// Index returns the insertion index in the owning scene, or -1 when detached.
func (s *Sprite) Index() int { return s.index }

// Scene returns the scene the sprite was added to, or nil.
func (s *Sprite) Scene() *Scene { return s.scene }

// Added reports whether the sprite is in a scene.
func (s *Sprite) Added() bool { return s.scene != nil }

// --- Draw mode ---

func (s *Sprite) resetMode() {
	s.mode = DrawEmpty
	s.bitmap = nil
	s.drawFn = nil
}

// SetEmpty makes the sprite draw nothing. Its size is kept.
func (s *Sprite) SetEmpty() {
	s.resetMode()
}

// SetBitmap draws b at the sprite's rectangle and adopts b's full size. A nil
// bitmap empties the sprite.
func (s *Sprite) SetBitmap(b *Bitmap) {
	s.resetMode()
	if b == nil {
		return
	}
	s.mode = DrawBitmap
	s.bitmap = b
	s.width = float64(b.width)
	s.height = float64(b.height)
	s.updateCollisions()
	s.updateVisibility()
}

// SetTileBitmap repeats b across the sprite's rectangle. The size is left as
// is; set it with SetSize.
func (s *Sprite) SetTileBitmap(b *Bitmap) {
	s.resetMode()
	if b == nil {
		return
	}
	s.mode = DrawTiled
	s.bitmap = b
}

// SetTileOffset shifts the tile phase of a tiled sprite.
func (s *Sprite) SetTileOffset(dx, dy int) {
	s.tileOffsetX, s.tileOffsetY = dx, dy
}

// TileOffset returns the tile phase.
func (s *Sprite) TileOffset() (dx, dy int) { return s.tileOffsetX, s.tileOffsetY }

// SetDrawFunc renders the sprite with fn. A nil fn empties the sprite.
func (s *Sprite) SetDrawFunc(fn DrawFunc) {
	s.resetMode()
	if fn == nil {
		return
	}
	s.mode = DrawCustom
	s.drawFn = fn
}

// DrawMode returns how the sprite renders.
func (s *Sprite) DrawMode() DrawMode { return s.mode }

// Bitmap returns the plain or tiled bitmap, or nil.
func (s *Sprite) Bitmap() *Bitmap { return s.bitmap }

// SetUpdateFunc installs the per-frame hook run by Scene.Update.
func (s *Sprite) SetUpdateFunc(fn UpdateFunc) { s.updateFn = fn }

// --- Geometry ---

// Position returns the anchor point in scene coordinates.
func (s *Sprite) Position() Vec2 { return s.position }

// SetPosition teleports the sprite. Any sweep in progress is discarded.
func (s *Sprite) SetPosition(x, y float64) {
	s.position = Vec2{X: x, Y: y}
	s.hasLastRect = false
	s.updateCollisions()
	s.updateVisibility()
}

// MoveTo moves the sprite continuously: the next Move sweeps it from where it
// was before the first move of the frame to (x, y).
func (s *Sprite) MoveTo(x, y float64) {
	s.WillMove()
	s.position = Vec2{X: x, Y: y}
	s.DidMove()
}

// MoveBy is MoveTo relative to the current position.
func (s *Sprite) MoveBy(dx, dy float64) {
	s.MoveTo(s.position.X+dx, s.position.Y+dy)
}

// WillMove snapshots the collision rect for the sweep and queues the sprite
// for the next Move. The snapshot is taken once per motion.
func (s *Sprite) WillMove() {
	if !s.hasLastRect {
		s.lastRect = s.measureCollisionRect()
		s.hasLastRect = true
	}
	if s.scene != nil && !s.moving {
		s.moving = true
		s.scene.moving = append(s.scene.moving, s)
	}
}

// DidMove resubmits the sprite to the grids after a position change.
func (s *Sprite) DidMove() {
	s.updateCollisions()
	s.updateVisibility()
}

// SetNeedsCollisions queues a stationary sprite for collision resolution on
// the next Move.
func (s *Sprite) SetNeedsCollisions() {
	if s.collisionsEnabled {
		s.WillMove()
		s.DidMove()
	}
}

func (s *Sprite) resetMotion() {
	s.hasLastRect = false
	s.moving = false
}

// Size returns the sprite's width and height.
func (s *Sprite) Size() (width, height float64) { return s.width, s.height }

// SetSize resizes the sprite. Bitmap sprites keep their bitmap's size.
func (s *Sprite) SetSize(width, height float64) {
	if s.mode == DrawBitmap {
		return
	}
	s.width, s.height = width, height
	s.updateCollisions()
	s.updateVisibility()
}

// Center returns the normalized anchor.
func (s *Sprite) Center() Vec2 { return s.anchor }

// SetCenter sets the normalized anchor; (0, 0) is the top-left corner and
// (0.5, 0.5) the middle.
func (s *Sprite) SetCenter(cx, cy float64) {
	s.anchor = Vec2{X: cx, Y: cy}
	s.updateCollisions()
	s.updateVisibility()
}

// CenterPosition returns the geometric center of the sprite's rectangle.
func (s *Sprite) CenterPosition() Vec2 {
	return Vec2{
		X: s.position.X - s.width*s.anchor.X + s.width*0.5,
		Y: s.position.Y - s.height*s.anchor.Y + s.height*0.5,
	}
}

// --- Visibility and clipping ---

// SetVisible shows or hides the sprite.
func (s *Sprite) SetVisible(visible bool) {
	s.visible = visible
	s.updateVisibility()
}

// Visible reports the visibility flag.
func (s *Sprite) Visible() bool { return s.visible }

// IsVisibleOnScreen reports whether the last Update put the sprite in the draw
// list.
func (s *Sprite) IsVisibleOnScreen() bool { return s.onScreen }

// SetZIndex sets the draw order; lower values draw first.
func (s *Sprite) SetZIndex(z int) { s.z = z }

// ZIndex returns the draw order.
func (s *Sprite) ZIndex() int { return s.z }

// SetIgnoresDrawOffset pins the sprite to the screen. Pinned sprites match
// every visibility query and leave the collision grid.
func (s *Sprite) SetIgnoresDrawOffset(ignores bool) {
	s.ignoresDrawOffset = ignores
	s.updateCollisions()
	s.updateVisibility()
}

// SetIgnoresScreenClip lets the sprite draw outside the scene's screen clip.
func (s *Sprite) SetIgnoresScreenClip(ignores bool) { s.ignoresScreenClip = ignores }

// SetClipRect restricts drawing to r, interpreted per the clip reference.
func (s *Sprite) SetClipRect(x, y, width, height int) {
	s.clipRect = Rect{X: x, Y: y, Width: width, Height: height}
	s.hasClipRect = true
}

// ClearClipRect removes the sprite clip.
func (s *Sprite) ClearClipRect() {
	s.clipRect = Rect{}
	s.hasClipRect = false
}

// SetClipRectReference selects whether the clip rect is relative to the
// sprite's screen position or absolute.
func (s *Sprite) SetClipRectReference(ref ClipReference) { s.clipRef = ref }

// ScreenRect returns the screen rectangle recorded by the last Update.
func (s *Sprite) ScreenRect() Rect { return s.screenRect }

// --- Collisions ---

// SetCollisionsEnabled adds the sprite to or removes it from collision
// detection.
func (s *Sprite) SetCollisionsEnabled(enabled bool) {
	s.collisionsEnabled = enabled
	s.updateCollisions()
}

// CollisionsEnabled reports whether the sprite collides.
func (s *Sprite) CollisionsEnabled() bool { return s.collisionsEnabled }

// SetCollisionRect sets the collision box relative to the sprite's top-left
// corner.
func (s *Sprite) SetCollisionRect(x, y, width, height float64) {
	s.innerRect = RectF{X: x, Y: y, Width: width, Height: height}
	s.hasInnerRect = true
	s.updateCollisions()
}

// ClearCollisionRect makes the whole sprite rectangle collide.
func (s *Sprite) ClearCollisionRect() {
	s.innerRect = RectF{}
	s.hasInnerRect = false
	s.updateCollisions()
}

// CollisionRect returns the collision rectangle in scene coordinates.
func (s *Sprite) CollisionRect() RectF { return s.measureCollisionRect() }

// SetCollisionType sets the static response used when no callback is set.
func (s *Sprite) SetCollisionType(t CollisionType) {
	s.collisionType = validCollisionType(t)
}

// SetCollisionTypeFunc negotiates the response per pair. The static type is
// reset to Slide. A nil fn returns to the static type.
func (s *Sprite) SetCollisionTypeFunc(fn CollisionTypeFunc) {
	s.collisionTypeFn = fn
	s.collisionType = CollisionSlide
}

// CollisionType returns the static type and whether a callback overrides it.
func (s *Sprite) CollisionType() (t CollisionType, negotiated bool) {
	return s.collisionType, s.collisionTypeFn != nil
}

// SetCollisionTypeCaching memoizes negotiated types per pair. Disabling it
// drops the sprite's cached pairs.
func (s *Sprite) SetCollisionTypeCaching(enabled bool) {
	s.cacheCollisionType = enabled
	if !enabled && s.scene != nil {
		s.scene.pairs.removeSprite(s)
	}
}

// CollisionTypeCaching reports whether negotiated types are memoized.
func (s *Sprite) CollisionTypeCaching() bool { return s.cacheCollisionType }

// InvalidateCollisionType drops every cached pair involving the sprite.
func (s *Sprite) InvalidateCollisionType() {
	if s.scene != nil {
		s.scene.pairs.removeSprite(s)
	}
}

// SetFastCollisions resolves the sprite's contacts by minimum displacement
// only, skipping the swept test.
func (s *Sprite) SetFastCollisions(fast bool) { s.fastCollisions = fast }

// --- Follow ---

// SetFollowTarget makes the sprite chase target during Move. Nil stops
// following.
func (s *Sprite) SetFollowTarget(target *Sprite) {
	s.unfollow()
	s.follow.target = target
	s.follow.hasSample = false
	s.follow.elapsed = 0
	if target != nil && s.scene != nil {
		s.scene.following = append(s.scene.following, s)
	}
}

// FollowTarget returns the followed sprite, or nil.
func (s *Sprite) FollowTarget() *Sprite { return s.follow.target }

// SetFollowVelocity sets the chase speed in units per second.
func (s *Sprite) SetFollowVelocity(v float64) { s.follow.velocity = v }

// SetFollowOffset offsets the chase point from the target's center.
func (s *Sprite) SetFollowOffset(dx, dy float64) { s.follow.offset = Vec2{X: dx, Y: dy} }

// SetFollowRefreshRate samples the target's position every rate seconds
// instead of every frame. Zero tracks continuously.
func (s *Sprite) SetFollowRefreshRate(rate float64) { s.follow.refreshRate = rate }

func (s *Sprite) unfollow() {
	s.follow.target = nil
	if s.scene != nil {
		s.scene.following = removeSprite(s.scene.following, s)
	}
}

// Free removes the sprite from its scene and drops its references. The
// bitmap is not freed.
func (s *Sprite) Free() {
	if s.scene != nil {
		s.scene.Remove(s)
	}
	s.resetMode()
	s.updateFn = nil
	s.collisionTypeFn = nil
	s.follow = followState{}
	s.UserData = nil
}

// --- Measurement ---

func (s *Sprite) drawOffset() (float64, float64) {
	if s.scene == nil {
		return 0, 0
	}
	return float64(s.scene.offsetX), float64(s.scene.offsetY)
}

func (s *Sprite) measureRect() RectF {
	return RectF{
		X:      s.position.X - s.width*s.anchor.X,
		Y:      s.position.Y - s.height*s.anchor.Y,
		Width:  s.width,
		Height: s.height,
	}
}

func (s *Sprite) measureCollisionRect() RectF {
	r := s.measureRect()
	if s.ignoresDrawOffset {
		dx, dy := s.drawOffset()
		r = r.Offset(dx, dy)
	}
	if s.hasInnerRect {
		r.X += s.innerRect.X
		r.Y += s.innerRect.Y
		r.Width = s.innerRect.Width
		r.Height = s.innerRect.Height
	}
	return r
}

func (s *Sprite) measureScreenRect() Rect {
	r := s.measureRect()
	if !s.ignoresDrawOffset {
		dx, dy := s.drawOffset()
		r = r.Offset(dx, dy)
	}
	return Rect{
		X:      int(math.Round(r.X)),
		Y:      int(math.Round(r.Y)),
		Width:  int(math.Ceil(r.Width)),
		Height: int(math.Ceil(r.Height)),
	}
}

// screenClipBase is the clip every sprite starts from.
func (s *Sprite) screenClipBase() Rect {
	if s.scene == nil {
		return Rect{}
	}
	if s.ignoresScreenClip {
		return s.scene.g.ScreenRect()
	}
	return s.scene.screenClip
}

func (s *Sprite) measureClipRect() Rect {
	r := s.screenClipBase()
	if s.hasClipRect {
		clip := s.clipRect
		if s.clipRef == ClipRelative {
			sr := s.measureScreenRect()
			clip = clip.Offset(sr.X, sr.Y)
		}
		r = r.Intersection(clip)
	}
	return r
}

func (s *Sprite) updateCollisionInstance() {
	r := s.measureCollisionRect()
	last := r
	if s.hasLastRect {
		last = s.lastRect
	}
	s.collision = collisionInstance{
		rect:       r,
		center:     r.Center(),
		lastRect:   last,
		lastCenter: last.Center(),
	}
}

// --- Grid maintenance ---

func (s *Sprite) updateCollisions() {
	if s.scene == nil {
		return
	}
	if s.collisionsEnabled && !s.ignoresDrawOffset {
		r := s.measureCollisionRect()
		if s.hasLastRect {
			r = r.Union(s.lastRect)
		}
		s.scene.colGrid.Add(s.colItem, r)
	} else {
		s.scene.colGrid.Remove(s.colItem)
	}
}

func (s *Sprite) updateVisibility() {
	if s.scene == nil {
		return
	}
	if s.visible {
		s.visItem.Fixed = s.ignoresDrawOffset
		s.scene.visGrid.Add(s.visItem, s.measureRect())
	} else {
		s.scene.visGrid.Remove(s.visItem)
	}
}

// removeSprite deletes the first occurrence of s, keeping order.
func removeSprite(list []*Sprite, s *Sprite) []*Sprite {
	for i, v := range list {
		if v == s {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = nil
			return list[:len(list)-1]
		}
	}
	return list
}
