package inkwell

import "math"

// cornerTolerance is how far, in scene units, a sliding sprite may clip a
// corner before the contact counts.
const cornerTolerance = 1

// SpriteCollision records one contact found by Move or CheckCollisions.
// Positions are in sprite position space (the anchor point), rectangles are
// full sprite rectangles.
type SpriteCollision struct {
	Type   CollisionType
	Sprite *Sprite
	Other  *Sprite

	// Normal points from Sprite toward Other along the contact axis.
	Normal Vec2
	// Touch is where Sprite's position is when it first touches Other.
	Touch Vec2
	// Goal is the position Sprite was moving to.
	Goal Vec2

	Rect      RectF
	OtherRect RectF
}

// CollisionSink receives every collision recorded by Scene.Move.
type CollisionSink interface {
	EmitCollision(c SpriteCollision)
}

// pairKey is a directed pair of sprite IDs.
type pairKey struct {
	sprite, other uint32
}

// pairCache memoizes negotiated collision types per directed pair.
type pairCache struct {
	types map[pairKey]CollisionType
}

func (c *pairCache) get(s, other *Sprite) (CollisionType, bool) {
	t, ok := c.types[pairKey{s.id, other.id}]
	return t, ok
}

func (c *pairCache) put(s, other *Sprite, t CollisionType) {
	if c.types == nil {
		c.types = make(map[pairKey]CollisionType)
	}
	c.types[pairKey{s.id, other.id}] = t
}

// removeSprite drops every pair s takes part in, in either direction.
func (c *pairCache) removeSprite(s *Sprite) {
	for k := range c.types {
		if k.sprite == s.id || k.other == s.id {
			delete(c.types, k)
		}
	}
}

func (c *pairCache) clear() { clear(c.types) }

func (c *pairCache) len() int { return len(c.types) }

// collisionTypeFor returns how s responds to other.
func (sc *Scene) collisionTypeFor(s, other *Sprite) CollisionType {
	if s.collisionTypeFn == nil {
		return s.collisionType
	}
	if s.cacheCollisionType {
		if t, ok := sc.pairs.get(s, other); ok {
			return t
		}
	}
	t := validCollisionType(s.collisionTypeFn(s, other))
	if s.cacheCollisionType {
		sc.pairs.put(s, other, t)
	}
	return t
}

// resolveContact applies response t to s1 hitting s2. d moves s1's collision
// center back to the touch point; n1 and n2 are the entry and exit normals.
// overlaps is false when the contact was found by the tunneling sweep.
func (sc *Scene) resolveContact(t CollisionType, s1, s2 *Sprite, d, n1, n2 Vec2, overlaps, resolve bool, out []SpriteCollision) []SpriteCollision {
	c1 := &s1.collision
	c2 := &s2.collision

	goal := c1.center
	move := Vec2{X: c1.center.X - c1.lastCenter.X, Y: c1.center.Y - c1.lastCenter.Y}
	touch := Vec2{X: c1.center.X + d.X, Y: c1.center.Y + d.Y}

	// Collision rect corner back to the sprite's anchor point.
	toPosX := -s1.innerRect.X + s1.width*s1.anchor.X
	toPosY := -s1.innerRect.Y + s1.height*s1.anchor.Y

	spriteGoal := Vec2{X: c1.rect.X + toPosX, Y: c1.rect.Y + toPosY}
	spriteTouch := Vec2{X: c1.rect.X + d.X + toPosX, Y: c1.rect.Y + d.Y + toPosY}
	touchRect := RectF{
		X:      touch.X - c1.rect.Width*0.5 - s1.innerRect.X,
		Y:      touch.Y - c1.rect.Height*0.5 - s1.innerRect.Y,
		Width:  s1.width,
		Height: s1.height,
	}
	otherRect := RectF{
		X:      c2.lastRect.X - s2.innerRect.X,
		Y:      c2.lastRect.Y - s2.innerRect.Y,
		Width:  s2.width,
		Height: s2.height,
	}

	dest := touch

	if !overlaps && t == CollisionSlide {
		// Sliding past a corner by less than the tolerance is not a hit.
		corner := touch
		switch {
		case n1.X > 0:
			corner.X += c1.rect.Width * 0.5
		case n1.X < 0:
			corner.X -= c1.rect.Width * 0.5
		}
		switch {
		case n1.Y < 0:
			corner.Y -= c1.rect.Height * 0.5
		case n1.Y > 0:
			corner.Y += c1.rect.Height * 0.5
		}
		if idx, ok := contactCorner(n1, n2); ok && pointInCorner(corner, c2.lastRect, idx, cornerTolerance) {
			return out
		}
	}

	moving := move.X != 0 || move.Y != 0
	switch t {
	case CollisionSlide:
		if overlaps && moving {
			if n1.X != 0 {
				dest.Y = goal.Y
			} else {
				dest.X = goal.X
			}
		}
	case CollisionBounce:
		// touch + d mirrors the goal about the touch point.
		if overlaps && moving {
			if n1.X != 0 {
				dest.X = touch.X + d.X
				dest.Y = goal.Y
			} else {
				dest.X = goal.X
				dest.Y = touch.Y + d.Y
			}
		}
	}

	if resolve && t != CollisionOverlap {
		s1.position = Vec2{
			X: dest.X - c1.rect.Width*0.5 + toPosX,
			Y: dest.Y - c1.rect.Height*0.5 + toPosY,
		}
		s1.DidMove()
		s1.resetMotion()
		s1.updateCollisionInstance()
	}

	return append(out, SpriteCollision{
		Type:      t,
		Sprite:    s1,
		Other:     s2,
		Normal:    n1,
		Touch:     spriteTouch,
		Goal:      spriteGoal,
		Rect:      touchRect,
		OtherRect: otherRect,
	})
}

// contactCorner picks the corner of the obstacle a sweep with entry normal n1
// and exit normal n2 can clip.
func contactCorner(n1, n2 Vec2) (int, bool) {
	switch {
	case n1.X < 0:
		if n2.Y > 0 {
			return cornerTopRight, true
		} else if n2.Y < 0 {
			return cornerBottomRight, true
		}
	case n1.X > 0:
		if n2.Y > 0 {
			return cornerTopLeft, true
		} else if n2.Y < 0 {
			return cornerBottomLeft, true
		}
	case n1.Y < 0:
		if n2.X > 0 {
			return cornerBottomLeft, true
		} else if n2.X < 0 {
			return cornerBottomRight, true
		}
	case n1.Y > 0:
		if n2.X > 0 {
			return cornerTopLeft, true
		} else if n2.X < 0 {
			return cornerTopRight, true
		}
	}
	return 0, false
}

// resolveMinimumDisplacement separates s1 from s2 along the axis needing the
// smaller push. The push direction comes from the sprites' last centers.
func (sc *Scene) resolveMinimumDisplacement(t CollisionType, s1, s2 *Sprite, resolve bool, out []SpriteCollision) []SpriteCollision {
	c1 := &s1.collision
	c2 := &s2.collision

	var maxDX, maxDY float64
	if c1.lastCenter.X < c2.lastCenter.X {
		maxDX = c2.lastRect.X - c1.rect.Right()
	} else {
		maxDX = c2.lastRect.Right() - c1.rect.X
	}
	if c1.lastCenter.Y < c2.lastCenter.Y {
		maxDY = c2.lastRect.Y - c1.rect.Bottom()
	} else {
		maxDY = c2.lastRect.Bottom() - c1.rect.Y
	}

	var d, n1, n2 Vec2
	if math.Abs(maxDX) < math.Abs(maxDY) {
		d.X = maxDX
		n1.X = sign(maxDX)
		n2.X = -n1.X
	} else {
		d.Y = maxDY
		n1.Y = sign(maxDY)
		n2.Y = -n1.Y
	}
	return sc.resolveContact(t, s1, s2, d, n1, n2, true, resolve, out)
}

// sweep runs the mover's center path against the obstacle grown by the
// mover's size.
func sweep(c1, c2 *collisionInstance) (segmentHit, bool) {
	sum := c2.lastRect.MinkowskiSum(c1.rect)
	return segmentRectIntersection(c1.lastCenter.X, c1.lastCenter.Y, c1.center.X, c1.center.Y, sum)
}

// resolveMoving detects and resolves every contact of one moving sprite.
func (sc *Scene) resolveMoving(s1 *Sprite) {
	s1.updateCollisionInstance()
	c1 := &s1.collision

	query := c1.lastRect.Union(c1.rect)
	sc.candidates = sc.colGrid.Query(query, sc.candidates[:0])
	sc.stats.candidates += len(sc.candidates)

	for _, it := range sc.candidates {
		s2 := it.Value
		if s2 == s1 {
			continue
		}
		t := sc.collisionTypeFor(s1, s2)
		if t == CollisionIgnore {
			continue
		}
		s2.updateCollisionInstance()
		c2 := &s2.collision

		if s1.fastCollisions || s2.fastCollisions {
			if c1.rect.Intersects(c2.lastRect) {
				sc.collisions = sc.resolveMinimumDisplacement(t, s1, s2, true, sc.collisions)
			}
			continue
		}

		v := Vec2{X: c1.center.X - c1.lastCenter.X, Y: c1.center.Y - c1.lastCenter.Y}

		if c1.rect.Intersects(c2.lastRect) {
			if !c1.lastRect.Intersects(c2.lastRect) && (v.X != 0 || v.Y != 0) {
				// Entered this frame: back up to the exact contact.
				if hit, ok := sweep(c1, c2); ok && hit.T1 < 1 {
					d := Vec2{X: v.X * (hit.T1 - 1), Y: v.Y * (hit.T1 - 1)}
					sc.collisions = sc.resolveContact(t, s1, s2, d, hit.N1, hit.N2, true, true, sc.collisions)
				}
			} else {
				sc.collisions = sc.resolveMinimumDisplacement(t, s1, s2, true, sc.collisions)
			}
			continue
		}

		// Tunneling: passed through s2 within one step.
		hit, ok := sweep(c1, c2)
		if ok && ((hit.T1 > 0 && hit.T1 < 1) || (hit.T1 == 0 && hit.T2 > 0)) {
			d := Vec2{X: v.X * (hit.T1 - 1), Y: v.Y * (hit.T1 - 1)}
			sc.collisions = sc.resolveContact(t, s1, s2, d, hit.N1, hit.N2, false, true, sc.collisions)
		}
	}
	clear(sc.candidates)
}

// CheckCollisions reports the sprites s currently overlaps without moving
// anything. The result is freshly allocated.
func (sc *Scene) CheckCollisions(s *Sprite) []SpriteCollision {
	if s.scene != sc {
		return nil
	}
	s.updateCollisionInstance()
	c1 := &s.collision

	candidates := sc.colGrid.Query(c1.rect, nil)
	var out []SpriteCollision
	for _, it := range candidates {
		s2 := it.Value
		if s2 == s {
			continue
		}
		t := sc.collisionTypeFor(s, s2)
		if t == CollisionIgnore {
			continue
		}
		s2.updateCollisionInstance()
		if c1.rect.Intersects(s2.collision.rect) {
			out = sc.resolveMinimumDisplacement(t, s, s2, false, out)
		}
	}
	return out
}
