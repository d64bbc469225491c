package inkwell

import "testing"

func TestNewSpriteDefaults(t *testing.T) {
	s := NewSprite("hero")
	if s.Index() != -1 || s.Added() {
		t.Errorf("detached sprite index = %d, added = %v", s.Index(), s.Added())
	}
	if s.Center() != (Vec2{X: 0.5, Y: 0.5}) {
		t.Errorf("Center = %+v", s.Center())
	}
	if !s.Visible() {
		t.Error("new sprite is hidden")
	}
	if s.DrawMode() != DrawEmpty {
		t.Errorf("DrawMode = %v", s.DrawMode())
	}
	if s.CollisionsEnabled() {
		t.Error("collisions enabled by default")
	}
	if typ, negotiated := s.CollisionType(); typ != CollisionSlide || negotiated {
		t.Errorf("CollisionType = %v, %v", typ, negotiated)
	}
	if other := NewSprite("other"); other.ID() == s.ID() {
		t.Error("sprite IDs are not unique")
	}
}

func TestSpriteSetBitmapAdoptsSize(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	b := patternBitmap(t, host, "      ", "  ##  ", "      ", "      ")
	defer b.Free()

	s := NewSprite("s")
	s.SetBitmap(b)
	if w, h := s.Size(); w != 6 || h != 4 {
		t.Errorf("Size = %v, %v; want 6, 4", w, h)
	}
	s.SetSize(20, 20)
	if w, _ := s.Size(); w != 6 {
		t.Error("SetSize changed a bitmap sprite")
	}
	if s.Bitmap() != b || s.DrawMode() != DrawBitmap {
		t.Error("bitmap not installed")
	}

	s.SetBitmap(nil)
	if s.DrawMode() != DrawEmpty || s.Bitmap() != nil {
		t.Error("nil bitmap did not empty the sprite")
	}
	if w, _ := s.Size(); w != 6 {
		t.Error("emptying changed the size")
	}
}

func TestSpriteTiledKeepsSize(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	b := patternBitmap(t, host, "#.", ".#")
	defer b.Free()

	s := NewSprite("floor")
	s.SetSize(30, 10)
	s.SetTileBitmap(b)
	if w, h := s.Size(); w != 30 || h != 10 {
		t.Errorf("Size = %v, %v", w, h)
	}
	s.SetTileOffset(1, 0)
	if dx, dy := s.TileOffset(); dx != 1 || dy != 0 {
		t.Errorf("TileOffset = %d, %d", dx, dy)
	}
}

func TestSpriteInvalidCollisionTypeBecomesFreeze(t *testing.T) {
	s := NewSprite("s")
	s.SetCollisionType(CollisionType(42))
	if typ, _ := s.CollisionType(); typ != CollisionFreeze {
		t.Errorf("CollisionType = %v, want freeze", typ)
	}
	if got := CollisionType(42).String(); got != "CollisionType(42)" {
		t.Errorf("String = %q", got)
	}
}

func TestSpriteCollisionTypeFuncResetsStaticType(t *testing.T) {
	s := NewSprite("s")
	s.SetCollisionType(CollisionBounce)
	s.SetCollisionTypeFunc(func(_, _ *Sprite) CollisionType { return CollisionOverlap })
	if typ, negotiated := s.CollisionType(); typ != CollisionSlide || !negotiated {
		t.Errorf("CollisionType = %v, %v; want slide, true", typ, negotiated)
	}
	s.SetCollisionTypeFunc(nil)
	if _, negotiated := s.CollisionType(); negotiated {
		t.Error("nil callback still negotiates")
	}
}

func TestSpriteCenterPosition(t *testing.T) {
	s := NewSprite("s")
	s.SetSize(10, 20)
	s.SetCenter(0, 0)
	s.SetPosition(5, 5)
	if got := s.CenterPosition(); got != (Vec2{X: 10, Y: 15}) {
		t.Errorf("CenterPosition = %+v", got)
	}
	s.SetCenter(1, 1)
	if got := s.CenterPosition(); got != (Vec2{X: 0, Y: -5}) {
		t.Errorf("CenterPosition = %+v", got)
	}
}

func TestSpriteCollisionRect(t *testing.T) {
	s := NewSprite("s")
	s.SetSize(16, 16)
	if got := s.CollisionRect(); got != (RectF{X: -8, Y: -8, Width: 16, Height: 16}) {
		t.Errorf("CollisionRect = %+v", got)
	}
	s.SetCollisionRect(2, 3, 4, 5)
	if got := s.CollisionRect(); got != (RectF{X: -6, Y: -5, Width: 4, Height: 5}) {
		t.Errorf("inner CollisionRect = %+v", got)
	}
	s.ClearCollisionRect()
	if got := s.CollisionRect(); got.Width != 16 {
		t.Errorf("cleared CollisionRect = %+v", got)
	}
}

func TestSpriteScreenRectRounding(t *testing.T) {
	_, sc := newTestScene(100, 100)
	s := NewSprite("s")
	s.SetCenter(0, 0)
	s.SetSize(7.2, 3)
	s.SetPosition(10.4, 20.6)
	sc.Add(s)
	sc.SetDrawOffset(3, -2)
	sc.Update()

	if !s.IsVisibleOnScreen() {
		t.Fatal("sprite culled")
	}
	if got := s.ScreenRect(); got != (Rect{X: 13, Y: 19, Width: 8, Height: 3}) {
		t.Errorf("ScreenRect = %+v", got)
	}
}

func TestSpriteClipRectReference(t *testing.T) {
	_, sc := newTestScene(100, 100)
	s := NewSprite("s")
	s.SetCenter(0, 0)
	s.SetSize(10, 10)
	s.SetPosition(20, 30)
	sc.Add(s)

	s.SetClipRect(1, 2, 4, 4)
	if got := s.measureClipRect(); got != (Rect{X: 21, Y: 32, Width: 4, Height: 4}) {
		t.Errorf("relative clip = %+v", got)
	}
	s.SetClipRectReference(ClipAbsolute)
	if got := s.measureClipRect(); got != (Rect{X: 1, Y: 2, Width: 4, Height: 4}) {
		t.Errorf("absolute clip = %+v", got)
	}
	s.ClearClipRect()
	if got := s.measureClipRect(); got != sc.ScreenClipRect() {
		t.Errorf("cleared clip = %+v", got)
	}

	sc.SetScreenClipRect(0, 0, 50, 50)
	s.SetIgnoresScreenClip(true)
	if got := s.measureClipRect(); got != (Rect{Width: 100, Height: 100}) {
		t.Errorf("clip ignoring the screen clip = %+v", got)
	}
}

func TestSpritePinnedLeavesCollisionGrid(t *testing.T) {
	_, sc := newTestScene(100, 100)
	s := newBox("hud", 10, 10, 4, 4)
	sc.Add(s)
	if sc.colGrid.Len() != 1 {
		t.Fatalf("collision grid Len = %d", sc.colGrid.Len())
	}

	s.SetIgnoresDrawOffset(true)
	if sc.colGrid.Len() != 0 {
		t.Error("pinned sprite still in the collision grid")
	}
	if !s.visItem.Fixed {
		t.Error("pinned sprite is not fixed in the visibility grid")
	}

	s.SetVisible(false)
	if sc.visGrid.Len() != 0 {
		t.Error("hidden sprite still in the visibility grid")
	}
}

func TestSpriteFree(t *testing.T) {
	_, sc := newTestScene(100, 100)
	s := newBox("s", 10, 10, 4, 4)
	s.UserData = 7
	s.SetUpdateFunc(func(*Sprite) {})
	sc.Add(s)

	s.Free()
	if s.Added() || sc.Len() != 0 {
		t.Error("Free did not detach the sprite")
	}
	if s.UserData != nil || s.updateFn != nil {
		t.Error("Free kept references")
	}
}
