package inkwell

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates a sprite's position. Create one with TweenPosition and
// call Update(dt) each frame before Scene.Move. Each step goes through
// MoveTo, so the sprite sweeps and collides along the way. If the sprite is
// removed from its scene, the group stops immediately.
//
// There is no global animation manager; users call Update themselves.
type TweenGroup struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	target *Sprite
	Done   bool
}

// TweenPosition creates a TweenGroup that moves s to (toX, toY) over duration
// seconds using the easing function.
func TweenPosition(s *Sprite, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	return &TweenGroup{
		tweenX: gween.New(float32(s.position.X), float32(toX), duration, fn),
		tweenY: gween.New(float32(s.position.Y), float32(toY), duration, fn),
		target: s,
	}
}

// Update advances the tween by dt seconds and moves the sprite.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if g.target.scene == nil {
		g.Done = true
		return
	}
	x, doneX := g.tweenX.Update(dt)
	y, doneY := g.tweenY.Update(dt)
	g.target.MoveTo(float64(x), float64(y))
	g.Done = doneX && doneY
}
