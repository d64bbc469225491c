package inkwell

import "math"

// updateFollowers steps every following sprite toward its target by at most
// velocity*dt. Moves go through MoveTo so followers collide like any other
// moving sprite.
func (sc *Scene) updateFollowers(dt float64) {
	for _, s := range sc.following {
		f := &s.follow
		if f.target == nil {
			continue
		}

		target := f.target.CenterPosition()
		current := s.CenterPosition()

		if f.refreshRate > 0 {
			f.elapsed += dt
			if !f.hasSample {
				f.sampled = target
				f.hasSample = true
			}
			if f.elapsed >= f.refreshRate {
				f.elapsed = math.Mod(f.elapsed, f.refreshRate)
				f.sampled = target
			}
			target = f.sampled
		}

		target.X += f.offset.X
		target.Y += f.offset.Y

		step := math.Abs(f.velocity * dt)
		dx := target.X - current.X
		dy := target.Y - current.Y
		dist := math.Hypot(dx, dy)

		goal := target
		if dist > step {
			goal.X = current.X + dx/dist*step
			goal.Y = current.Y + dy/dist*step
		}

		// Center back to the anchor.
		goal.X += -s.width*0.5 + s.width*s.anchor.X
		goal.Y += -s.height*0.5 + s.height*s.anchor.Y
		s.MoveTo(goal.X, goal.Y)
	}
}
