package inkwell

import (
	"errors"
	"fmt"
)

// Device screen defaults. The frame stride is word aligned so the blitter can
// address every row as a run of 32-bit words.
const (
	ScreenWidth  = 400
	ScreenHeight = 240
	ScreenStride = 52
)

// Color is the value of a single 1-bit pixel as seen through a bitmap's mask.
type Color uint8

const (
	ColorBlack Color = iota // data bit clear
	ColorWhite              // data bit set
	ColorClear              // masked out or outside the crop bounds
)

// String returns the color name.
func (c Color) String() string {
	switch c {
	case ColorBlack:
		return "black"
	case ColorWhite:
		return "white"
	case ColorClear:
		return "clear"
	}
	return fmt.Sprintf("Color(%d)", uint8(c))
}

// CollisionType selects how a moving sprite responds to another sprite.
type CollisionType uint8

const (
	CollisionSlide   CollisionType = iota // stop along the normal, keep moving along the surface
	CollisionFreeze                       // stop at the touch point
	CollisionOverlap                      // report only, never reposition

	// CollisionBounce reflects the motion left over after contact. Along the
	// contact normal the sprite lands at the goal mirrored about the touch
	// point (2*touch - goal), so it ends as far back from the contact as the
	// goal lay past it rather than resting on the touch point. The other
	// axis keeps the goal.
	CollisionBounce

	CollisionIgnore // skip the pair before any geometry work
)

var collisionTypeNames = [...]string{"slide", "freeze", "overlap", "bounce", "ignore"}

// String returns the collision type name.
func (t CollisionType) String() string {
	if int(t) < len(collisionTypeNames) {
		return collisionTypeNames[t]
	}
	return fmt.Sprintf("CollisionType(%d)", uint8(t))
}

// validCollisionType maps values outside the enum to CollisionFreeze.
func validCollisionType(t CollisionType) CollisionType {
	if t <= CollisionIgnore {
		return t
	}
	return CollisionFreeze
}

// ClipReference selects the space a sprite's clip rectangle is expressed in.
type ClipReference uint8

const (
	ClipRelative ClipReference = iota // offset by the sprite's screen position
	ClipAbsolute                      // screen coordinates
)

// DrawMode is how a sprite renders itself.
type DrawMode uint8

const (
	DrawEmpty DrawMode = iota
	DrawBitmap
	DrawTiled
	DrawCustom
)

// Sentinel errors returned (wrapped) by loaders. Match them with errors.Is.
var (
	ErrAllocation = errors.New("inkwell: allocation failed")
	ErrIO         = errors.New("inkwell: i/o failure")
	ErrFormat     = errors.New("inkwell: malformed container")
	ErrNotFound   = errors.New("inkwell: not found")
)

// FormatError reports a container field that is inconsistent with the
// buffer it was read from.
type FormatError struct {
	Offset int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("inkwell: malformed container at offset %d: %s", e.Offset, e.Reason)
}

// Unwrap returns ErrFormat.
func (e *FormatError) Unwrap() error { return ErrFormat }
