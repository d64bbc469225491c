// Package ecs provides ECS adapters for inkwell.
package ecs

import (
	"github.com/phanxgames/inkwell"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// CollisionEventType is the Donburi event type for inkwell collision records.
// Subscribe to this in your ECS systems to receive every contact resolved by
// Scene.Move.
var CollisionEventType = events.NewEventType[inkwell.SpriteCollision]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates a CollisionSink backed by a Donburi world.
// Collisions are published to CollisionEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) inkwell.CollisionSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitCollision(c inkwell.SpriteCollision) {
	CollisionEventType.Publish(s.world, c)
}

// SpriteEntity links a sprite to the entity that owns it. Store the entity
// in Sprite.UserData to look it up from a collision record.
type SpriteEntity struct {
	Entity donburi.Entity
}

// EntityOf returns the entity stored in s.UserData by a SpriteEntity.
func EntityOf(s *inkwell.Sprite) (donburi.Entity, bool) {
	if s == nil {
		return donburi.Null, false
	}
	se, ok := s.UserData.(SpriteEntity)
	if !ok {
		return donburi.Null, false
	}
	return se.Entity, true
}
