// Package ecs provides ECS adapters for inkwell's collision records.
//
// The primary adapter is [NewDonburiSink], which bridges the collisions
// recorded by Scene.Move into a [Donburi] world as typed events.
// Subscribe to [CollisionEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	scene.SetCollisionSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
