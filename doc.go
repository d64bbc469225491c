// Package inkwell is a 1-bit bitmap blitter and sprite system for
// monochrome, word-aligned framebuffers.
//
// Inkwell composites packed 1-bpp bitmaps with optional 1-bpp masks into a
// frame 32 bits at a time, and manages a retained set of axis-aligned
// sprites with visibility culling, z-ordered drawing, and swept collision
// detection and response.
//
// # Quick start
//
// A [Host] supplies the frame, memory, files, and image decoding. The
// [MemoryHost] keeps everything in memory; ebitenhost and termhost put the
// frame in a window or a terminal.
//
//	host := inkwell.NewMemoryHost(inkwell.MemoryHostConfig{FS: os.DirFS("assets")})
//	g := inkwell.NewGraphics(host)
//	scene := inkwell.NewScene(g, inkwell.SceneConfig{})
//
//	ball, err := inkwell.LoadBitmapContainer(host, "ball.inkb")
//	if err != nil {
//		log.Fatal(err)
//	}
//	s := inkwell.NewSprite("ball")
//	s.SetBitmap(ball)
//	s.SetPosition(200, 120)
//	s.SetCollisionsEnabled(true)
//	scene.Add(s)
//
// Each frame runs the Move, Update, Draw triad:
//
//	s.MoveBy(vx*dt, vy*dt)
//	scene.Move(dt)   // follow, sweep, resolve
//	scene.Update()   // cull, update hooks, sort
//	g.Clear(inkwell.ColorWhite)
//	scene.Draw()     // blit
//
// # Bitmaps
//
// A [Bitmap] stores only the tight bounding box of its opaque pixels, in rows
// padded to whole 32-bit words. Bitmaps come from a host image
// ([LoadBitmap]), from an [image.Image] ([BitmapFromImage]), or from the
// container format ([LoadBitmapContainer], [EncodeBitmap]). A [BitmapTable]
// holds a sequence of bitmaps backed by one buffer or one decompression
// arena.
//
// # Collisions
//
// Sprites moved with [Sprite.MoveTo] are swept from their position at the
// start of the motion. [Scene.Move] tests the sweep against the collision
// grid and applies the sprite's [CollisionType]: slide, freeze, bounce,
// overlap, or ignore. The type can be negotiated per pair with
// [Sprite.SetCollisionTypeFunc]. Every contact is recorded as a
// [SpriteCollision] and optionally forwarded to a [CollisionSink]; the
// inkwell/ecs module publishes them as [Donburi] events.
//
// Scrolling uses [Scene.SetDrawOffset] or the tweened [Scene.ScrollTo] (via
// [gween]).
//
// [Donburi]: https://github.com/yohamta/donburi
// [gween]: https://github.com/tanema/gween
package inkwell
