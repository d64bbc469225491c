package inkwell

import (
	"math"
	"testing"
)

// setupBenchScene creates a device-sized Scene with n colliding 10x6 bitmap
// sprites laid out on a 20-unit lattice, so neighbors do not overlap.
func setupBenchScene(b *testing.B, n int) (*MemoryHost, *Scene, []*Sprite) {
	host := NewMemoryHost(MemoryHostConfig{})
	sc := NewScene(NewGraphics(host), SceneConfig{
		GridBounds: RectF{Width: 2000, Height: 2000},
		CellSize:   32,
	})
	bmp := patternBitmap(b, host,
		"  ######  ",
		" #......# ",
		"#........#",
		"#........#",
		" #......# ",
		"  ######  ",
	)
	sprites := make([]*Sprite, n)
	for i := range sprites {
		s := NewSprite("sp")
		s.SetBitmap(bmp)
		s.SetCollisionsEnabled(true)
		s.SetPosition(float64(i%100)*20, float64(i/100)*20)
		sc.Add(s)
		sprites[i] = s
	}
	return host, sc, sprites
}

// --- Blit Benchmarks ---

func BenchmarkBlit_Masked(b *testing.B) {
	host := NewMemoryHost(MemoryHostConfig{})
	g := NewGraphics(host)
	bmp := patternBitmap(b, host, wideSprite...)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.DrawBitmap(bmp, i%ScreenWidth-20, i%ScreenHeight)
	}
}

func BenchmarkBlit_Opaque(b *testing.B) {
	host := NewMemoryHost(MemoryHostConfig{})
	g := NewGraphics(host)
	bmp := patternBitmap(b, host, "#.#.#.#.#.#.#.#.#.#.#.#.#.#.#.#.#.#.#.#.")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.DrawBitmap(bmp, i%ScreenWidth, i%ScreenHeight)
	}
}

// --- Scene Benchmarks ---

func BenchmarkMove_1000Sprites_AllMoving(b *testing.B) {
	_, sc, sprites := setupBenchScene(b, 1000)
	sc.Move(1.0 / 30) // warmup

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d := math.Sin(float64(i) * 0.1)
		for _, s := range sprites {
			s.MoveBy(d, 0)
		}
		sc.Move(1.0 / 30)
	}
}

func BenchmarkUpdateDraw_1000Sprites(b *testing.B) {
	_, sc, _ := setupBenchScene(b, 1000)
	sc.Update() // warmup
	sc.Draw()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sc.Update()
		sc.Draw()
	}
}

func BenchmarkUpdate_1000Sprites_Scrolling(b *testing.B) {
	_, sc, _ := setupBenchScene(b, 1000)
	sc.Update()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sc.SetDrawOffset(-(i % 1600), 0)
		sc.Update()
	}
}

func BenchmarkGridQuery(b *testing.B) {
	g := NewGrid[int](RectF{Width: 2000, Height: 2000}, 32)
	for i := 0; i < 5000; i++ {
		g.Add(NewGridItem(i), RectF{X: float64(i%100) * 20, Y: float64(i/100) * 20, Width: 16, Height: 16})
	}
	var dst []*GridItem[int]

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		dst = g.Query(RectF{X: float64(i % 1600), Y: 100, Width: 400, Height: 240}, dst[:0])
	}
}
