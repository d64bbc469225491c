package inkwell

import "testing"

// tileTable loads a two-entry table: GID 1 is a solid white 2x2 tile, GID 2 a
// tile with a white left column.
func tileTable(t *testing.T, host *MemoryHost) *BitmapTable {
	t.Helper()
	alloc := NewMemoryHost(MemoryHostConfig{})
	data, err := EncodeBitmapTable([]*Bitmap{
		patternBitmap(t, alloc, "##", "##"),
		patternBitmap(t, alloc, "#.", "#."),
	}, EncodeOptions{Compress: true})
	if err != nil {
		t.Fatal(err)
	}
	buf, err := host.Alloc(len(data))
	if err != nil {
		t.Fatal(err)
	}
	copy(buf, data)
	table, err := NewBitmapTableFromContainer(host, buf, TableOptions{})
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestTileMapData(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	table := tileTable(t, host)
	defer table.Free()
	m := NewTileMap("map", table, 2, 2, 3, 2)
	defer m.Free()

	if cols, rows := m.Size(); cols != 3 || rows != 2 {
		t.Errorf("Size = %d, %d", cols, rows)
	}
	if w, h := m.Sprite().Size(); w != 6 || h != 4 {
		t.Errorf("sprite size = %v, %v", w, h)
	}
	if m.Sprite().UserData != m {
		t.Error("sprite does not point back at the map")
	}

	if err := m.SetData([]uint32{1, 2}); err == nil {
		t.Error("short data accepted")
	}
	if err := m.SetData([]uint32{1, 0, 2, 0, 1, 0}); err != nil {
		t.Fatal(err)
	}
	if m.Tile(2, 0) != 2 || m.Tile(1, 1) != 1 {
		t.Errorf("tiles = %d, %d", m.Tile(2, 0), m.Tile(1, 1))
	}
	m.SetTile(0, 1, 2)
	m.SetTile(5, 5, 2)
	if m.Tile(0, 1) != 2 || m.Tile(5, 5) != 0 || m.Tile(-1, 0) != 0 {
		t.Error("SetTile or Tile out of range misbehaved")
	}
}

func TestTileMapTileAt(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	table := tileTable(t, host)
	defer table.Free()
	m := NewTileMap("map", table, 2, 2, 3, 2)
	defer m.Free()
	m.Sprite().SetPosition(10, 10)

	if col, row, ok := m.TileAt(13, 11); !ok || col != 1 || row != 0 {
		t.Errorf("TileAt(13, 11) = %d, %d, %v", col, row, ok)
	}
	if _, _, ok := m.TileAt(16, 10); ok {
		t.Error("point past the right edge is inside")
	}
}

func TestTileMapDraw(t *testing.T) {
	host, sc := newTestScene(16, 4)
	table := tileTable(t, host)
	defer table.Free()
	m := NewTileMap("map", table, 2, 2, 3, 1)
	defer m.Free()
	if err := m.SetData([]uint32{1, 0, 2}); err != nil {
		t.Fatal(err)
	}
	sc.Add(m.Sprite())

	sc.Update()
	sc.Draw()
	for y := 0; y < 2; y++ {
		if got := frameString(host.Frame(), y, 0, 8); got != "##..#..." {
			t.Errorf("row %d = %q", y, got)
		}
	}
}

func TestTileMapAnimation(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	table := tileTable(t, host)
	defer table.Free()
	m := NewTileMap("map", table, 2, 2, 1, 1)
	defer m.Free()

	m.SetAnimation(1, []AnimFrame{{GID: 1, Duration: 100}, {GID: 2, Duration: 100}})
	if m.resolve(1) != 1 {
		t.Errorf("frame at 0ms = %d", m.resolve(1))
	}
	m.Update(0.15)
	if m.resolve(1) != 2 {
		t.Errorf("frame at 150ms = %d", m.resolve(1))
	}
	m.Update(0.1)
	if m.resolve(1) != 1 {
		t.Errorf("frame at 250ms = %d, want the cycle to wrap", m.resolve(1))
	}
	if m.resolve(2) != 2 {
		t.Error("unanimated GID changed")
	}

	m.SetAnimation(1, nil)
	if m.resolve(1) != 1 {
		t.Error("animation not removed")
	}
	if m.bitmap(0) != nil || m.bitmap(9) != nil {
		t.Error("empty or unknown GID resolved to a bitmap")
	}
}

func TestTileMapHoldsTableStorage(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	table := tileTable(t, host)
	m := NewTileMap("map", table, 2, 2, 1, 1)

	table.Free()
	if host.Outstanding() == 0 {
		t.Fatal("table storage released while the map still draws from it")
	}
	m.Free()
	if host.Outstanding() != 0 {
		t.Errorf("Outstanding = %d after the map was freed", host.Outstanding())
	}
}
