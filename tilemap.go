package inkwell

import "fmt"

// AnimFrame describes a single frame in a tile animation sequence.
type AnimFrame struct {
	GID      uint32 // tile GID for this frame
	Duration int    // milliseconds
}

// TileMap is a grid of tiles drawn from a BitmapTable through one custom
// sprite. GID 0 is empty; GID n draws table entry n-1. Only the tiles that
// reach the sprite's clip are blitted.
type TileMap struct {
	sprite *Sprite
	table  *BitmapTable

	// Tile dimensions in pixels.
	TileWidth  int
	TileHeight int

	data   []uint32 // row-major tile GIDs, len = cols * rows
	cols   int
	rows   int
	tiles  []*Bitmap
	anims  map[uint32][]AnimFrame
	cycle  map[uint32]int // total animation length in ms per base GID
	elapse int            // animation clock in ms
}

// NewTileMap creates a cols x rows map of empty tiles. The map's sprite is
// anchored at its top-left corner; add it to a scene with Scene.Add.
func NewTileMap(name string, table *BitmapTable, tileWidth, tileHeight, cols, rows int) *TileMap {
	m := &TileMap{
		table:      table,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		data:       make([]uint32, cols*rows),
		cols:       cols,
		rows:       rows,
	}
	if table != nil {
		m.tiles = make([]*Bitmap, table.Len())
		for i := range m.tiles {
			m.tiles[i] = table.Bitmap(i)
		}
	}
	m.sprite = NewSprite(name)
	m.sprite.SetCenter(0, 0)
	m.sprite.SetSize(float64(cols*tileWidth), float64(rows*tileHeight))
	m.sprite.SetDrawFunc(m.draw)
	m.sprite.UserData = m
	return m
}

// Sprite returns the sprite that draws the map.
func (m *TileMap) Sprite() *Sprite { return m.sprite }

// Size returns the map size in tiles.
func (m *TileMap) Size() (cols, rows int) { return m.cols, m.rows }

// SetData replaces every tile. data is row-major and must hold cols*rows GIDs.
func (m *TileMap) SetData(data []uint32) error {
	if len(data) != len(m.data) {
		return fmt.Errorf("inkwell: tile map data has %d tiles, want %d", len(data), len(m.data))
	}
	copy(m.data, data)
	return nil
}

// SetTile sets the GID at (col, row). Out-of-range cells are ignored.
func (m *TileMap) SetTile(col, row int, gid uint32) {
	if col < 0 || row < 0 || col >= m.cols || row >= m.rows {
		return
	}
	m.data[row*m.cols+col] = gid
}

// Tile returns the GID at (col, row), or 0 outside the map.
func (m *TileMap) Tile(col, row int) uint32 {
	if col < 0 || row < 0 || col >= m.cols || row >= m.rows {
		return 0
	}
	return m.data[row*m.cols+col]
}

// TileAt returns the cell under scene point (x, y).
func (m *TileMap) TileAt(x, y float64) (col, row int, ok bool) {
	r := m.sprite.measureRect()
	if !r.Contains(x, y) {
		return 0, 0, false
	}
	return int((x - r.X) / float64(m.TileWidth)), int((y - r.Y) / float64(m.TileHeight)), true
}

// SetAnimation makes every cell holding gid cycle through frames.
func (m *TileMap) SetAnimation(gid uint32, frames []AnimFrame) {
	if m.anims == nil {
		m.anims = make(map[uint32][]AnimFrame)
		m.cycle = make(map[uint32]int)
	}
	if len(frames) == 0 {
		delete(m.anims, gid)
		delete(m.cycle, gid)
		return
	}
	total := 0
	for _, f := range frames {
		total += max(f.Duration, 0)
	}
	m.anims[gid] = frames
	m.cycle[gid] = total
}

// Update advances tile animations by dt seconds.
func (m *TileMap) Update(dt float64) {
	m.elapse += int(dt * 1000)
}

// resolve returns the GID to draw for a cell holding gid.
func (m *TileMap) resolve(gid uint32) uint32 {
	frames, ok := m.anims[gid]
	if !ok {
		return gid
	}
	total := m.cycle[gid]
	if total <= 0 {
		return frames[0].GID
	}
	t := m.elapse % total
	for _, f := range frames {
		t -= max(f.Duration, 0)
		if t < 0 {
			return f.GID
		}
	}
	return frames[len(frames)-1].GID
}

func (m *TileMap) bitmap(gid uint32) *Bitmap {
	gid = m.resolve(gid)
	if gid == 0 || int(gid) > len(m.tiles) {
		return nil
	}
	return m.tiles[gid-1]
}

// draw blits the tiles overlapping the clip. The graphics offset is the
// map's screen origin.
func (m *TileMap) draw(_ *Sprite, g *Graphics, rect Rect) {
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return
	}
	clip := g.ClipRect().Intersection(rect)
	if clip.IsEmpty() {
		return
	}
	c0 := (clip.X - rect.X) / m.TileWidth
	r0 := (clip.Y - rect.Y) / m.TileHeight
	c1 := min((clip.X+clip.Width-rect.X-1)/m.TileWidth, m.cols-1)
	r1 := min((clip.Y+clip.Height-rect.Y-1)/m.TileHeight, m.rows-1)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if b := m.bitmap(m.data[row*m.cols+col]); b != nil {
				g.DrawBitmap(b, col*m.TileWidth, row*m.TileHeight)
			}
		}
	}
}

// Free removes the map's sprite from its scene and releases the map's hold
// on its table's bitmaps. The table itself is not freed.
func (m *TileMap) Free() {
	m.sprite.Free()
	for _, b := range m.tiles {
		if b != nil {
			b.Free()
		}
	}
	m.tiles = nil
}
