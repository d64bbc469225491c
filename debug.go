package inkwell

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-frame timing and culling metrics.
// Only populated when Scene.debug is true.
type debugStats struct {
	moveTime      time.Duration
	updateTime    time.Duration
	drawTime      time.Duration
	moving        int
	candidates    int
	collisions    int
	visCandidates int
	visible       int
}

// debugLog prints timing and culling stats to stderr.
func (sc *Scene) debugLog(stats debugStats) {
	if !sc.debug {
		return
	}
	total := stats.moveTime + stats.updateTime + stats.drawTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[inkwell] move: %v | update: %v | draw: %v | total: %v\n",
		stats.moveTime, stats.updateTime, stats.drawTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[inkwell] moving: %d | candidates: %d | collisions: %d | visible: %d/%d\n",
		stats.moving, stats.candidates, stats.collisions, stats.visible, stats.visCandidates)
	debugCheckGrid(sc.colGrid, "collision")
	debugCheckGrid(sc.visGrid, "visibility")
}

// debugMaxCellLoad is the average items per cell above which a grid is
// reported as too coarse.
const debugMaxCellLoad = 32

// debugCheckGrid warns on stderr if the grid's cells are overloaded.
func debugCheckGrid(g *Grid[*Sprite], name string) {
	n := g.Len()
	cells := g.cols * g.rows
	if cells > 0 && n/cells > debugMaxCellLoad {
		_, _ = fmt.Fprintf(os.Stderr, "[inkwell] warning: %s grid holds %d items in %d cells (cell size %v)\n",
			name, n, cells, g.cellSize)
	}
}
