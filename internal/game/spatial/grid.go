// Package spatial provides the broad-phase grid used for neighbour queries.
//
// The grid stores integer indices into the caller's entity slice (not
// pointers) in preallocated cells, so a rebuild every step costs no
// allocation once capacity has warmed up.
package spatial

import (
	"math"
)

// SpatialGrid buckets entity indices into fixed-size square cells.
//
// Cell size should be close to the largest query radius. Positions outside
// the world are folded into the border cells, so entities spawned just off
// the field are still found by queries near the edge.
//
// Memory layout: cells are stored in row-major order (cells[row*cols+col])
type SpatialGrid struct {
	cellSize    float64
	invCellSize float64 // 1/cellSize for faster division
	cols, rows  int
	cells       [][]uint32 // cells[row*cols+col] = list of entity indices
	scratch     []uint32   // reusable buffer for query results
	count       int
}

// NewSpatialGrid creates a grid covering worldWidth x worldHeight.
// expected is used to presize cells.
func NewSpatialGrid(worldWidth, worldHeight, cellSize float64, expected int) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 64
	}
	cols := int(math.Ceil(worldWidth / cellSize))
	rows := int(math.Ceil(worldHeight / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	cells := make([][]uint32, cols*rows)
	perCell := expected / len(cells)
	if perCell < 4 {
		perCell = 4
	}
	for i := range cells {
		cells[i] = make([]uint32, 0, perCell)
	}

	return &SpatialGrid{
		cellSize:    cellSize,
		invCellSize: 1.0 / cellSize,
		cols:        cols,
		rows:        rows,
		cells:       cells,
		scratch:     make([]uint32, 0, 64),
	}
}

// Clear empties every cell, keeping capacity.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.count = 0
}

// Insert adds index id at (x, y).
func (g *SpatialGrid) Insert(id uint32, x, y float64) {
	idx := g.row(y)*g.cols + g.col(x)
	g.cells[idx] = append(g.cells[idx], id)
	g.count++
}

func (g *SpatialGrid) col(x float64) int {
	return clampIndex(int(math.Floor(x*g.invCellSize)), g.cols)
}

func (g *SpatialGrid) row(y float64) int {
	return clampIndex(int(math.Floor(y*g.invCellSize)), g.rows)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// QueryRadius returns every index that may lie within radius of (cx, cy).
// Candidates can be farther away; callers do the exact distance check.
//
// IMPORTANT: The returned slice is reused on subsequent calls.
func (g *SpatialGrid) QueryRadius(cx, cy, radius float64) []uint32 {
	g.scratch = g.scratch[:0]

	minCol, maxCol := g.col(cx-radius), g.col(cx+radius)
	minRow, maxRow := g.row(cy-radius), g.row(cy+radius)

	for row := minRow; row <= maxRow; row++ {
		base := row * g.cols
		for col := minCol; col <= maxCol; col++ {
			g.scratch = append(g.scratch, g.cells[base+col]...)
		}
	}
	return g.scratch
}

// Len returns the number of inserted indices.
func (g *SpatialGrid) Len() int {
	return g.count
}

// Stats returns occupancy statistics for debugging.
func (g *SpatialGrid) Stats() GridStats {
	var maxInCell, nonEmpty int
	for _, cell := range g.cells {
		n := len(cell)
		if n > maxInCell {
			maxInCell = n
		}
		if n > 0 {
			nonEmpty++
		}
	}
	return GridStats{
		TotalCells:    len(g.cells),
		NonEmptyCells: nonEmpty,
		TotalEntities: g.count,
		MaxInCell:     maxInCell,
	}
}

// GridStats contains grid statistics for debugging.
type GridStats struct {
	TotalCells    int
	NonEmptyCells int
	TotalEntities int
	MaxInCell     int
}
