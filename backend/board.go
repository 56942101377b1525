package main

import "fmt"

type Cell int

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

// Board is a flat row-major grid. Every accessor is bounds-safe: reads
// outside the grid return CellEmpty and writes outside it are dropped,
// so scanning code may look past the edge without guarding.
type Board struct {
	size  int
	cells []Cell
}

func NewBoard(boardSize int) Board {
	b := Board{}
	b.Reset(boardSize)
	return b
}

func (b *Board) Reset(boardSize int) {
	b.size = boardSize
	b.cells = make([]Cell, boardSize*boardSize)
}

func (b Board) At(x, y int) Cell {
	if !b.InBounds(x, y) {
		return CellEmpty
	}
	return b.cells[b.index(x, y)]
}

func (b *Board) Set(x, y int, value Cell) {
	if !b.InBounds(x, y) {
		return
	}
	b.cells[b.index(x, y)] = value
}

func (b *Board) Remove(x, y int) {
	b.Set(x, y, CellEmpty)
}

func (b Board) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.size && y < b.size
}

func (b Board) IsEmpty(x, y int) bool {
	return b.InBounds(x, y) && b.At(x, y) == CellEmpty
}

func (b Board) IsFull() bool {
	return b.CountEmpty() == 0
}

func (b Board) IsBlank() bool {
	return b.CountEmpty() == len(b.cells)
}

func (b Board) CountEmpty() int {
	count := 0
	for _, cell := range b.cells {
		if cell == CellEmpty {
			count++
		}
	}
	return count
}

func (b Board) Size() int {
	return b.size
}

func (b Board) Clone() Board {
	clone := Board{size: b.size}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

// Snapshot returns a deep row-major copy. Consumers can hold it while
// play continues; they never see the internal slice.
func (b Board) Snapshot() [][]Cell {
	rows := make([][]Cell, b.size)
	for y := 0; y < b.size; y++ {
		rows[y] = make([]Cell, b.size)
		for x := 0; x < b.size; x++ {
			rows[y][x] = b.At(x, y)
		}
	}
	return rows
}

// Flatten writes the board into dst row-major using the 0/1/2 wire
// encoding, allocating only when dst is too small.
func (b Board) Flatten(dst []int) []int {
	if cap(dst) < len(b.cells) {
		dst = make([]int, len(b.cells))
	}
	dst = dst[:len(b.cells)]
	for i, cell := range b.cells {
		dst[i] = int(cell)
	}
	return dst
}

func BoardFromFlat(flat []int, boardSize int) (Board, error) {
	if len(flat) != boardSize*boardSize {
		return Board{}, fmt.Errorf("flat board has %d cells, want %d", len(flat), boardSize*boardSize)
	}
	b := NewBoard(boardSize)
	for i, value := range flat {
		switch Cell(value) {
		case CellEmpty, CellBlack, CellWhite:
			b.cells[i] = Cell(value)
		default:
			return Board{}, fmt.Errorf("invalid cell value %d at index %d", value, i)
		}
	}
	return b, nil
}

func (b Board) index(x, y int) int {
	return y*b.size + x
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

func CellFromPlayer(player PlayerColor) Cell {
	if player == PlayerBlack {
		return CellBlack
	}
	return CellWhite
}

func PlayerFromCell(cell Cell) (PlayerColor, error) {
	switch cell {
	case CellBlack:
		return PlayerBlack, nil
	case CellWhite:
		return PlayerWhite, nil
	default:
		return PlayerBlack, fmt.Errorf("empty cell has no player")
	}
}
