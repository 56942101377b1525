package main

import "testing"

func TestBoardOutOfBoundsAccess(t *testing.T) {
	board := NewBoard(9)
	if got := board.At(-1, 0); got != CellEmpty {
		t.Fatalf("expected out-of-bounds read to return empty, got %v", got)
	}
	if got := board.At(9, 9); got != CellEmpty {
		t.Fatalf("expected out-of-bounds read to return empty, got %v", got)
	}
	board.Set(-1, 4, CellBlack)
	board.Set(4, 9, CellWhite)
	if !board.IsBlank() {
		t.Fatalf("expected out-of-bounds writes to be no-ops")
	}
}

func TestBoardFlattenRoundTrip(t *testing.T) {
	board := NewBoard(9)
	board.Set(0, 0, CellBlack)
	board.Set(4, 4, CellWhite)
	board.Set(8, 8, CellBlack)

	flat := board.Flatten(nil)
	if len(flat) != 81 {
		t.Fatalf("expected 81 flattened cells, got %d", len(flat))
	}
	restored, err := BoardFromFlat(flat, 9)
	if err != nil {
		t.Fatalf("unexpected rebuild error: %v", err)
	}
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			if restored.At(x, y) != board.At(x, y) {
				t.Fatalf("round trip mismatch at (%d,%d)", x, y)
			}
		}
	}
}

func TestBoardFromFlatRejectsBadLength(t *testing.T) {
	if _, err := BoardFromFlat(make([]int, 80), 9); err == nil {
		t.Fatalf("expected error for short flat buffer")
	}
}

func TestBoardCloneIsIndependent(t *testing.T) {
	board := NewBoard(9)
	board.Set(4, 4, CellBlack)
	clone := board.Clone()
	clone.Set(4, 4, CellWhite)
	clone.Set(0, 0, CellBlack)
	if board.At(4, 4) != CellBlack {
		t.Fatalf("clone write leaked into the original board")
	}
	if board.At(0, 0) != CellEmpty {
		t.Fatalf("clone write leaked into the original board")
	}
}

func TestBoardCountEmpty(t *testing.T) {
	board := NewBoard(5)
	if board.CountEmpty() != 25 {
		t.Fatalf("expected 25 empty cells, got %d", board.CountEmpty())
	}
	board.Set(2, 2, CellBlack)
	board.Remove(2, 2)
	if board.CountEmpty() != 25 {
		t.Fatalf("expected remove to restore the empty count, got %d", board.CountEmpty())
	}
}
