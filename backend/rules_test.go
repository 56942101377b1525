package main

import "testing"

func testSettings(boardSize int) GameSettings {
	settings := DefaultGameSettings()
	settings.BoardSize = boardSize
	return settings
}

func containsMove(moves []Move, want Move) bool {
	for _, m := range moves {
		if m.X == want.X && m.Y == want.Y {
			return true
		}
	}
	return false
}

func TestValidateBoundsAndOccupied(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	state.Board.Set(4, 4, CellBlack)
	before := state.Board.Snapshot()

	if status := rules.Validate(state, Move{X: -1, Y: 0}, PlayerWhite); status != MoveOutOfBounds {
		t.Fatalf("expected out-of-bounds, got %v", status)
	}
	if status := rules.Validate(state, Move{X: 9, Y: 9}, PlayerWhite); status != MoveOutOfBounds {
		t.Fatalf("expected out-of-bounds, got %v", status)
	}
	if status := rules.Validate(state, Move{X: 4, Y: 4}, PlayerWhite); status != MoveOccupied {
		t.Fatalf("expected occupied, got %v", status)
	}

	after := state.Board.Snapshot()
	for y := range before {
		for x := range before[y] {
			if before[y][x] != after[y][x] {
				t.Fatalf("validation mutated the board at (%d,%d)", x, y)
			}
		}
	}
}

func TestFindCapturesPairOnly(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	board := NewBoard(9)
	board.Set(3, 4, CellWhite)
	board.Set(4, 4, CellWhite)
	board.Set(5, 4, CellBlack)

	board.Set(2, 4, CellBlack)
	captured := rules.FindCaptures(board, Move{X: 2, Y: 4}, CellBlack)
	if len(captured) != 2 {
		t.Fatalf("expected exactly 2 captured stones, got %d", len(captured))
	}
	if !containsMove(captured, Move{X: 3, Y: 4}) || !containsMove(captured, Move{X: 4, Y: 4}) {
		t.Fatalf("expected captured pair (3,4) and (4,4), got %+v", captured)
	}
}

func TestFindCapturesIgnoresTriples(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	board := NewBoard(9)
	board.Set(3, 4, CellWhite)
	board.Set(4, 4, CellWhite)
	board.Set(5, 4, CellWhite)
	board.Set(6, 4, CellBlack)

	board.Set(2, 4, CellBlack)
	captured := rules.FindCaptures(board, Move{X: 2, Y: 4}, CellBlack)
	if len(captured) != 0 {
		t.Fatalf("expected a flanked triple to survive, got captures %+v", captured)
	}
}

func TestValidateSuicide(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	// Placing at (4,4) completes the pair (4,4)-(5,4) already flanked
	// by White at (3,4) and (6,4).
	state.Board.Set(3, 4, CellWhite)
	state.Board.Set(5, 4, CellBlack)
	state.Board.Set(6, 4, CellWhite)

	if status := rules.Validate(state, Move{X: 4, Y: 4}, PlayerBlack); status != MoveSuicide {
		t.Fatalf("expected suicide, got %v", status)
	}

	permissive := settings
	permissive.ForbidSuicide = false
	if status := NewRules(permissive).Validate(state, Move{X: 4, Y: 4}, PlayerBlack); status != MoveOK {
		t.Fatalf("expected OK with suicide rule off, got %v", status)
	}
}

func TestValidateDoubleThree(t *testing.T) {
	settings := testSettings(13)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	// One free three per axis after playing (6,6): horizontal with
	// (7,6),(8,6) and vertical with (6,7),(6,8).
	state.Board.Set(7, 6, CellBlack)
	state.Board.Set(8, 6, CellBlack)
	state.Board.Set(6, 7, CellBlack)
	state.Board.Set(6, 8, CellBlack)

	if status := rules.Validate(state, Move{X: 6, Y: 6}, PlayerBlack); status != MoveDoubleThree {
		t.Fatalf("expected double-three, got %v", status)
	}
}

func TestValidateSingleFreeThreeAllowed(t *testing.T) {
	settings := testSettings(13)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	state.Board.Set(7, 6, CellBlack)
	state.Board.Set(8, 6, CellBlack)

	if status := rules.Validate(state, Move{X: 6, Y: 6}, PlayerBlack); status != MoveOK {
		t.Fatalf("expected a single free three to be legal, got %v", status)
	}
}

func TestValidateSplitFreeThree(t *testing.T) {
	settings := testSettings(13)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	// Horizontal split three _PP_P_ and vertical contiguous three.
	state.Board.Set(7, 6, CellBlack)
	state.Board.Set(9, 6, CellBlack)
	state.Board.Set(6, 7, CellBlack)
	state.Board.Set(6, 8, CellBlack)

	if status := rules.Validate(state, Move{X: 6, Y: 6}, PlayerBlack); status != MoveDoubleThree {
		t.Fatalf("expected split three to count toward double-three, got %v", status)
	}
}

func TestBlockedThreesAreNotFreeThrees(t *testing.T) {
	settings := testSettings(13)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	// Both threes through (6,6) are hemmed in by White at distance
	// two on each side; neither can ever grow into an open four, so
	// the move is not a double-three.
	state.Board.Set(7, 6, CellBlack)
	state.Board.Set(8, 6, CellBlack)
	state.Board.Set(4, 6, CellWhite)
	state.Board.Set(10, 6, CellWhite)
	state.Board.Set(6, 7, CellBlack)
	state.Board.Set(6, 8, CellBlack)
	state.Board.Set(6, 4, CellWhite)
	state.Board.Set(6, 10, CellWhite)

	if status := rules.Validate(state, Move{X: 6, Y: 6}, PlayerBlack); status != MoveOK {
		t.Fatalf("expected blocked threes to be legal, got %v", status)
	}
}

func TestCapturingMoveExemptFromDoubleThree(t *testing.T) {
	settings := testSettings(13)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	// Same double-three shape as above, plus a capture on the (-1,-1)
	// diagonal which exempts the move.
	state.Board.Set(7, 6, CellBlack)
	state.Board.Set(8, 6, CellBlack)
	state.Board.Set(6, 7, CellBlack)
	state.Board.Set(6, 8, CellBlack)
	state.Board.Set(5, 5, CellWhite)
	state.Board.Set(4, 4, CellWhite)
	state.Board.Set(3, 3, CellBlack)

	if status := rules.Validate(state, Move{X: 6, Y: 6}, PlayerBlack); status != MoveOK {
		t.Fatalf("expected capturing move to bypass double-three, got %v", status)
	}
}

func TestCapturingMoveExemptFromSuicide(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	// (4,4) walks into the White flank (3,4)/(6,4) but simultaneously
	// captures the White pair above it.
	state.Board.Set(3, 4, CellWhite)
	state.Board.Set(5, 4, CellBlack)
	state.Board.Set(6, 4, CellWhite)
	state.Board.Set(4, 3, CellWhite)
	state.Board.Set(4, 2, CellWhite)
	state.Board.Set(4, 1, CellBlack)

	if status := rules.Validate(state, Move{X: 4, Y: 4}, PlayerBlack); status != MoveOK {
		t.Fatalf("expected capturing move to bypass suicide, got %v", status)
	}
}

func TestValidateForcedCaptureRestriction(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	state.MustCapture = true
	state.ForcedCaptureMoves = []Move{{X: 2, Y: 2}}

	if status := rules.Validate(state, Move{X: 5, Y: 5}, state.ToMove); status != MoveMustCapture {
		t.Fatalf("expected forced-capture restriction, got %v", status)
	}
	if status := rules.Validate(state, Move{X: 2, Y: 2}, state.ToMove); status != MoveOK {
		t.Fatalf("expected forced move to be legal, got %v", status)
	}
}

func TestIsWinAlignment(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	board := NewBoard(9)
	for i := 0; i < 4; i++ {
		board.Set(2+i, 2+i, CellBlack)
	}
	if rules.IsWin(board, Move{X: 4, Y: 4}) {
		t.Fatalf("four stones must not win")
	}
	board.Set(6, 6, CellBlack)
	if !rules.IsWin(board, Move{X: 6, Y: 6}) {
		t.Fatalf("five diagonal stones must win")
	}
	line, ok := rules.FindAlignmentLine(board, Move{X: 4, Y: 4})
	if !ok || len(line) != 5 {
		t.Fatalf("expected a 5-stone winning line, got ok=%v len=%d", ok, len(line))
	}
}

func TestOpponentCanBreakAlignment(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	// Black five on row 4; (4,4) also forms a vertical pair with (4,5)
	// that White at (4,3) would capture thanks to (4,6).
	for x := 2; x <= 6; x++ {
		state.Board.Set(x, 4, CellBlack)
	}
	state.Board.Set(4, 5, CellBlack)
	state.Board.Set(4, 6, CellWhite)

	if !rules.OpponentCanBreakAlignment(state, PlayerWhite) {
		t.Fatalf("expected White to hold a breaking capture")
	}
	breaks := rules.FindAlignmentBreakCaptures(state, PlayerWhite)
	if !containsMove(breaks, Move{X: 4, Y: 3}) {
		t.Fatalf("expected (4,3) among breaking captures, got %+v", breaks)
	}
}

func TestAlignmentNotBreakableWithoutCapture(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	for x := 2; x <= 6; x++ {
		state.Board.Set(x, 4, CellBlack)
	}
	state.Board.Set(0, 0, CellWhite)

	if rules.OpponentCanBreakAlignment(state, PlayerWhite) {
		t.Fatalf("expected no breaking capture for White")
	}
}

func TestFindImmediateCaptureWinMove(t *testing.T) {
	settings := testSettings(9)
	rules := NewRules(settings)
	state := DefaultGameState(settings)
	state.Board.Set(4, 4, CellBlack)
	state.Board.Set(5, 4, CellBlack)
	state.Board.Set(6, 4, CellWhite)

	if _, _, ok := rules.FindImmediateCaptureWinMove(state, PlayerWhite, 6); ok {
		t.Fatalf("six captures plus one pair must not reach the threshold")
	}
	move, captures, ok := rules.FindImmediateCaptureWinMove(state, PlayerWhite, 8)
	if !ok {
		t.Fatalf("expected a winning capture at eight")
	}
	if !move.Equals(Move{X: 3, Y: 4}) {
		t.Fatalf("expected winning capture at (3,4), got %+v", move)
	}
	if len(captures) != 2 {
		t.Fatalf("expected the winning move to take a pair, got %+v", captures)
	}
}
