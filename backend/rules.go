package main

import "fmt"

var (
	axisDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

	captureDirections = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}}
)

type Rules struct {
	settings GameSettings
}

func NewRules(settings GameSettings) Rules {
	return Rules{settings: settings}
}

// Validate runs the full legality pipeline for a candidate move:
// bounds, forced-capture restriction, occupancy, then suicide and
// double-three on a tentative placement. A move that captures at least
// one pair is exempt from the suicide and double-three checks. The
// board is identical before and after the call, whatever the outcome.
func (r Rules) Validate(state GameState, move Move, player PlayerColor) MoveStatus {
	if !move.IsValid(r.settings.BoardSize) {
		return MoveOutOfBounds
	}
	if player == state.ToMove && state.MustCapture {
		allowed := false
		for _, forced := range state.ForcedCaptureMoves {
			if forced.Equals(move) {
				allowed = true
				break
			}
		}
		if !allowed {
			return MoveMustCapture
		}
	}
	if !state.Board.IsEmpty(move.X, move.Y) {
		return MoveOccupied
	}

	board := state.Board
	cell := CellFromPlayer(player)
	captured := r.placeScoped(&board, move, cell)
	defer r.revertScoped(&board, move, cell, captured)

	if len(captured) > 0 {
		return MoveOK
	}
	if r.settings.ForbidSuicide && r.isSuicide(board, move, cell) {
		return MoveSuicide
	}
	if r.forbidsDoubleThree(player) && r.countFreeThrees(board, move, cell) >= 2 {
		return MoveDoubleThree
	}
	return MoveOK
}

func (r Rules) IsLegal(state GameState, move Move, player PlayerColor) (bool, string) {
	status := r.Validate(state, move, player)
	return status == MoveOK, status.Reason()
}

func (r Rules) IsLegalDefault(state GameState, move Move) (bool, string) {
	return r.IsLegal(state, move, state.ToMove)
}

func (r Rules) forbidsDoubleThree(player PlayerColor) bool {
	if player == PlayerBlack {
		return r.settings.ForbidDoubleThreeBlack
	}
	return r.settings.ForbidDoubleThreeWhite
}

// placeScoped puts the stone down and removes any captured pairs,
// returning the removed positions so revertScoped can restore them.
func (r Rules) placeScoped(board *Board, move Move, cell Cell) []Move {
	board.Set(move.X, move.Y, cell)
	captured := r.FindCaptures(*board, move, cell)
	for _, taken := range captured {
		board.Remove(taken.X, taken.Y)
	}
	return captured
}

func (r Rules) revertScoped(board *Board, move Move, cell Cell, captured []Move) {
	opponent := opponentCell(cell)
	for _, taken := range captured {
		board.Set(taken.X, taken.Y, opponent)
	}
	board.Remove(move.X, move.Y)
}

// FindCaptures scans the 8 directions from the placed stone for the
// [self, opp, opp, self] flank. Captures always come in pairs.
func (r Rules) FindCaptures(board Board, move Move, playerCell Cell) []Move {
	return r.FindCapturesInto(board, move, playerCell, nil)
}

func (r Rules) FindCapturesInto(board Board, move Move, playerCell Cell, captures []Move) []Move {
	captures = captures[:0]
	if cap(captures) < 8 {
		captures = make([]Move, 0, 8)
	}
	opponent := opponentCell(playerCell)
	for _, dir := range captureDirections {
		dx, dy := dir[0], dir[1]
		x3, y3 := move.X+3*dx, move.Y+3*dy
		if !board.InBounds(x3, y3) {
			continue
		}
		if board.At(move.X+dx, move.Y+dy) == opponent &&
			board.At(move.X+2*dx, move.Y+2*dy) == opponent &&
			board.At(x3, y3) == playerCell {
			captures = appendCapture(captures, Move{X: move.X + dx, Y: move.Y + dy})
			captures = appendCapture(captures, Move{X: move.X + 2*dx, Y: move.Y + 2*dy})
		}
	}
	return captures
}

func appendCapture(captures []Move, taken Move) []Move {
	for _, existing := range captures {
		if existing.Equals(taken) {
			return captures
		}
	}
	return append(captures, taken)
}

// isSuicide reports whether the stone at move completes an opponent
// flank [O X X O] around one of its own pairs, which the rules forbid
// unless the move captures.
func (r Rules) isSuicide(board Board, move Move, playerCell Cell) bool {
	opponent := opponentCell(playerCell)
	for _, dir := range captureDirections {
		dx, dy := dir[0], dir[1]
		if board.At(move.X+dx, move.Y+dy) != playerCell {
			continue
		}
		// Pair is (move, ally); check both flanking ends.
		if board.At(move.X-dx, move.Y-dy) == opponent &&
			board.At(move.X+2*dx, move.Y+2*dy) == opponent {
			return true
		}
	}
	return false
}

// countFreeThrees counts axes on which the placed stone forms a free
// three: three stones contiguous or split by one gap inside a 6-cell
// window with open ends, the window covering the placed stone.
func (r Rules) countFreeThrees(board Board, move Move, playerCell Cell) int {
	count := 0
	for _, dir := range axisDirections {
		if r.isFreeThreeInDirection(board, move, dir[0], dir[1], playerCell) {
			count++
		}
	}
	return count
}

func (r Rules) isFreeThreeInDirection(board Board, move Move, dx, dy int, playerCell Cell) bool {
	const rng = 5
	const lineSize = rng*2 + 1
	var line [lineSize]byte
	for i := -rng; i <= rng; i++ {
		x := move.X + i*dx
		y := move.Y + i*dy
		value := byte('O')
		if board.InBounds(x, y) {
			switch board.At(x, y) {
			case CellEmpty:
				value = '_'
			case playerCell:
				value = 'P'
			default:
				value = 'O'
			}
		}
		line[i+rng] = value
	}
	center := rng
	// Contiguous forms __PPP_ and _PPP__ need a second empty beyond
	// one end; a three blocked at distance two on both sides can
	// never grow into an open four. Split forms: _PP_P_ and _P_PP_.
	for start := 0; start+6 <= lineSize; start++ {
		if center < start || center >= start+6 {
			continue
		}
		if line[start] != '_' || line[start+5] != '_' {
			continue
		}
		c1, c2, c3, c4 := line[start+1], line[start+2], line[start+3], line[start+4]
		if c1 == '_' && c2 == 'P' && c3 == 'P' && c4 == 'P' {
			return true
		}
		if c1 == 'P' && c2 == 'P' && c3 == 'P' && c4 == '_' {
			return true
		}
		if c1 == 'P' && c2 == 'P' && c3 == '_' && c4 == 'P' {
			return true
		}
		if c1 == 'P' && c2 == '_' && c3 == 'P' && c4 == 'P' {
			return true
		}
	}
	return false
}

// IsWin reports an alignment of WinLength or more through lastMove.
// Callers still have to run the capture-break suppression before
// declaring the game over.
func (r Rules) IsWin(board Board, lastMove Move) bool {
	if !lastMove.IsValid(r.settings.BoardSize) {
		return false
	}
	if board.At(lastMove.X, lastMove.Y) == CellEmpty {
		return false
	}
	for _, dir := range axisDirections {
		count := 1 +
			r.countDirection(board, lastMove, dir[0], dir[1]) +
			r.countDirection(board, lastMove, -dir[0], -dir[1])
		if count >= r.settings.WinLength {
			return true
		}
	}
	return false
}

// AlignmentLength is the longest contiguous same-color run through the
// given stone across the 4 axes.
func (r Rules) AlignmentLength(board Board, lastMove Move) int {
	if board.At(lastMove.X, lastMove.Y) == CellEmpty {
		return 0
	}
	best := 0
	for _, dir := range axisDirections {
		count := 1 +
			r.countDirection(board, lastMove, dir[0], dir[1]) +
			r.countDirection(board, lastMove, -dir[0], -dir[1])
		if count > best {
			best = count
		}
	}
	return best
}

func (r Rules) FindAlignmentLine(board Board, lastMove Move) ([]Move, bool) {
	if !lastMove.IsValid(r.settings.BoardSize) || board.At(lastMove.X, lastMove.Y) == CellEmpty {
		return nil, false
	}
	for _, dir := range axisDirections {
		line := r.collectLine(board, lastMove, dir[0], dir[1])
		if len(line) >= r.settings.WinLength {
			return line, true
		}
	}
	return nil, false
}

func (r Rules) IsDraw(board Board) bool {
	return board.IsFull()
}

// HasAnyLegalMove reports whether player can still move anywhere; a
// player with no legal reply stalls the game into a draw.
func (r Rules) HasAnyLegalMove(state GameState, player PlayerColor) bool {
	size := state.Board.Size()
	probe := state.Clone()
	probe.ToMove = player
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !state.Board.IsEmpty(x, y) {
				continue
			}
			if r.Validate(probe, Move{X: x, Y: y}, player) == MoveOK {
				return true
			}
		}
	}
	return false
}

// captureOutcome simulates opponent playing move on a copy of the
// board and returns the resulting board and captured stones, or
// ok=false when the move is illegal or captures nothing.
func (r Rules) captureOutcome(state GameState, move Move, player PlayerColor) (Board, []Move, bool) {
	probe := state.Clone()
	probe.ToMove = player
	probe.MustCapture = false
	probe.ForcedCaptureMoves = nil
	if r.Validate(probe, move, player) != MoveOK {
		return Board{}, nil, false
	}
	cell := CellFromPlayer(player)
	board := state.Board.Clone()
	board.Set(move.X, move.Y, cell)
	captures := r.FindCaptures(board, move, cell)
	if len(captures) == 0 {
		return Board{}, nil, false
	}
	for _, taken := range captures {
		board.Remove(taken.X, taken.Y)
	}
	return board, captures, true
}

// OpponentCanBreakAlignment reports whether opponent has a legal
// capturing reply after which the mover no longer holds any alignment.
// Such a reply voids an otherwise winning five.
func (r Rules) OpponentCanBreakAlignment(afterMoveState GameState, opponent PlayerColor) bool {
	return len(r.findBreakCaptures(afterMoveState, opponent, true)) > 0
}

// FindAlignmentBreakCaptures lists every capturing reply that breaks
// the alignment; these become the forced moves of the next turn.
func (r Rules) FindAlignmentBreakCaptures(afterMoveState GameState, opponent PlayerColor) []Move {
	return r.findBreakCaptures(afterMoveState, opponent, false)
}

func (r Rules) findBreakCaptures(afterMoveState GameState, opponent PlayerColor, firstOnly bool) []Move {
	var moves []Move
	targetCell := CellFromPlayer(otherPlayer(opponent))
	size := afterMoveState.Board.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !afterMoveState.Board.IsEmpty(x, y) {
				continue
			}
			move := Move{X: x, Y: y}
			board, _, ok := r.captureOutcome(afterMoveState, move, opponent)
			if !ok {
				continue
			}
			if !r.hasAnyAlignment(board, targetCell) {
				moves = append(moves, move)
				if firstOnly {
					return moves
				}
			}
		}
	}
	return moves
}

// FindImmediateCaptureWinMove looks for a capturing move that lifts
// attacker's tally to the capture-win threshold. It only fires once
// the attacker is a single pair away, which is how a player eight
// stones down loses on the spot.
func (r Rules) FindImmediateCaptureWinMove(state GameState, attacker PlayerColor, attackerCaptured int) (Move, []Move, bool) {
	if attackerCaptured+2 < r.settings.CaptureWinStones {
		return Move{}, nil, false
	}
	size := state.Board.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if !state.Board.IsEmpty(x, y) {
				continue
			}
			move := Move{X: x, Y: y}
			_, captures, ok := r.captureOutcome(state, move, attacker)
			if !ok {
				continue
			}
			if attackerCaptured+len(captures) < r.settings.CaptureWinStones {
				continue
			}
			return move, append([]Move(nil), captures...), true
		}
	}
	return Move{}, nil, false
}

func (r Rules) WinLength() int {
	return r.settings.WinLength
}

func (r Rules) CaptureWinStones() int {
	return r.settings.CaptureWinStones
}

func (r Rules) countDirection(board Board, start Move, dx, dy int) int {
	target := board.At(start.X, start.Y)
	x, y := start.X+dx, start.Y+dy
	count := 0
	for board.InBounds(x, y) && board.At(x, y) == target {
		count++
		x += dx
		y += dy
	}
	return count
}

func (r Rules) collectLine(board Board, start Move, dx, dy int) []Move {
	target := board.At(start.X, start.Y)
	x, y := start.X, start.Y
	for board.InBounds(x-dx, y-dy) && board.At(x-dx, y-dy) == target {
		x -= dx
		y -= dy
	}
	var line []Move
	for board.InBounds(x, y) && board.At(x, y) == target {
		line = append(line, Move{X: x, Y: y})
		x += dx
		y += dy
	}
	return line
}

func (r Rules) hasAnyAlignment(board Board, playerCell Cell) bool {
	size := board.Size()
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if board.At(x, y) != playerCell {
				continue
			}
			move := Move{X: x, Y: y}
			for _, dir := range axisDirections {
				count := 1 +
					r.countDirection(board, move, dir[0], dir[1]) +
					r.countDirection(board, move, -dir[0], -dir[1])
				if count >= r.settings.WinLength {
					return true
				}
			}
		}
	}
	return false
}

func opponentCell(cell Cell) Cell {
	if cell == CellBlack {
		return CellWhite
	}
	return CellBlack
}

func (r Rules) String() string {
	return fmt.Sprintf("Rules{win=%d, capture=%d}", r.settings.WinLength, r.settings.CaptureWinStones)
}
