package main

import (
	"fmt"
	"sort"
)

type EngineConfig struct {
	Depth         int `json:"depth" yaml:"depth"`
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates"`
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{Depth: 2, MaxCandidates: 16}
}

// searchEngine lives entirely on the boundary side of EngineChannel.
// It is stateless across requests: every request carries the full
// position in its frame.
type searchEngine struct {
	rules Rules
	cfg   EngineConfig
}

func newSearchEngine(settings GameSettings, cfg EngineConfig) (*searchEngine, error) {
	if cfg.Depth < 1 || settings.BoardSize < 5 {
		return nil, fmt.Errorf("engine config rejected: depth=%d board=%d", cfg.Depth, settings.BoardSize)
	}
	if cfg.MaxCandidates < 1 {
		cfg.MaxCandidates = 16
	}
	return &searchEngine{rules: NewRules(settings), cfg: cfg}, nil
}

func (e *searchEngine) handle(req engineRequest) engineResponse {
	board, err := req.frame.rehydrate()
	if err != nil {
		return engineResponse{err: err}
	}
	state := GameState{
		Board:         board,
		ToMove:        req.frame.player,
		Status:        StatusRunning,
		CapturedBlack: req.frame.blackCaptures,
		CapturedWhite: req.frame.whiteCaptures,
	}
	switch req.op {
	case opComputeBestMove:
		move, ok := e.bestMove(state)
		if !ok {
			return engineResponse{err: fmt.Errorf("no legal move available")}
		}
		return engineResponse{move: move}
	case opIsLegal:
		ok, reason := e.rules.IsLegal(state, req.move, state.ToMove)
		return engineResponse{flag: ok, reason: reason}
	case opIsSuicide:
		status := e.rules.Validate(state, req.move, state.ToMove)
		return engineResponse{flag: status == MoveSuicide}
	case opIsDoubleThree:
		status := e.rules.Validate(state, req.move, state.ToMove)
		return engineResponse{flag: status == MoveDoubleThree}
	case opIsWin:
		win := e.rules.IsWin(state.Board, req.move) &&
			!e.rules.OpponentCanBreakAlignment(state, oppositeOf(state.Board, req.move))
		return engineResponse{flag: win}
	case opEnumerateCaptures:
		cell := CellFromPlayer(state.ToMove)
		probe := state.Board.Clone()
		probe.Set(req.move.X, req.move.Y, cell)
		return engineResponse{captures: e.rules.FindCaptures(probe, req.move, cell)}
	default:
		return engineResponse{err: fmt.Errorf("unknown engine op %d", req.op)}
	}
}

func oppositeOf(board Board, move Move) PlayerColor {
	player, err := PlayerFromCell(board.At(move.X, move.Y))
	if err != nil {
		return PlayerBlack
	}
	return otherPlayer(player)
}

type scoredMove struct {
	move  Move
	score int
}

func (e *searchEngine) bestMove(state GameState) (Move, bool) {
	candidates := e.candidates(state)
	if len(candidates) == 0 {
		return Move{}, false
	}

	// Tactical short-circuits before any deep search: take a win in
	// one, otherwise block the opponent's win in one.
	if move, ok := e.winInOne(state, state.ToMove, candidates); ok {
		return move, true
	}
	opponent := otherPlayer(state.ToMove)
	if move, ok := e.winInOne(state, opponent, candidates); ok {
		if e.rules.Validate(state, move, state.ToMove) == MoveOK {
			return move, true
		}
	}

	best := candidates[0].move
	bestScore := minScore
	alpha, beta := minScore, maxScore
	for _, cand := range candidates {
		next, entryScore, ok := e.apply(state, cand.move, state.ToMove)
		if !ok {
			continue
		}
		score := entryScore - e.negamax(next, e.cfg.Depth-1, -beta, -alpha)
		if score > bestScore {
			bestScore = score
			best = cand.move
		}
		if score > alpha {
			alpha = score
		}
	}
	return best, true
}

const (
	minScore = -1 << 30
	maxScore = 1 << 30
	winValue = 1 << 20
)

func (e *searchEngine) negamax(state GameState, depth, alpha, beta int) int {
	if depth <= 0 {
		return e.evaluate(state)
	}
	candidates := e.candidates(state)
	if len(candidates) == 0 {
		return 0
	}
	best := minScore
	for _, cand := range candidates {
		next, entryScore, ok := e.apply(state, cand.move, state.ToMove)
		if !ok {
			continue
		}
		if entryScore >= winValue {
			return entryScore
		}
		score := entryScore - e.negamax(next, depth-1, -beta, -alpha)
		if score > best {
			best = score
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}
	if best == minScore {
		return 0
	}
	return best
}

// evaluate scores a quiescent position from the side to move: pattern
// strength of both colors plus the capture tally difference.
func (e *searchEngine) evaluate(state GameState) int {
	self := CellFromPlayer(state.ToMove)
	opp := opponentCell(self)
	size := state.Board.Size()
	score := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			move := Move{X: x, Y: y}
			switch state.Board.At(x, y) {
			case self:
				score += e.patternScore(state.Board, move, self)
			case opp:
				score -= e.patternScore(state.Board, move, opp)
			}
		}
	}
	score += (state.CapturedBy(state.ToMove) - state.CapturedBy(otherPlayer(state.ToMove))) * 600
	return score
}

// apply plays move for player on a copy and scores the immediate
// consequences from the mover's perspective.
func (e *searchEngine) apply(state GameState, move Move, player PlayerColor) (GameState, int, bool) {
	if e.rules.Validate(state, move, player) != MoveOK {
		return GameState{}, 0, false
	}
	next := state.Clone()
	next.ToMove = player
	cell := CellFromPlayer(player)
	next.Board.Set(move.X, move.Y, cell)
	captures := e.rules.FindCaptures(next.Board, move, cell)
	for _, taken := range captures {
		next.Board.Remove(taken.X, taken.Y)
	}
	if player == PlayerBlack {
		next.CapturedBlack += len(captures)
	} else {
		next.CapturedWhite += len(captures)
	}

	score := len(captures) * 600
	if next.CapturedBy(player) >= e.rules.CaptureWinStones() {
		score = winValue
	} else if e.rules.IsWin(next.Board, move) {
		score = winValue
	} else {
		score += e.patternScore(next.Board, move, cell)
	}
	next.LastMove = move
	next.HasLastMove = true
	next.ToMove = otherPlayer(player)
	return next, score, true
}

func (e *searchEngine) winInOne(state GameState, player PlayerColor, candidates []scoredMove) (Move, bool) {
	for _, cand := range candidates {
		_, score, ok := e.apply(state, cand.move, player)
		if !ok {
			continue
		}
		if score >= winValue {
			return cand.move, true
		}
	}
	return Move{}, false
}

// candidates lists empty cells within two intersections of any stone,
// scored by quick pattern analysis, best first, capped by config. On a
// blank board the centre is the only candidate.
func (e *searchEngine) candidates(state GameState) []scoredMove {
	size := state.Board.Size()
	if state.Board.IsBlank() {
		centre := Move{X: size / 2, Y: size / 2}
		return []scoredMove{{move: centre}}
	}
	cell := CellFromPlayer(state.ToMove)
	seen := make(map[int]bool, 64)
	var out []scoredMove
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if state.Board.At(x, y) == CellEmpty {
				continue
			}
			for dy := -2; dy <= 2; dy++ {
				for dx := -2; dx <= 2; dx++ {
					cx, cy := x+dx, y+dy
					if !state.Board.IsEmpty(cx, cy) {
						continue
					}
					key := cy*size + cx
					if seen[key] {
						continue
					}
					seen[key] = true
					move := Move{X: cx, Y: cy}
					if e.rules.Validate(state, move, state.ToMove) != MoveOK {
						continue
					}
					out = append(out, scoredMove{move: move, score: e.quickScore(state.Board, move, cell)})
				}
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	if len(out) > e.cfg.MaxCandidates {
		out = out[:e.cfg.MaxCandidates]
	}
	return out
}

// quickScore rates a candidate before search: own patterns, denial of
// opponent patterns, potential captures, slight pull to the centre.
func (e *searchEngine) quickScore(board Board, move Move, cell Cell) int {
	probe := board.Clone()
	probe.Set(move.X, move.Y, cell)
	score := e.patternScore(probe, move, cell)
	score += len(e.rules.FindCaptures(probe, move, cell)) * 300

	opponent := opponentCell(cell)
	probe.Set(move.X, move.Y, opponent)
	score += e.patternScore(probe, move, opponent) / 2
	score += len(e.rules.FindCaptures(probe, move, opponent)) * 150

	size := board.Size()
	centre := size / 2
	score -= abs(move.X-centre) + abs(move.Y-centre)
	return score
}

// patternScore sums run lengths through the stone over the 4 axes,
// tripling the weight when both ends of a run are open.
func (e *searchEngine) patternScore(board Board, move Move, cell Cell) int {
	score := 0
	for _, dir := range axisDirections {
		dx, dy := dir[0], dir[1]
		run := 1
		openEnds := 0
		x, y := move.X+dx, move.Y+dy
		for board.At(x, y) == cell {
			run++
			x += dx
			y += dy
		}
		if board.IsEmpty(x, y) {
			openEnds++
		}
		x, y = move.X-dx, move.Y-dy
		for board.At(x, y) == cell {
			run++
			x -= dx
			y -= dy
		}
		if board.IsEmpty(x, y) {
			openEnds++
		}
		score += runWeight(run, openEnds)
	}
	return score
}

func runWeight(run, openEnds int) int {
	if run >= 5 {
		return winValue
	}
	if openEnds == 0 {
		return 0
	}
	weights := [5]int{0, 2, 40, 600, 8000}
	value := weights[run]
	if openEnds == 2 {
		value *= 3
	}
	return value
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
