package main

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	winReasonAlignment     = "alignment"
	winReasonCapture       = "capture"
	winReasonCaptureThreat = "capture-threat"
)

// Game owns the authoritative board, the turn state, the capture
// tallies and the ledger. It is the only mutator of the board; rules
// are consulted as a pure library. Concurrency control lives in
// GameController, not here.
type Game struct {
	settings     GameSettings
	rules        Rules
	state        GameState
	ledger       Ledger
	listeners    []MatchListener
	turnStart    time.Time
	blackClockMs float64
	whiteClockMs float64
	pendingHuman bool
	pendingMove  Move
}

func NewGame(settings GameSettings) Game {
	g := Game{}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	g.settings = settings
	g.rules = NewRules(settings)
	g.state.Reset(settings)
	g.ledger.Clear()
	g.blackClockMs = 0
	g.whiteClockMs = 0
	g.pendingHuman = false
	g.turnStart = time.Now()
}

func (g *Game) Start() {
	if g.state.Status == StatusNotStarted {
		g.state.Status = StatusRunning
		g.turnStart = time.Now()
	}
}

func (g *Game) AddListener(listener MatchListener) {
	if listener != nil {
		g.listeners = append(g.listeners, listener)
	}
}

func (g *Game) State() GameState {
	return g.snapshotState()
}

// snapshotState is the defensive copy handed to listeners and bridges,
// stamped with the match totals valid at this instant.
func (g *Game) snapshotState() GameState {
	snapshot := g.state.Clone()
	snapshot.Settings = g.settings
	snapshot.MoveCount = g.ledger.Size()
	snapshot.BlackClockMs = g.blackClockMs
	snapshot.WhiteClockMs = g.whiteClockMs
	return snapshot
}

func (g *Game) Ledger() Ledger {
	return Ledger{entries: g.ledger.All(), head: g.ledger.Head()}
}

func (g *Game) Rules() Rules {
	return g.rules
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) Clocks() (blackMs, whiteMs float64) {
	return g.blackClockMs, g.whiteClockMs
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

// TryApplyMove runs the whole per-move pipeline: validate, commit,
// apply captures, evaluate win conditions, advance the turn. On any
// validation failure the board is untouched and the reason comes back.
func (g *Game) TryApplyMove(move Move) (bool, string) {
	if g.state.Status != StatusRunning {
		return false, "game not running"
	}
	if ok, reason := g.rules.IsLegalDefault(g.state, move); !ok {
		g.state.LastMessage = "Illegal move: " + reason
		return false, g.state.LastMessage
	}
	g.state.LastMessage = ""

	mover := g.state.ToMove
	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())
	if mover == PlayerBlack {
		g.blackClockMs += elapsedMs
	} else {
		g.whiteClockMs += elapsedMs
	}

	entry := g.commit(move, mover, elapsedMs, false)
	g.ledger.Push(entry)
	g.notifyMoveApplied(entry)
	if entry.CapturedCount > 0 {
		g.notifyCaptures(mover, entry.CapturedPositions)
	}
	logrus.WithFields(logrus.Fields{
		"player":   mover.String(),
		"x":        move.X,
		"y":        move.Y,
		"captured": entry.CapturedCount,
		"elapsed":  elapsedMs,
	}).Debug("move committed")

	g.evaluateAfterCommit(entry)
	if g.state.Status == StatusRunning {
		g.turnStart = time.Now()
		g.notifyTurnChanged(g.state.ToMove)
	}
	return true, ""
}

// commit mutates the board for one move: places the stone, removes the
// captured pairs and updates the tallies, and builds the ledger entry
// with the clock snapshot of both players.
func (g *Game) commit(move Move, mover PlayerColor, elapsedMs float64, forced bool) LedgerEntry {
	cell := CellFromPlayer(mover)
	g.state.Board.Set(move.X, move.Y, cell)
	g.state.LastMove = move
	g.state.HasLastMove = true
	g.state.MustCapture = false
	g.state.ForcedCaptureMoves = nil
	g.state.WinningLine = nil
	g.state.WinningCapturePair = nil

	captured := g.rules.FindCaptures(g.state.Board, move, cell)
	for _, taken := range captured {
		g.state.Board.Remove(taken.X, taken.Y)
	}
	if len(captured) > 0 {
		if mover == PlayerBlack {
			g.state.CapturedBlack += len(captured)
		} else {
			g.state.CapturedWhite += len(captured)
		}
	}
	return LedgerEntry{
		Move:              move,
		Player:            mover,
		CapturedPositions: captured,
		CapturedCount:     len(captured),
		ElapsedMs:         elapsedMs,
		BlackClockMs:      g.blackClockMs,
		WhiteClockMs:      g.whiteClockMs,
		Forced:            forced,
	}
}

// evaluateAfterCommit decides whether the committed move ends the game
// and otherwise advances the turn. Order follows the rulebook: capture
// win first, then alignment (suppressed while a breaking capture
// exists), then the opponent's forced capture win, then stalemate.
func (g *Game) evaluateAfterCommit(entry LedgerEntry) {
	mover := entry.Player
	if g.state.CapturedBy(mover) >= g.settings.CaptureWinStones {
		g.declareWinner(mover, winReasonCapture, nil, nil)
		return
	}

	opponent := otherPlayer(mover)
	requireCapture := false
	var forcedCaptures []Move
	if g.rules.IsWin(g.state.Board, entry.Move) {
		if !g.rules.OpponentCanBreakAlignment(g.state, opponent) {
			line, _ := g.rules.FindAlignmentLine(g.state.Board, entry.Move)
			g.declareWinner(mover, winReasonAlignment, line, nil)
			return
		}
		forcedCaptures = g.rules.FindAlignmentBreakCaptures(g.state, opponent)
		requireCapture = len(forcedCaptures) > 0
	}

	if forcedMove, captures, ok := g.rules.FindImmediateCaptureWinMove(g.state, opponent, g.state.CapturedBy(opponent)); ok {
		// The opponent holds a capture completing the tenth stone; the
		// mover cannot prevent it, so the reply is played for them.
		g.state.ToMove = opponent
		forcedEntry := g.commit(forcedMove, opponent, 0, true)
		g.ledger.Push(forcedEntry)
		g.notifyMoveApplied(forcedEntry)
		g.notifyCaptures(opponent, forcedEntry.CapturedPositions)
		g.declareWinner(opponent, winReasonCaptureThreat, nil, captures)
		return
	}

	if g.rules.IsDraw(g.state.Board) || !g.rules.HasAnyLegalMove(g.state, opponent) {
		g.state.Status = StatusDraw
		return
	}

	g.state.ToMove = opponent
	if requireCapture {
		g.state.MustCapture = true
		g.state.ForcedCaptureMoves = forcedCaptures
	}
}

func (g *Game) declareWinner(winner PlayerColor, reason string, line []Move, capturePair []Move) {
	if winner == PlayerBlack {
		g.state.Status = StatusBlackWon
	} else {
		g.state.Status = StatusWhiteWon
	}
	g.state.WinningLine = line
	g.state.WinningCapturePair = append([]Move(nil), capturePair...)
	logrus.WithFields(logrus.Fields{
		"winner": winner.String(),
		"reason": reason,
	}).Info("game over")
	snapshot := g.snapshotState()
	for _, listener := range g.listeners {
		listener.GameWon(winner, reason, snapshot)
	}
}

// JumpTo rewinds or forwards the match to just after ledger entry
// index-1 by replaying the ledger from an empty board. Captures are
// taken from the entries, never recomputed, so the reconstruction is
// exact. The read head moves to index; the next TryApplyMove will
// branch-cut the tail.
func (g *Game) JumpTo(index int) int {
	index = g.ledger.Seek(index)
	entries := g.ledger.Upto(index)

	g.state.Reset(g.settings)
	g.state.Status = StatusRunning
	g.blackClockMs = 0
	g.whiteClockMs = 0
	for _, entry := range entries {
		g.replayEntry(entry)
	}
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		g.blackClockMs = last.BlackClockMs
		g.whiteClockMs = last.WhiteClockMs
		g.evaluateReplayed(last)
	}
	g.turnStart = time.Now()
	return index
}

func (g *Game) replayEntry(entry LedgerEntry) {
	cell := CellFromPlayer(entry.Player)
	g.state.Board.Set(entry.Move.X, entry.Move.Y, cell)
	for _, taken := range entry.CapturedPositions {
		g.state.Board.Remove(taken.X, taken.Y)
	}
	if entry.Player == PlayerBlack {
		g.state.CapturedBlack += entry.CapturedCount
	} else {
		g.state.CapturedWhite += entry.CapturedCount
	}
	g.state.LastMove = entry.Move
	g.state.HasLastMove = true
	g.state.ToMove = otherPlayer(entry.Player)
}

// evaluateReplayed restores the terminal and forced-capture flags the
// last replayed entry implies, without emitting notifications or
// appending forced moves (any forced reply is itself in the ledger).
func (g *Game) evaluateReplayed(last LedgerEntry) {
	mover := last.Player
	if g.state.CapturedBy(mover) >= g.settings.CaptureWinStones {
		if mover == PlayerBlack {
			g.state.Status = StatusBlackWon
		} else {
			g.state.Status = StatusWhiteWon
		}
		g.state.ToMove = mover
		if last.Forced {
			g.state.WinningCapturePair = append([]Move(nil), last.CapturedPositions...)
		}
		return
	}
	opponent := otherPlayer(mover)
	if g.rules.IsWin(g.state.Board, last.Move) {
		if !g.rules.OpponentCanBreakAlignment(g.state, opponent) {
			line, _ := g.rules.FindAlignmentLine(g.state.Board, last.Move)
			if mover == PlayerBlack {
				g.state.Status = StatusBlackWon
			} else {
				g.state.Status = StatusWhiteWon
			}
			g.state.WinningLine = line
			g.state.ToMove = mover
			return
		}
		forced := g.rules.FindAlignmentBreakCaptures(g.state, opponent)
		if len(forced) > 0 {
			g.state.MustCapture = true
			g.state.ForcedCaptureMoves = forced
		}
	}
	if g.rules.IsDraw(g.state.Board) {
		g.state.Status = StatusDraw
	}
}

// SubmitHumanMove parks a move for the human seat; the tick loop picks
// it up on that color's turn.
func (g *Game) SubmitHumanMove(move Move) bool {
	if g.settings.SeatFor(g.state.ToMove) != SeatHuman {
		return false
	}
	g.pendingMove = move
	g.pendingHuman = true
	return true
}

func (g *Game) TakePendingHumanMove() (Move, bool) {
	if !g.pendingHuman {
		return Move{}, false
	}
	g.pendingHuman = false
	return g.pendingMove, true
}

func (g *Game) CurrentSeat() SeatController {
	return g.settings.SeatFor(g.state.ToMove)
}

func (g *Game) notifyMoveApplied(entry LedgerEntry) {
	if len(g.listeners) == 0 {
		return
	}
	snapshot := g.snapshotState()
	for _, listener := range g.listeners {
		listener.MoveApplied(entry.clone(), snapshot)
	}
}

func (g *Game) notifyCaptures(player PlayerColor, captured []Move) {
	if len(captured) == 0 {
		return
	}
	tally := g.state.CapturedBy(player)
	for _, listener := range g.listeners {
		listener.CapturesMade(player, append([]Move(nil), captured...), tally)
	}
}

func (g *Game) notifyTurnChanged(next PlayerColor) {
	for _, listener := range g.listeners {
		listener.TurnChanged(next)
	}
}
