package main

// MatchListener receives domain notifications from the match core.
// The flow is one-directional: the game notifies after it has finished
// mutating; listeners must not call back into the game synchronously.
// Snapshots handed to listeners are defensive copies.
type MatchListener interface {
	MoveApplied(entry LedgerEntry, state GameState)
	CapturesMade(player PlayerColor, captured []Move, tally int)
	GameWon(winner PlayerColor, reason string, state GameState)
	TurnChanged(next PlayerColor)
}

// MatchListenerFuncs adapts plain funcs to MatchListener; nil fields
// are skipped.
type MatchListenerFuncs struct {
	OnMoveApplied  func(entry LedgerEntry, state GameState)
	OnCapturesMade func(player PlayerColor, captured []Move, tally int)
	OnGameWon      func(winner PlayerColor, reason string, state GameState)
	OnTurnChanged  func(next PlayerColor)
}

func (l MatchListenerFuncs) MoveApplied(entry LedgerEntry, state GameState) {
	if l.OnMoveApplied != nil {
		l.OnMoveApplied(entry, state)
	}
}

func (l MatchListenerFuncs) CapturesMade(player PlayerColor, captured []Move, tally int) {
	if l.OnCapturesMade != nil {
		l.OnCapturesMade(player, captured, tally)
	}
}

func (l MatchListenerFuncs) GameWon(winner PlayerColor, reason string, state GameState) {
	if l.OnGameWon != nil {
		l.OnGameWon(winner, reason, state)
	}
}

func (l MatchListenerFuncs) TurnChanged(next PlayerColor) {
	if l.OnTurnChanged != nil {
		l.OnTurnChanged(next)
	}
}
