package main

type PlayerColor int

type GameStatus int

const (
	PlayerBlack PlayerColor = iota
	PlayerWhite
)

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusBlackWon
	StatusWhiteWon
	StatusDraw
)

func (p PlayerColor) String() string {
	if p == PlayerBlack {
		return "black"
	}
	return "white"
}

// GameState is the authoritative match position. Clone produces the
// defensive copy handed to listeners and bridges; consumers mutating a
// clone can never tear the live board.
type GameState struct {
	Board              Board
	Settings           GameSettings
	ToMove             PlayerColor
	Status             GameStatus
	HasLastMove        bool
	LastMove           Move
	CapturedBlack      int
	CapturedWhite      int
	MustCapture        bool
	ForcedCaptureMoves []Move
	WinningLine        []Move
	WinningCapturePair []Move
	MoveCount          int
	BlackClockMs       float64
	WhiteClockMs       float64
	LastMessage        string
}

func DefaultGameState(settings GameSettings) GameState {
	state := GameState{}
	state.Reset(settings)
	return state
}

func (s *GameState) Reset(settings GameSettings) {
	s.Board = NewBoard(settings.BoardSize)
	s.Settings = settings
	s.MoveCount = 0
	s.BlackClockMs = 0
	s.WhiteClockMs = 0
	if settings.BlackStarts {
		s.ToMove = PlayerBlack
	} else {
		s.ToMove = PlayerWhite
	}
	s.Status = StatusNotStarted
	s.HasLastMove = false
	s.LastMove = Move{X: -1, Y: -1}
	s.CapturedBlack = 0
	s.CapturedWhite = 0
	s.MustCapture = false
	s.ForcedCaptureMoves = nil
	s.WinningLine = nil
	s.WinningCapturePair = nil
	s.LastMessage = ""
}

func (s GameState) Clone() GameState {
	clone := s
	clone.Board = s.Board.Clone()
	clone.ForcedCaptureMoves = append([]Move(nil), s.ForcedCaptureMoves...)
	clone.WinningLine = append([]Move(nil), s.WinningLine...)
	clone.WinningCapturePair = append([]Move(nil), s.WinningCapturePair...)
	return clone
}

func (s GameState) CapturedBy(player PlayerColor) int {
	if player == PlayerBlack {
		return s.CapturedBlack
	}
	return s.CapturedWhite
}

func (s GameState) Winner() (PlayerColor, bool) {
	switch s.Status {
	case StatusBlackWon:
		return PlayerBlack, true
	case StatusWhiteWon:
		return PlayerWhite, true
	default:
		return PlayerBlack, false
	}
}

func otherPlayer(player PlayerColor) PlayerColor {
	if player == PlayerBlack {
		return PlayerWhite
	}
	return PlayerBlack
}
