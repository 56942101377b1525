package main

// SeatController says what drives a color: a human clicking, the local
// search engine behind the compute channel, or the network advisor.
type SeatController int

const (
	SeatHuman SeatController = iota
	SeatEngine
	SeatAgent
)

func (s SeatController) String() string {
	switch s {
	case SeatEngine:
		return "engine"
	case SeatAgent:
		return "agent"
	default:
		return "human"
	}
}

type GameSettings struct {
	BoardSize              int            `json:"board_size"`
	WinLength              int            `json:"win_length"`
	BlackSeat              SeatController `json:"-"`
	WhiteSeat              SeatController `json:"-"`
	BlackStarts            bool           `json:"black_starts"`
	CaptureWinStones       int            `json:"capture_win_stones"`
	ForbidDoubleThreeBlack bool           `json:"forbid_double_three_black"`
	ForbidDoubleThreeWhite bool           `json:"forbid_double_three_white"`
	ForbidSuicide          bool           `json:"forbid_suicide"`
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		BoardSize:              19,
		WinLength:              5,
		BlackSeat:              SeatHuman,
		WhiteSeat:              SeatEngine,
		BlackStarts:            true,
		CaptureWinStones:       10,
		ForbidDoubleThreeBlack: true,
		ForbidDoubleThreeWhite: true,
		ForbidSuicide:          true,
	}
}

func (s GameSettings) SeatFor(color PlayerColor) SeatController {
	if color == PlayerBlack {
		return s.BlackSeat
	}
	return s.WhiteSeat
}
