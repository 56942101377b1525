package main

import "errors"

// MoveStatus is the outcome of running a candidate move through the
// validation pipeline. Anything but MoveOK leaves the board untouched.
type MoveStatus int

const (
	MoveOK MoveStatus = iota
	MoveOutOfBounds
	MoveOccupied
	MoveSuicide
	MoveDoubleThree
	MoveMustCapture
)

func (s MoveStatus) Reason() string {
	switch s {
	case MoveOK:
		return ""
	case MoveOutOfBounds:
		return "out of bounds"
	case MoveOccupied:
		return "occupied"
	case MoveSuicide:
		return "suicide move"
	case MoveDoubleThree:
		return "forbidden double three"
	case MoveMustCapture:
		return "must play a breaking capture"
	default:
		return "invalid move"
	}
}

var (
	// ErrChannelUnavailable means the engine boundary never came up.
	// The engine seat is disabled but the match keeps running.
	ErrChannelUnavailable = errors.New("engine channel unavailable")

	// ErrRequestPending rejects a second compute request while one is
	// already in flight on the same channel.
	ErrRequestPending = errors.New("compute request already pending")

	// ErrStaleSession marks a response whose session id no longer
	// matches the channel's current session. The result is discarded.
	ErrStaleSession = errors.New("stale session response discarded")

	// ErrEngineInvalidMove means the boundary proposed a move that
	// failed re-validation. Engine output is never trusted blindly.
	ErrEngineInvalidMove = errors.New("engine proposed an invalid move")

	// ErrAgentExhausted means the reasoning agent burned its whole
	// retry budget without producing a legal move.
	ErrAgentExhausted = errors.New("advisor retry budget exhausted")
)
