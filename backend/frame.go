package main

import "sync"

// frame is the marshalled payload crossing the engine boundary: the
// board serialized row-major with the 0/1/2 cell encoding plus the
// request scalars. Buffers are pooled; acquire, write, call, then
// release on every path so no two in-flight requests ever alias one.
type frame struct {
	cells         []int
	boardSize     int
	player        PlayerColor
	blackCaptures int
	whiteCaptures int
}

var framePool = sync.Pool{
	New: func() any { return &frame{} },
}

func acquireFrame(state GameState) *frame {
	f := framePool.Get().(*frame)
	f.cells = state.Board.Flatten(f.cells)
	f.boardSize = state.Board.Size()
	f.player = state.ToMove
	f.blackCaptures = state.CapturedBlack
	f.whiteCaptures = state.CapturedWhite
	return f
}

func (f *frame) release() {
	framePool.Put(f)
}

// rehydrate rebuilds a Board from the wire cells on the boundary side.
func (f *frame) rehydrate() (Board, error) {
	return BoardFromFlat(f.cells, f.boardSize)
}
