package main

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type engineOp int

const (
	opComputeBestMove engineOp = iota
	opIsLegal
	opIsSuicide
	opIsDoubleThree
	opIsWin
	opEnumerateCaptures
)

type engineRequest struct {
	op    engineOp
	frame *frame
	move  Move
	reply chan engineResponse
}

type engineResponse struct {
	move     Move
	flag     bool
	reason   string
	captures []Move
	err      error
}

// EngineChannel is the bridge to the move-search engine, which runs on
// its own goroutine. All traffic is message passing over the request
// channel; the only shared memory is the marshalled frame of a single
// request, and the channel serializes requests so frames never alias.
//
// Responses are matched to the match epoch by session id: the caller
// captures the id before issuing, and a response arriving after the
// channel moved to a newer session is discarded unconditionally.
type EngineChannel struct {
	requests chan engineRequest
	quit     chan struct{}
	closed   atomic.Bool
	pending  atomic.Bool

	mu      sync.Mutex
	session uuid.UUID
}

// NewEngineChannel boots the engine worker. A nil return with
// ErrChannelUnavailable disables the engine seat without killing the
// match.
func NewEngineChannel(settings GameSettings, cfg EngineConfig) (*EngineChannel, error) {
	engine, err := newSearchEngine(settings, cfg)
	if err != nil {
		return nil, ErrChannelUnavailable
	}
	c := &EngineChannel{
		requests: make(chan engineRequest),
		quit:     make(chan struct{}),
	}
	go c.serve(engine)
	return c, nil
}

// UpdateSession moves the channel to a new match epoch; responses
// captured under older ids become stale.
func (c *EngineChannel) UpdateSession(session uuid.UUID) {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
}

func (c *EngineChannel) currentSession() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *EngineChannel) Shutdown() {
	if c.closed.CompareAndSwap(false, true) {
		close(c.quit)
	}
}

func (c *EngineChannel) serve(engine *searchEngine) {
	for {
		select {
		case <-c.quit:
			return
		case req := <-c.requests:
			resp := engine.handle(req)
			req.frame.release()
			req.reply <- resp
		}
	}
}

// ComputeBestMove issues the one asynchronous search request. At most
// one may be outstanding; a second concurrent call fails immediately
// with ErrRequestPending. On response the captured session id is
// checked against the channel's current one and stale results are
// dropped before the caller can apply them.
func (c *EngineChannel) ComputeBestMove(ctx context.Context, session uuid.UUID, state GameState) (Move, error) {
	if !c.pending.CompareAndSwap(false, true) {
		return Move{}, ErrRequestPending
	}
	defer c.pending.Store(false)

	resp, err := c.call(ctx, engineRequest{op: opComputeBestMove, frame: acquireFrame(state)})
	if err != nil {
		return Move{}, err
	}
	if session != c.currentSession() {
		logrus.WithField("session", session.String()).Debug(ErrStaleSession.Error())
		return Move{}, ErrStaleSession
	}
	if resp.err != nil {
		return Move{}, resp.err
	}
	return resp.move, nil
}

// Rule-check passthroughs: synchronous query/response pairs evaluated
// on the boundary side with the same marshalling discipline.

func (c *EngineChannel) IsLegal(ctx context.Context, state GameState, move Move) (bool, string, error) {
	resp, err := c.call(ctx, engineRequest{op: opIsLegal, frame: acquireFrame(state), move: move})
	if err != nil {
		return false, "", err
	}
	return resp.flag, resp.reason, resp.err
}

func (c *EngineChannel) IsSuicide(ctx context.Context, state GameState, move Move) (bool, error) {
	resp, err := c.call(ctx, engineRequest{op: opIsSuicide, frame: acquireFrame(state), move: move})
	if err != nil {
		return false, err
	}
	return resp.flag, resp.err
}

func (c *EngineChannel) IsDoubleThree(ctx context.Context, state GameState, move Move) (bool, error) {
	resp, err := c.call(ctx, engineRequest{op: opIsDoubleThree, frame: acquireFrame(state), move: move})
	if err != nil {
		return false, err
	}
	return resp.flag, resp.err
}

func (c *EngineChannel) IsWin(ctx context.Context, state GameState, lastMove Move) (bool, error) {
	resp, err := c.call(ctx, engineRequest{op: opIsWin, frame: acquireFrame(state), move: lastMove})
	if err != nil {
		return false, err
	}
	return resp.flag, resp.err
}

func (c *EngineChannel) EnumerateCaptures(ctx context.Context, state GameState, move Move) ([]Move, error) {
	resp, err := c.call(ctx, engineRequest{op: opEnumerateCaptures, frame: acquireFrame(state), move: move})
	if err != nil {
		return nil, err
	}
	return resp.captures, resp.err
}

// call hands the frame across the boundary. Ownership transfers on
// send: the worker releases it after handling, and the caller releases
// it on every path where the request never went out.
func (c *EngineChannel) call(ctx context.Context, req engineRequest) (engineResponse, error) {
	if c.closed.Load() {
		req.frame.release()
		return engineResponse{}, ErrChannelUnavailable
	}
	req.reply = make(chan engineResponse, 1)
	select {
	case c.requests <- req:
	case <-c.quit:
		req.frame.release()
		return engineResponse{}, ErrChannelUnavailable
	case <-ctx.Done():
		req.frame.release()
		return engineResponse{}, ctx.Err()
	}
	select {
	case resp := <-req.reply:
		return resp, nil
	case <-ctx.Done():
		// The boundary call cannot be preempted; it completes into the
		// buffered reply channel and the result is abandoned.
		return engineResponse{}, ctx.Err()
	}
}
