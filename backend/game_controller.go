package main

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// GameController serializes all access to the match core and owns the
// session identity used to cancel stale asynchronous results. A new
// session id is minted on every start, reset and ledger rewind; any
// compute or advisor response tagged with an older id is dropped
// before it can touch the board.
type GameController struct {
	mu       sync.Mutex
	game     Game
	session  uuid.UUID
	engine   *EngineChannel
	advisor  *Advisor
	seatBusy bool
}

func NewGameController(settings GameSettings) *GameController {
	return &GameController{
		game:    NewGame(settings),
		session: uuid.New(),
	}
}

func (gc *GameController) SetEngineChannel(engine *EngineChannel) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.engine = engine
	if engine != nil {
		engine.UpdateSession(gc.session)
	}
}

// mintSessionLocked starts a new match epoch and tells the engine
// boundary about it so in-flight responses go stale.
func (gc *GameController) mintSessionLocked() {
	gc.session = uuid.New()
	gc.seatBusy = false
	if gc.engine != nil {
		gc.engine.UpdateSession(gc.session)
	}
}

func (gc *GameController) SetAdvisor(advisor *Advisor) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.advisor = advisor
}

func (gc *GameController) AddListener(listener MatchListener) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.AddListener(listener)
}

func (gc *GameController) Session() uuid.UUID {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.session
}

func (gc *GameController) State() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.State()
}

func (gc *GameController) Ledger() Ledger {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Ledger()
}

func (gc *GameController) Settings() GameSettings {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Settings()
}

func (gc *GameController) Clocks() (blackMs, whiteMs float64) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Clocks()
}

func (gc *GameController) CurrentTurnStartedAtMs() int64 {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.TurnStartedAtMs()
}

func (gc *GameController) LatestLedgerEntry() (LedgerEntry, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	ledger := gc.game.Ledger()
	if ledger.Size() == 0 {
		return LedgerEntry{}, false
	}
	return ledger.At(ledger.Size() - 1)
}

func (gc *GameController) OnCellClicked(x, y int) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	_ = gc.game.SubmitHumanMove(Move{X: x, Y: y})
}

func (gc *GameController) ApplyHumanMove(move Move) (bool, string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if gc.game.CurrentSeat() != SeatHuman {
		return false, "not human turn"
	}
	return gc.game.TryApplyMove(move)
}

// Tick drives the seat whose turn it is. Human seats consume a parked
// click; engine and agent seats get one asynchronous request each,
// dispatched off the lock and re-validated on delivery.
func (gc *GameController) Tick(ctx context.Context) bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if gc.game.State().Status != StatusRunning {
		return false
	}
	switch gc.game.CurrentSeat() {
	case SeatHuman:
		if move, ok := gc.game.TakePendingHumanMove(); ok {
			applied, _ := gc.game.TryApplyMove(move)
			return applied
		}
	case SeatEngine:
		gc.dispatchEngine(ctx)
	case SeatAgent:
		gc.dispatchAgent(ctx)
	}
	return false
}

func (gc *GameController) dispatchEngine(ctx context.Context) {
	if gc.engine == nil {
		return
	}
	if gc.seatBusy {
		return
	}
	gc.seatBusy = true
	session := gc.session
	state := gc.game.State()
	engine := gc.engine
	go func() {
		move, err := engine.ComputeBestMove(ctx, session, state)
		gc.deliverAsyncMove(session, move, err, "engine")
	}()
}

func (gc *GameController) dispatchAgent(ctx context.Context) {
	if gc.advisor == nil {
		return
	}
	if gc.seatBusy {
		return
	}
	gc.seatBusy = true
	session := gc.session
	state := gc.game.State()
	rules := gc.game.Rules()
	advisor := gc.advisor
	validate := func(move Move) (bool, string) {
		return rules.IsLegal(state, move, state.ToMove)
	}
	go func() {
		move, err := advisor.Suggest(ctx, state, validate)
		gc.deliverAsyncMove(session, move, err, "agent")
	}()
}

// deliverAsyncMove is the single re-entry point for engine and agent
// results. The session check runs before anything else: a stale
// response never mutates the board, no matter how legal it looks.
func (gc *GameController) deliverAsyncMove(session uuid.UUID, move Move, err error, source string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if session != gc.session {
		logrus.WithFields(logrus.Fields{
			"source":  source,
			"session": session.String(),
		}).Debug(ErrStaleSession.Error())
		return
	}
	gc.seatBusy = false
	if err != nil {
		if errors.Is(err, ErrAgentExhausted) || errors.Is(err, ErrChannelUnavailable) {
			logrus.WithError(err).WithField("source", source).Warn("opponent seat failed to move")
		} else {
			logrus.WithError(err).WithField("source", source).Debug("async move dropped")
		}
		return
	}
	if applied, reason := gc.game.TryApplyMove(move); !applied {
		logrus.WithFields(logrus.Fields{
			"source": source,
			"x":      move.X,
			"y":      move.Y,
			"reason": reason,
		}).Warn(ErrEngineInvalidMove.Error())
	}
}

// JumpTo rewinds the match to index and mints a fresh session so any
// in-flight compute against the pre-rewind position gets discarded.
func (gc *GameController) JumpTo(index int) int {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.mintSessionLocked()
	return gc.game.JumpTo(index)
}

func (gc *GameController) Reset(settings GameSettings) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.mintSessionLocked()
	gc.game.Reset(settings)
}

func (gc *GameController) StartGame(settings GameSettings) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.mintSessionLocked()
	gc.game.Reset(settings)
	gc.game.Start()
}

func (gc *GameController) UpdateSettings(update GameSettings, reset bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if reset {
		gc.mintSessionLocked()
		gc.game.Reset(update)
		return
	}
	gc.game.settings = update
	gc.game.rules = NewRules(update)
}
