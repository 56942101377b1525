package main

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerMintsSessionOnMatchBoundaries(t *testing.T) {
	settings := testSettings(9)
	controller := NewGameController(settings)
	first := controller.Session()

	controller.StartGame(settings)
	afterStart := controller.Session()
	assert.NotEqual(t, first, afterStart)

	controller.JumpTo(0)
	afterJump := controller.Session()
	assert.NotEqual(t, afterStart, afterJump)

	controller.Reset(settings)
	assert.NotEqual(t, afterJump, controller.Session())
}

func TestControllerRejectsHumanMoveOnEngineSeat(t *testing.T) {
	settings := testSettings(9)
	settings.BlackSeat = SeatEngine
	controller := NewGameController(settings)
	controller.StartGame(settings)

	applied, reason := controller.ApplyHumanMove(Move{X: 4, Y: 4})
	assert.False(t, applied)
	assert.Equal(t, "not human turn", reason)
}

func TestControllerAppliesHumanMove(t *testing.T) {
	settings := testSettings(9)
	controller := NewGameController(settings)
	controller.StartGame(settings)

	applied, reason := controller.ApplyHumanMove(Move{X: 4, Y: 4})
	require.True(t, applied, "unexpected rejection: %s", reason)
	assert.Equal(t, 1, controller.Ledger().Size())
	assert.Equal(t, PlayerWhite, controller.State().ToMove)
}

func TestControllerStaleDeliveryNeverMutates(t *testing.T) {
	settings := testSettings(9)
	controller := NewGameController(settings)
	controller.StartGame(settings)

	controller.deliverAsyncMove(uuid.New(), Move{X: 4, Y: 4}, nil, "engine")
	assert.Equal(t, 0, controller.Ledger().Size())
	assert.True(t, controller.State().Board.IsBlank())
}

func TestControllerTickDrivesEngineSeat(t *testing.T) {
	settings := testSettings(9)
	settings.BlackSeat = SeatEngine
	settings.WhiteSeat = SeatHuman
	controller := NewGameController(settings)
	engine, err := NewEngineChannel(settings, EngineConfig{Depth: 1, MaxCandidates: 8})
	require.NoError(t, err)
	defer engine.Shutdown()
	controller.SetEngineChannel(engine)
	controller.StartGame(settings)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.Eventually(t, func() bool {
		controller.Tick(ctx)
		return controller.Ledger().Size() >= 1
	}, 5*time.Second, 10*time.Millisecond, "engine seat never moved")

	entry, ok := controller.LatestLedgerEntry()
	require.True(t, ok)
	assert.Equal(t, PlayerBlack, entry.Player)
	assert.Equal(t, PlayerWhite, controller.State().ToMove)
}

func TestControllerTickConsumesParkedClick(t *testing.T) {
	settings := testSettings(9)
	controller := NewGameController(settings)
	controller.StartGame(settings)

	controller.OnCellClicked(3, 3)
	ctx := context.Background()
	assert.True(t, controller.Tick(ctx))
	assert.Equal(t, 1, controller.Ledger().Size())

	// Nothing parked, nothing happens.
	assert.False(t, controller.Tick(ctx))
}

func TestControllerUpdateSettingsInPlaceKeepsBoard(t *testing.T) {
	settings := testSettings(9)
	controller := NewGameController(settings)
	controller.StartGame(settings)
	applied, _ := controller.ApplyHumanMove(Move{X: 4, Y: 4})
	require.True(t, applied)

	update := settings
	update.WhiteSeat = SeatAgent
	controller.UpdateSettings(update, false)
	assert.Equal(t, SeatAgent, controller.Settings().WhiteSeat)
	assert.Equal(t, 1, controller.Ledger().Size(), "in-place update keeps the match")

	controller.UpdateSettings(update, true)
	assert.Equal(t, 0, controller.Ledger().Size(), "reset update clears the match")
}
