package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	store := NewFileRecordStore(path)

	board := NewLeaderboard(store)
	board.Add(MatchRecord{Winner: "black", Outcome: winReasonAlignment, Moves: 12})
	board.Add(MatchRecord{Winner: "white", Outcome: winReasonCapture, Moves: 30})

	reloaded := NewLeaderboard(NewFileRecordStore(path))
	records := reloaded.All()
	require.Len(t, records, 2)
	assert.Equal(t, "black", records[0].Winner)
	assert.Equal(t, winReasonCapture, records[1].Outcome)
}

func TestLeaderboardTopSortsByMoves(t *testing.T) {
	board := NewLeaderboard(nil)
	board.Add(MatchRecord{Winner: "black", Moves: 30, ElapsedSeconds: 60})
	board.Add(MatchRecord{Winner: "white", Moves: 12, ElapsedSeconds: 200})
	board.Add(MatchRecord{Winner: "black", Moves: 12, ElapsedSeconds: 90})

	top := board.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, 12, top[0].Moves)
	assert.Equal(t, 90, top[0].ElapsedSeconds, "equal move counts rank by elapsed time")
	assert.Equal(t, 200, top[1].ElapsedSeconds)
}

func TestLeaderboardLoadMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	board := NewLeaderboard(NewFileRecordStore(path))
	assert.Empty(t, board.All())
}

func TestLeaderboardRecordFinishedMatch(t *testing.T) {
	board := NewLeaderboard(nil)
	settings := testSettings(9)
	settings.WhiteSeat = SeatEngine
	state := DefaultGameState(settings)
	state.CapturedBlack = 10
	state.CapturedWhite = 4

	board.RecordFinishedMatch(PlayerBlack, winReasonCapture, state, settings, 40, 61000, 59000)
	records := board.All()
	require.Len(t, records, 1)
	record := records[0]
	assert.Equal(t, "black", record.Winner)
	assert.Equal(t, winReasonCapture, record.Outcome)
	assert.Equal(t, 40, record.Moves)
	assert.Equal(t, 120, record.ElapsedSeconds)
	assert.Equal(t, "human", record.BlackSeat)
	assert.Equal(t, "engine", record.WhiteSeat)
	assert.Equal(t, 10, record.BlackCaptures)
	assert.NotEmpty(t, record.Date)
}
