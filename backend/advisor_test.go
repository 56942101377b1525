package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedModel struct {
	replies     []string
	err         error
	transcripts [][]advisorTurn
}

func (m *scriptedModel) Generate(ctx context.Context, transcript []advisorTurn) (string, error) {
	snapshot := append([]advisorTurn(nil), transcript...)
	m.transcripts = append(m.transcripts, snapshot)
	if m.err != nil {
		return "", m.err
	}
	idx := len(m.transcripts) - 1
	if idx >= len(m.replies) {
		idx = len(m.replies) - 1
	}
	return m.replies[idx], nil
}

func alwaysLegal(Move) (bool, string) { return true, "" }

func TestAdvisorAcceptsFirstLegalMove(t *testing.T) {
	model := &scriptedModel{replies: []string{"3,4"}}
	advisor := NewAdvisor(model)
	state := DefaultGameState(testSettings(9))

	move, err := advisor.Suggest(context.Background(), state, alwaysLegal)
	require.NoError(t, err)
	assert.Equal(t, Move{X: 4, Y: 3}, move, "reply is row,col")
	require.Len(t, model.transcripts, 1)
}

func TestAdvisorRetriesWithRuleFeedback(t *testing.T) {
	model := &scriptedModel{replies: []string{"4,4", "5,5"}}
	advisor := NewAdvisor(model)
	state := DefaultGameState(testSettings(9))
	state.Board.Set(4, 4, CellWhite)

	validate := func(move Move) (bool, string) {
		if move.Equals(Move{X: 4, Y: 4}) {
			return false, MoveOccupied.Reason()
		}
		return true, ""
	}
	move, err := advisor.Suggest(context.Background(), state, validate)
	require.NoError(t, err)
	assert.Equal(t, Move{X: 5, Y: 5}, move)
	require.Len(t, model.transcripts, 2)

	second := model.transcripts[1]
	feedback := second[len(second)-1]
	assert.Contains(t, feedback.text, "illegal")
	assert.Contains(t, feedback.text, "4,4", "feedback lists the occupied position")
}

func TestAdvisorCorrectsUnparseableReply(t *testing.T) {
	model := &scriptedModel{replies: []string{"I resign, the position is hopeless", "2,6"}}
	advisor := NewAdvisor(model)
	state := DefaultGameState(testSettings(9))

	move, err := advisor.Suggest(context.Background(), state, alwaysLegal)
	require.NoError(t, err)
	assert.Equal(t, Move{X: 6, Y: 2}, move)

	second := model.transcripts[1]
	feedback := second[len(second)-1]
	assert.Contains(t, feedback.text, "row,col")
}

func TestAdvisorExhaustsAfterThreeAttempts(t *testing.T) {
	model := &scriptedModel{replies: []string{"4,4", "4,4", "4,4", "4,4"}}
	advisor := NewAdvisor(model)
	state := DefaultGameState(testSettings(9))

	rejectAll := func(Move) (bool, string) { return false, MoveOccupied.Reason() }
	_, err := advisor.Suggest(context.Background(), state, rejectAll)
	require.ErrorIs(t, err, ErrAgentExhausted)
	assert.Len(t, model.transcripts, advisorMaxAttempts, "never a fourth attempt, never a fallback move")
}

func TestAdvisorPropagatesTransportError(t *testing.T) {
	wantErr := errors.New("connection reset")
	model := &scriptedModel{err: wantErr}
	advisor := NewAdvisor(model)
	state := DefaultGameState(testSettings(9))

	_, err := advisor.Suggest(context.Background(), state, alwaysLegal)
	require.ErrorIs(t, err, wantErr)
	assert.Len(t, model.transcripts, 1, "transport failures are not retried")
}

func TestAdvisorOutOfBoundsGoesToValidator(t *testing.T) {
	model := &scriptedModel{replies: []string{"42,42", "1,1"}}
	advisor := NewAdvisor(model)
	settings := testSettings(9)
	state := DefaultGameState(settings)
	rules := NewRules(settings)

	validate := func(move Move) (bool, string) {
		return rules.IsLegal(state, move, state.ToMove)
	}
	move, err := advisor.Suggest(context.Background(), state, validate)
	require.NoError(t, err)
	assert.Equal(t, Move{X: 1, Y: 1}, move)

	second := model.transcripts[1]
	feedback := second[len(second)-1]
	assert.Contains(t, strings.ToLower(feedback.text), "illegal")
}

func TestAdvisorPromptDescribesBoard(t *testing.T) {
	model := &scriptedModel{replies: []string{"0,0"}}
	advisor := NewAdvisor(model)
	state := DefaultGameState(testSettings(5))
	state.Board.Set(2, 1, CellBlack)
	state.Board.Set(3, 3, CellWhite)
	state.CapturedBlack = 2

	_, err := advisor.Suggest(context.Background(), state, alwaysLegal)
	require.NoError(t, err)

	prompt := model.transcripts[0][0].text
	assert.Contains(t, prompt, "5x5")
	assert.Contains(t, prompt, fmt.Sprintf("black %d", 2))
	assert.Contains(t, prompt, "..B..", "row 1 shows the black stone")
	assert.Contains(t, prompt, "...W.", "row 3 shows the white stone")
}
