package main

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

const advisorMaxAttempts = 3

// advisorModel is the narrow surface the bridge needs from the hosted
// model; tests plug in fakes.
type advisorModel interface {
	Generate(ctx context.Context, transcript []advisorTurn) (string, error)
}

type advisorTurn struct {
	role genai.Role
	text string
}

// Advisor bridges to a network-hosted reasoning agent. The agent's
// free-form proposals are untrusted: every one runs through the same
// validator a human move gets, and failures are fed back into the
// exchange like a rules explanation before the next attempt.
type Advisor struct {
	model advisorModel
}

func NewAdvisor(model advisorModel) *Advisor {
	return &Advisor{model: model}
}

// Suggest runs the bounded request/validate/feedback loop. It never
// substitutes a fallback move; the caller decides what exhaustion
// means.
func (a *Advisor) Suggest(ctx context.Context, state GameState, validate func(Move) (bool, string)) (Move, error) {
	transcript := []advisorTurn{{role: genai.RoleUser, text: a.describeState(state)}}
	for attempt := 0; attempt < advisorMaxAttempts; attempt++ {
		reply, err := a.model.Generate(ctx, transcript)
		if err != nil {
			return Move{}, fmt.Errorf("advisor request failed: %w", err)
		}
		transcript = append(transcript, advisorTurn{role: genai.RoleModel, text: reply})

		move, ok := parseMoveReply(reply)
		if !ok {
			transcript = append(transcript, advisorTurn{
				role: genai.RoleUser,
				text: "I could not read a move from that. Reply with exactly one line of the form \"row,col\", both zero-based integers.",
			})
			continue
		}
		if legal, reason := validate(move); !legal {
			transcript = append(transcript, advisorTurn{
				role: genai.RoleUser,
				text: a.ruleFeedback(state, move, reason),
			})
			continue
		}
		return move, nil
	}
	return Move{}, ErrAgentExhausted
}

func (a *Advisor) describeState(state GameState) string {
	var sb strings.Builder
	size := state.Board.Size()
	sb.WriteString("You are playing a capture variant of Gomoku on a ")
	fmt.Fprintf(&sb, "%dx%d board. Five in a row wins; flanking an enemy pair captures it; ", size, size)
	sb.WriteString("ten captured stones win. Double free-threes and moving into a capture are forbidden.\n")
	fmt.Fprintf(&sb, "You play %s. Captures so far: black %d, white %d.\n", state.ToMove, state.CapturedBlack, state.CapturedWhite)
	sb.WriteString("Board ('.' empty, 'B' black, 'W' white), row 0 first:\n")
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			switch state.Board.At(x, y) {
			case CellBlack:
				sb.WriteByte('B')
			case CellWhite:
				sb.WriteByte('W')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("Answer with your move as \"row,col\", zero-based, nothing else.")
	return sb.String()
}

// ruleFeedback explains the rejection and lists every occupied point
// so the agent stops proposing taken intersections.
func (a *Advisor) ruleFeedback(state GameState, move Move, reason string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your move %d,%d is illegal: %s.\n", move.Y, move.X, reason)
	sb.WriteString("Occupied positions (row,col): ")
	size := state.Board.Size()
	first := true
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if state.Board.At(x, y) == CellEmpty {
				continue
			}
			if !first {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "%d,%d", y, x)
			first = false
		}
	}
	sb.WriteString("\nPick a different legal move and reply as \"row,col\".")
	return sb.String()
}

var movePattern = regexp.MustCompile(`(\d{1,2})\s*[,;: ]\s*(\d{1,2})`)

// parseMoveReply pulls the first "row,col" pair out of free-form text.
// Range checking is the validator's job, not the parser's.
func parseMoveReply(reply string) (Move, bool) {
	match := movePattern.FindStringSubmatch(reply)
	if match == nil {
		return Move{}, false
	}
	row, err := strconv.Atoi(match[1])
	if err != nil {
		return Move{}, false
	}
	col, err := strconv.Atoi(match[2])
	if err != nil {
		return Move{}, false
	}
	return Move{X: col, Y: row}, true
}

// genaiAdvisorModel backs Advisor with the Gemini API.
type genaiAdvisorModel struct {
	client *genai.Client
	model  string
}

func newGenaiAdvisorModel(ctx context.Context, apiKey, model string) (*genaiAdvisorModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("advisor API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create advisor client: %w", err)
	}
	return &genaiAdvisorModel{client: client, model: model}, nil
}

func (m *genaiAdvisorModel) Generate(ctx context.Context, transcript []advisorTurn) (string, error) {
	contents := make([]*genai.Content, 0, len(transcript))
	for _, turn := range transcript {
		contents = append(contents, genai.NewContentFromText(turn.text, turn.role))
	}
	resp, err := m.client.Models.GenerateContent(ctx, m.model, contents, nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
