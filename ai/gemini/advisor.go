// Package gemini asks a Gemini model for a move. Its answers are only
// suggestions: anything that is not a legal action is refused, and the
// caller falls back to the search.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/domino14/dobutsu/board"
	"github.com/domino14/dobutsu/config"
	"github.com/domino14/dobutsu/game"
	"github.com/domino14/dobutsu/move"
)

const DefaultModel = "gemini-2.5-pro"

var (
	ErrNoAPIKey           = errors.New("no Gemini API key configured")
	ErrUnusableSuggestion = errors.New("model suggested an unusable action")
)

// generator is the part of genai.Models the advisor calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Advisor struct {
	models generator
	model  string
}

func NewAdvisor(ctx context.Context, cfg *config.Config) (*Advisor, error) {
	key := cfg.GetString(config.ConfigGeminiAPIKey)
	if key == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	model := cfg.GetString(config.ConfigGeminiModel)
	if model == "" {
		model = DefaultModel
	}
	log.Info().Str("model", model).Msg("Using Gemini model")
	return &Advisor{models: client.Models, model: model}, nil
}

func pointSchema(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: desc,
		Properties: map[string]*genai.Schema{
			"row": {Type: genai.TypeInteger},
			"col": {Type: genai.TypeInteger},
		},
		Required: []string{"row", "col"},
	}
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"action": {Type: genai.TypeString, Enum: []string{"MOVE", "DROP"},
			Description: "The type of action to perform."},
		"from": pointSchema("The starting position of the piece to move (only for MOVE actions)."),
		"to":   pointSchema("The destination position for the move or drop."),
		"pieceType": {Type: genai.TypeString, Enum: []string{"GIRAFFE", "ELEPHANT", "CHICK"},
			Description: "The type of piece to drop (only for DROP actions)."},
	},
	Required: []string{"action", "to"},
}

func pieceChar(p board.Piece) string {
	c := string(p.Kind.Letter())
	if p.Owner == board.Second {
		return strings.ToLower(c)
	}
	return strings.ToUpper(c)
}

func handChars(h *board.Hand) string {
	var cs []string
	for _, k := range h.List() {
		cs = append(cs, string(k.Letter()))
	}
	if len(cs) == 0 {
		return "none"
	}
	return strings.Join(cs, ", ")
}

// Prompt describes st to the model. First is uppercase and moves up the
// board, toward row 0.
func Prompt(st *game.State) string {
	var rows []string
	for r := 0; r < board.Rows; r++ {
		sq := make([]string, board.Cols)
		for c := 0; c < board.Cols; c++ {
			if p := st.Board[r][c]; p.Empty() {
				sq[c] = "."
			} else {
				sq[c] = pieceChar(p)
			}
		}
		rows = append(rows, strings.Join(sq, " "))
	}
	mover := "FIRST (uppercase)"
	if st.Turn == board.Second {
		mover = "SECOND (lowercase)"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert Dobutsu Shogi (Animal Shogi) player.\n")
	fmt.Fprintf(&sb, "Turn: %d\nCurrent Player: %s\n\n", st.PlyCount, mover)
	fmt.Fprintf(&sb, "Board state (FIRST is uppercase, SECOND is lowercase, '.' is empty):\n%s\n\n",
		strings.Join(rows, "\n"))
	fmt.Fprintf(&sb, "Captured pieces:\nFIRST has: %s\nSECOND has: %s\n\n",
		handChars(&st.Hands[board.First]), handChars(&st.Hands[board.Second]))
	sb.WriteString(`FIRST (uppercase) moves "up" (decreasing row index). SECOND (lowercase) moves "down" (increasing row index).
The board is 3 columns by 4 rows. Coordinates are 0-indexed.
Piece key: L=Lion, G=Giraffe, E=Elephant, C=Chick, H=Hen(promoted Chick).

Choose the best move for the current player. Consider captures, threats, moving
your Lion to safety or to the opponent's back rank, and drops of captured pieces.

Answer with a JSON object. For a move:
{ "action": "MOVE", "from": { "row": R, "col": C }, "to": { "row": R, "col": C } }
For a drop:
{ "action": "DROP", "pieceType": "GIRAFFE" | "ELEPHANT" | "CHICK", "to": { "row": R, "col": C } }
`)
	return sb.String()
}

type suggestion struct {
	Action    string          `json:"action"`
	From      *board.Position `json:"from"`
	To        *board.Position `json:"to"`
	PieceType string          `json:"pieceType"`
}

// parseSuggestion turns the model's JSON into an action that is legal
// in st.
func parseSuggestion(st *game.State, text string) (move.Action, error) {
	var s suggestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &s); err != nil {
		return move.Action{}, fmt.Errorf("%w: %v", ErrUnusableSuggestion, err)
	}
	if s.To == nil {
		return move.Action{}, fmt.Errorf("%w: no destination", ErrUnusableSuggestion)
	}
	var a move.Action
	switch strings.ToUpper(s.Action) {
	case "MOVE":
		if s.From == nil {
			return move.Action{}, fmt.Errorf("%w: move without from", ErrUnusableSuggestion)
		}
		a = move.NewMove(*s.From, *s.To)
	case "DROP":
		k, err := board.ParsePieceKind(s.PieceType)
		if err != nil {
			return move.Action{}, fmt.Errorf("%w: %v", ErrUnusableSuggestion, err)
		}
		a = move.NewDrop(k, *s.To)
	default:
		return move.Action{}, fmt.Errorf("%w: action %q", ErrUnusableSuggestion, s.Action)
	}
	if err := a.Validate(); err != nil {
		return move.Action{}, fmt.Errorf("%w: %v", ErrUnusableSuggestion, err)
	}
	if !game.IsLegal(st, a) {
		return move.Action{}, fmt.Errorf("%w: %v is not legal", ErrUnusableSuggestion, a)
	}
	return a, nil
}

// Suggest asks the model for an action in st.
func (a *Advisor) Suggest(ctx context.Context, st *game.State) (move.Action, error) {
	prompt := Prompt(st)
	log.Debug().Msg("Full Prompt:\n" + prompt)
	resp, err := a.models.GenerateContent(ctx, a.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		return move.Action{}, fmt.Errorf("failed to get a suggestion: %w", err)
	}
	text := resp.Text()
	log.Debug().Str("response", text).Msg("gemini-suggestion")
	return parseSuggestion(st, text)
}
