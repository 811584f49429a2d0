package chessgpt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

var (
	sanNotation chess.AlgebraicNotation
	uciNotation chess.UCINotation
)

// Game wraps the rules engine. It holds the current position and the full
// move history, and is only ever mutated by applying a single legal move,
// by Reset, or by a successful LoadPGN.
type Game struct {
	inner  *chess.Game
	custom bool
}

func NewGame() *Game {
	return &Game{inner: chess.NewGame()}
}

// newGameFromString restores a game from its serialized "fen:"/"pgn:" form
// (see Serialize). An empty string yields the standard starting position.
func newGameFromString(game string) (*Game, error) {
	opts, isCustom, err := parseGame(game)
	if err != nil {
		return nil, err
	}
	return &Game{inner: chess.NewGame(opts...), custom: isCustom}, nil
}

// Reset discards the game and returns to the standard starting position.
func (g *Game) Reset() {
	g.inner = chess.NewGame()
	g.custom = false
}

// LoadPGN replaces the game with the one described by the PGN text. On a
// parse error the prior game is left untouched.
func (g *Game) LoadPGN(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("empty PGN")
	}
	opt, err := chess.PGN(strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("invalid PGN: %w", err)
	}
	g.inner = chess.NewGame(opt)
	g.custom = false
	return nil
}

// ApplyUCI validates and applies a move in [from][to][promotion] coordinate
// form (like e2e4 or e7e8q). A missing promotion piece defaults to queen.
func (g *Game) ApplyUCI(moveStr string) (*chess.Move, error) {
	move, err := uciNotation.Decode(g.inner.Position(), moveStr)
	if err != nil {
		return nil, err
	}
	moveErr := g.inner.Move(move)
	if moveErr == nil {
		return move, nil
	}
	// A bare from-to push onto the last rank decodes without a promotion
	// piece and is only rejected here; retry it as a queen promotion.
	if len(moveStr) == 4 {
		qmove, qerr := uciNotation.Decode(g.inner.Position(), moveStr+"q")
		if qerr == nil && g.inner.Move(qmove) == nil {
			return qmove, nil
		}
	}
	return nil, moveErr
}

// ApplySAN validates and applies a move given in standard algebraic
// notation against the current position.
func (g *Game) ApplySAN(san string) (*chess.Move, error) {
	move, err := sanNotation.Decode(g.inner.Position(), san)
	if err != nil {
		return nil, err
	}
	if err := g.inner.Move(move); err != nil {
		return nil, err
	}
	return move, nil
}

// Resign ends the game with a win for the other color. No-op once the
// game is already over.
func (g *Game) Resign(color chess.Color) {
	g.inner.Resign(color)
}

// LegalSAN returns the legal moves for the side to move in standard
// algebraic notation.
func (g *Game) LegalSAN() []string {
	pos := g.inner.Position()
	valid := g.inner.ValidMoves()
	moves := make([]string, len(valid))
	for i, move := range valid {
		moves[i] = sanNotation.Encode(pos, move)
	}
	return moves
}

// Terminal reports whether the game is over: checkmate, a draw, or no
// legal moves left.
func (g *Game) Terminal() bool {
	return g.inner.Outcome() != chess.NoOutcome || len(g.inner.ValidMoves()) == 0
}

func (g *Game) Turn() chess.Color {
	return g.inner.Position().Turn()
}

func (g *Game) FEN() string {
	return g.inner.FEN()
}

// PGN returns the full PGN record, including tag pairs when present.
func (g *Game) PGN() string {
	return strings.TrimSpace(g.inner.String())
}

// History returns the applied moves and the positions around them;
// positions[i] is the position before moves[i] was played.
func (g *Game) History() ([]*chess.Move, []*chess.Position) {
	return g.inner.Moves(), g.inner.Positions()
}

// MoveText renders the move history as numbered movetext with a space after
// each move number ("1. e4 e5 2. Nf3"), the shape language models complete
// most reliably. Empty for a game without moves.
func (g *Game) MoveText() string {
	moves := g.inner.Moves()
	positions := g.inner.Positions()
	var sb strings.Builder
	for i, move := range moves {
		if i%2 == 0 {
			fmt.Fprintf(&sb, "%d. ", i/2+1)
		}
		sb.WriteString(sanNotation.Encode(positions[i], move))
		sb.WriteByte(' ')
	}
	return strings.TrimSpace(sb.String())
}

// Serialize renders the game in the "fen:"/"pgn:" form understood by
// newGameFromString. Games started from a custom position keep only their
// FEN, since their movetext alone cannot reproduce them.
func (g *Game) Serialize() string {
	if g.custom {
		return "fen:" + g.FEN()
	}
	return "pgn:" + g.PGN()
}

// Snapshot captures everything the move proposer needs from the current
// position. Callers take it under the session lock and hand it out, so a
// proposal in flight never reads shared game state.
type Snapshot struct {
	FEN      string
	MoveText string
	LegalSAN []string
	Terminal bool
}

func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		FEN:      g.FEN(),
		MoveText: g.MoveText(),
		LegalSAN: g.LegalSAN(),
		Terminal: g.Terminal(),
	}
}
