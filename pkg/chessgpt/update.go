package chessgpt

import (
	"sync"

	"github.com/notnil/chess"
	"github.com/notnil/chess/opening"
)

var ecoBook = sync.OnceValue(opening.NewBookECO)

type Move [2]string

// Update is the full view state pushed to every room client whenever the
// session changes.
type Update struct {
	FEN          string `json:"fen"`
	PGN          string `json:"pgn"`
	Turn         string `json:"turn"`
	Status       string `json:"status"`
	Opening      string `json:"opening,omitempty"`
	IsGameOver   bool   `json:"gameOver"`
	WhiteMove    Move   `json:"wm"`
	BlackMove    Move   `json:"bm"`
	WhiteModel   string `json:"whiteModel"`
	BlackModel   string `json:"blackModel"`
	SystemPrompt string `json:"systemPrompt"`
	UserPrompt   string `json:"userPrompt"`
	AutoPlay     bool   `json:"autoPlay"`
}

// newUpdate fills in the game-derived fields; the session adds its own
// (models, prompts, status, auto-play) on top.
func newUpdate(game *Game) *Update {
	u := &Update{
		FEN:        game.FEN(),
		PGN:        game.PGN(),
		Turn:       game.Turn().String(),
		IsGameOver: game.Terminal(),
	}
	moves := game.inner.Moves()
	positions := game.inner.Positions()
	count := len(moves)
	if count > 1 {
		u.setMove(moves[count-1], positions[count-1])
		u.setMove(moves[count-2], positions[count-2])
	} else if count > 0 {
		u.setMove(moves[count-1], positions[count-1])
	}
	if o := ecoBook().Find(moves); o != nil {
		u.Opening = o.Title()
	}
	return u
}

func (u *Update) setMove(move *chess.Move, pos *chess.Position) {
	if pos.Board().Piece(move.S1()).Color() == chess.White {
		u.WhiteMove[0] = move.S1().String()
		u.WhiteMove[1] = move.S2().String()
	} else {
		u.BlackMove[0] = move.S1().String()
		u.BlackMove[1] = move.S2().String()
	}
}

// statusText derives the resting status line from the game alone: whose
// turn it is, or how the game ended.
func statusText(game *Game) string {
	outcome := game.inner.Outcome()
	switch outcome {
	case chess.NoOutcome:
		if game.Turn() == chess.White {
			return "White to move"
		}
		return "Black to move"
	case chess.Draw:
		return "Draw by " + drawMethod(game.inner.Method())
	default:
		winner := "White"
		loser := "Black"
		if outcome == chess.BlackWon {
			winner, loser = loser, winner
		}
		switch game.inner.Method() {
		case chess.Checkmate:
			return "Checkmate, " + winner + " wins"
		case chess.Resignation:
			return loser + " resigned, " + winner + " wins"
		default:
			return winner + " wins"
		}
	}
}

func drawMethod(method chess.Method) string {
	switch method {
	case chess.Stalemate:
		return "stalemate"
	case chess.ThreefoldRepetition, chess.FivefoldRepetition:
		return "repetition"
	case chess.FiftyMoveRule, chess.SeventyFiveMoveRule:
		return "the move rule"
	case chess.InsufficientMaterial:
		return "insufficient material"
	default:
		return "agreement"
	}
}
