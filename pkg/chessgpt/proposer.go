package chessgpt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MF-FOOM/chessgpt/pkg/llm"
)

// ErrNoMove means the model produced nothing usable: an empty reply, a
// reply without a parseable token, or a token naming an illegal move. A
// terminal position also yields ErrNoMove, without querying the model.
var ErrNoMove = errors.New("no legal move in model reply")

const (
	// The reply only ever needs to carry a single move token.
	proposalMaxTokens   = 16
	proposalTemperature = 0

	// defaultMoveText stands in for the movetext of a game without moves,
	// nudging completion models into "1. e4" style output.
	defaultMoveText = "1."
)

// ProposeParams name the model answering the request and the prompt
// configuration in effect when it was issued.
type ProposeParams struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// Proposer obtains one legal move suggestion from a model for the side to
// move.
type Proposer struct {
	llm     llm.Completer
	logger  *zap.Logger
	metrics *Metrics
}

func NewProposer(client llm.Completer, logger *zap.Logger) *Proposer {
	return &Proposer{
		llm:     client,
		logger:  logger,
		metrics: NewMetrics(),
	}
}

// Propose asks the model for the next move of the game captured in snap.
// It returns the move in standard algebraic notation, ErrNoMove when no
// usable move came back, or the transport error as-is when the service
// call itself failed.
func (p *Proposer) Propose(ctx context.Context, snap Snapshot, params ProposeParams) (string, error) {
	if snap.Terminal {
		return "", ErrNoMove
	}

	moveText := snap.MoveText
	if moveText == "" {
		moveText = defaultMoveText
	}

	start := time.Now()
	reply, err := p.llm.Complete(ctx, llm.Request{
		Model:           params.Model,
		SystemPrompt:    params.SystemPrompt,
		Prompt:          params.UserPrompt + "\n\n" + moveText,
		Temperature:     proposalTemperature,
		MaxOutputTokens: proposalMaxTokens,
	})
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyCompletion) {
			p.logger.Warn("empty model reply",
				zap.String("model", params.Model),
				zap.String("fen", snap.FEN))
			p.metrics.observeProposal(params.Model, "no_move", elapsed)
			return "", ErrNoMove
		}
		p.metrics.observeProposal(params.Model, "error", elapsed)
		return "", fmt.Errorf("model %s: %w", params.Model, err)
	}

	candidate := extractCandidate(reply)
	matched := candidate != "" && containsMove(snap.LegalSAN, candidate)

	p.logger.Info("move proposal",
		zap.String("model", params.Model),
		zap.String("fen", snap.FEN),
		zap.Strings("legal_moves", snap.LegalSAN),
		zap.String("reply", reply),
		zap.String("candidate", candidate),
		zap.Bool("match", matched),
		zap.Duration("elapsed", elapsed))

	if !matched {
		p.metrics.observeProposal(params.Model, "no_move", elapsed)
		return "", ErrNoMove
	}
	p.metrics.observeProposal(params.Model, "move", elapsed)
	return candidate, nil
}

// extractCandidate picks the move token out of a raw model reply: trim,
// split on whitespace, drop tokens containing a period (move-number markers
// like "12."), take the first survivor.
func extractCandidate(reply string) string {
	for _, token := range strings.Fields(reply) {
		if strings.Contains(token, ".") {
			continue
		}
		return token
	}
	return ""
}

func containsMove(legal []string, candidate string) bool {
	for _, san := range legal {
		if san == candidate {
			return true
		}
	}
	return false
}
