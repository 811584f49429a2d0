package chessgpt

import (
	"strings"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const foolsMatePGN = "1. f3 e5 2. g4 Qh4#"

func TestGame_ApplyUCI(t *testing.T) {
	g := NewGame()

	move, err := g.ApplyUCI("e2e4")
	require.NoError(t, err)
	assert.Equal(t, "e2", move.S1().String())
	assert.Equal(t, "e4", move.S2().String())
	assert.Equal(t, chess.Black, g.Turn())

	_, err = g.ApplyUCI("e2e4")
	assert.Error(t, err, "white cannot move on black's turn")
	assert.Equal(t, chess.Black, g.Turn(), "failed move must not mutate the game")

	_, err = g.ApplyUCI("zz99")
	assert.Error(t, err)
}

func TestGame_ApplyUCI_PromotionDefaultsToQueen(t *testing.T) {
	g, err := newGameFromString("fen:8/5P1k/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	move, err := g.ApplyUCI("f7f8")
	require.NoError(t, err)
	assert.Equal(t, chess.Queen, move.Promo())
}

func TestGame_ApplyUCI_ExplicitPromotionPiece(t *testing.T) {
	g, err := newGameFromString("fen:8/5P1k/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	move, err := g.ApplyUCI("f7f8n")
	require.NoError(t, err)
	assert.Equal(t, chess.Knight, move.Promo())
}

func TestGame_ApplySAN(t *testing.T) {
	g := NewGame()

	_, err := g.ApplySAN("e4")
	require.NoError(t, err)

	_, err = g.ApplySAN("Ke4")
	assert.Error(t, err)

	_, err = g.ApplySAN("e5")
	require.NoError(t, err)
	assert.Equal(t, "1. e4 e5", g.MoveText())
}

func TestGame_LoadPGN(t *testing.T) {
	g := NewGame()
	_, err := g.ApplyUCI("e2e4")
	require.NoError(t, err)

	require.NoError(t, g.LoadPGN(foolsMatePGN))
	assert.True(t, g.Terminal())
	assert.Contains(t, g.PGN(), "Qh4#")
	assert.Equal(t, chess.White, g.Turn())
}

func TestGame_LoadPGN_BadInputLeavesGameUntouched(t *testing.T) {
	g := NewGame()
	_, err := g.ApplyUCI("e2e4")
	require.NoError(t, err)
	fen := g.FEN()

	assert.Error(t, g.LoadPGN("1. e4 e5 2. Qxf7"), "illegal move must fail the parse")
	assert.Error(t, g.LoadPGN("   "), "blank input is rejected")
	assert.Equal(t, fen, g.FEN())
	assert.Equal(t, "1. e4", g.MoveText())
}

func TestGame_Reset(t *testing.T) {
	g, err := newGameFromString("fen:8/5P1k/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(g.Serialize(), "fen:"))

	g.Reset()
	assert.Equal(t, NewGame().FEN(), g.FEN())
	assert.Equal(t, chess.White, g.Turn())
	assert.True(t, strings.HasPrefix(g.Serialize(), "pgn:"), "a reset game serializes by movetext again")
}

func TestGame_Terminal(t *testing.T) {
	g := NewGame()
	assert.False(t, g.Terminal())

	require.NoError(t, g.LoadPGN(foolsMatePGN))
	assert.True(t, g.Terminal())
	assert.Empty(t, g.LegalSAN())
}

func TestGame_Resign(t *testing.T) {
	g := NewGame()
	g.Resign(chess.White)
	assert.True(t, g.Terminal())
}

func TestGame_LegalSAN(t *testing.T) {
	g := NewGame()
	legal := g.LegalSAN()
	assert.Len(t, legal, 20)
	assert.Contains(t, legal, "e4")
	assert.Contains(t, legal, "Nf3")
}

func TestGame_MoveText(t *testing.T) {
	g := NewGame()
	assert.Empty(t, g.MoveText())

	for _, san := range []string{"e4", "e5", "Nf3"} {
		_, err := g.ApplySAN(san)
		require.NoError(t, err)
	}
	assert.Equal(t, "1. e4 e5 2. Nf3", g.MoveText())
}

func TestGame_SerializeRoundTrip(t *testing.T) {
	g := NewGame()
	for _, san := range []string{"e4", "e5", "Nf3", "Nc6"} {
		_, err := g.ApplySAN(san)
		require.NoError(t, err)
	}

	restored, err := newGameFromString(g.Serialize())
	require.NoError(t, err)
	assert.Equal(t, g.FEN(), restored.FEN())
	assert.Equal(t, g.MoveText(), restored.MoveText())

	custom, err := newGameFromString("fen:" + g.FEN())
	require.NoError(t, err)
	assert.Equal(t, g.FEN(), custom.FEN())
	assert.Equal(t, "fen:"+g.FEN(), custom.Serialize(), "custom games keep only their FEN")
}

func TestGame_Snapshot(t *testing.T) {
	g := NewGame()
	_, err := g.ApplyUCI("e2e4")
	require.NoError(t, err)

	snap := g.Snapshot()
	assert.Equal(t, g.FEN(), snap.FEN)
	assert.Equal(t, "1. e4", snap.MoveText)
	assert.False(t, snap.Terminal)
	assert.Contains(t, snap.LegalSAN, "e5")
	assert.Contains(t, snap.LegalSAN, "Nf6")
}
