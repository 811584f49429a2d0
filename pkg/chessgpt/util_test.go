package chessgpt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateID(t *testing.T) {
	assert.Empty(t, GenerateID(0))

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID(8)
		require.Len(t, id, 8)
		for _, r := range id {
			require.True(t, strings.ContainsRune(charset, r), "unexpected character %q", r)
		}
		seen[id] = true
	}
	assert.Len(t, seen, 100, "ids must not collide")
}

func TestParseGame(t *testing.T) {
	startFEN := NewGame().FEN()

	opts, custom, err := parseGame("")
	require.NoError(t, err)
	assert.Empty(t, opts)
	assert.False(t, custom)

	opts, custom, err = parseGame("fen:" + startFEN)
	require.NoError(t, err)
	assert.Len(t, opts, 1)
	assert.True(t, custom)

	opts, custom, err = parseGame("pgn:1. e4 e5")
	require.NoError(t, err)
	assert.Len(t, opts, 1)
	assert.False(t, custom)

	// a bare FEN is accepted too
	opts, custom, err = parseGame(startFEN)
	require.NoError(t, err)
	assert.Len(t, opts, 1)
	assert.True(t, custom)

	_, _, err = parseGame("fen:not a position")
	assert.Error(t, err)

	_, _, err = parseGame("pgn:1. e4 e5 2. Qxf7")
	assert.Error(t, err)
}
