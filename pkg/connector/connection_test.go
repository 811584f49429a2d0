package connector

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MF-FOOM/chessgpt/pkg/chessgpt"
	"github.com/MF-FOOM/chessgpt/pkg/llm"
)

// stubCompleter proposes the same move every time.
type stubCompleter struct {
	reply string
}

func (s stubCompleter) Complete(context.Context, llm.Request) (string, error) {
	return s.reply, nil
}

func newTestRoom(t *testing.T) string {
	t.Helper()
	assets := fstest.MapFS{"index.html": &fstest.MapFile{Data: []byte("ok")}}
	mgr := chessgpt.NewSessionMgr(chessgpt.Config{
		MoveDelay:      time.Millisecond,
		ProposeTimeout: 10 * time.Second,
	}, stubCompleter{reply: "e5"}, zap.NewNop())
	ts := httptest.NewServer(chessgpt.NewServer(assets, mgr, zap.NewNop()))
	t.Cleanup(ts.Close)
	return ts.URL + "/room/wstest"
}

func nextUpdate(t *testing.T, conn *Connection) *chessgpt.Update {
	t.Helper()
	select {
	case u := <-conn.C:
		return u
	case <-time.After(5 * time.Second):
		t.Fatal("no update arrived in time")
		return nil
	}
}

// waitForState polls the connection's latest state. Updates are delivered
// concurrently, so C gives no cross-update ordering; State converges.
func waitForState(t *testing.T, conn *Connection, cond func(*chessgpt.Update) bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if u := conn.State.Load(); u != nil && cond(u) {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("state condition not reached in time")
}

func TestConnection_RoundTrip(t *testing.T) {
	roomURL := newTestRoom(t)

	conn, err := NewConnection(roomURL)
	require.NoError(t, err)
	defer conn.Close()

	// The server pushes the full state as soon as the socket is up.
	first := nextUpdate(t, conn)
	assert.Equal(t, "White to move", first.Status)
	assert.Equal(t, "w", first.Turn)
	assert.Equal(t, llm.DefaultModel, first.WhiteModel)
	assert.Equal(t, chessgpt.DefaultSystemPrompt, first.SystemPrompt)
	assert.False(t, first.IsGameOver)

	require.True(t, conn.Move("e2e4"), "a legal move is accepted")
	assert.False(t, conn.Move("e2e2"), "an illegal move is rejected")

	// The stub plays e5 for black in reply to the manual move.
	waitForState(t, conn, func(u *chessgpt.Update) bool {
		return u.Status == llm.DefaultModel+" played e5"
	})

	conn.Resign("w")
	waitForState(t, conn, func(u *chessgpt.Update) bool {
		return u.IsGameOver && u.Status == "White resigned, Black wins"
	})

	conn.Reset()
	waitForState(t, conn, func(u *chessgpt.Update) bool {
		return !u.IsGameOver && u.Status == "White to move"
	})

	require.True(t, conn.MoveSAN("Nf3"))
	waitForState(t, conn, func(u *chessgpt.Update) bool {
		return strings.Contains(u.PGN, "Nf3") && u.Status == llm.DefaultModel+" played e5"
	})
}
