package connector

import (
	"io"
	"strings"
	"sync/atomic"

	"github.com/razzie/jsonrpc"
	"golang.org/x/net/websocket"

	"github.com/MF-FOOM/chessgpt/pkg/chessgpt"
)

// Connection is a headless client for a game room. It exposes the same RPC
// surface the browser uses and streams server updates on C.
type Connection struct {
	ws      io.Closer
	client  *jsonrpc.JsonRPC
	updates chan *chessgpt.Update
	C       <-chan *chessgpt.Update
	State   atomic.Pointer[chessgpt.Update]
}

// NewConnection dials a room. sessionURL may be the room's browser URL;
// the websocket endpoint is derived from it.
func NewConnection(sessionURL string) (*Connection, error) {
	wsURL := strings.NewReplacer("http://", "ws://", "https://", "wss://", "/room/", "/ws/").Replace(sessionURL)
	ws, err := websocket.Dial(wsURL, "", wsURL)
	if err != nil {
		return nil, err
	}
	conn := &Connection{
		ws:      ws,
		client:  jsonrpc.NewJsonRpc(ws),
		updates: make(chan *chessgpt.Update),
	}
	conn.C = conn.updates
	conn.client.Register(&Session{conn: conn}, "")
	go conn.client.Serve()
	return conn, nil
}

// Move submits a move in [from][to] coordinate form.
func (conn *Connection) Move(move string) (valid bool) {
	conn.client.Call("Session.Move", move, &valid)
	return
}

// MoveSAN submits a move as a notation token.
func (conn *Connection) MoveSAN(san string) (valid bool) {
	conn.client.Call("Session.MoveSAN", san, &valid)
	return
}

// Reset returns the room to the starting position.
func (conn *Connection) Reset() {
	conn.client.Notify("Session.Reset", true)
}

// SetAutoPlay starts or stops the room's model-vs-model loop.
func (conn *Connection) SetAutoPlay(on bool) {
	conn.client.Notify("Session.SetAutoPlay", on)
}

// ForceMove asks the room's configured model for a single move.
func (conn *Connection) ForceMove() {
	conn.client.Notify("Session.ForceMove", true)
}

// Resign resigns for a color ("w" or "b").
func (conn *Connection) Resign(color string) {
	conn.client.Notify("Session.Resign", color)
}

func (conn *Connection) Close() error {
	return conn.ws.Close()
}

func (conn *Connection) update(update *chessgpt.Update) {
	conn.State.Store(update)
	go func() {
		conn.updates <- update
	}()
}
