package chessgpt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/notnil/chess"
	"github.com/razzie/jsonrpc"
	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/MF-FOOM/chessgpt/pkg/llm"
)

const (
	DefaultKillTimeout    = time.Hour
	DefaultMoveDelay      = time.Second / 2
	DefaultProposeTimeout = time.Minute
)

// Default prompt configuration. Both are freely editable per session via
// Session.SetPrompts; the edited values are the ones actually sent.
const (
	DefaultSystemPrompt = "You are a chess grandmaster. You will be given a partially played game " +
		"and answer with the strongest next move for the side to move, in standard " +
		"algebraic notation. Answer with the move and nothing else."
	DefaultUserPrompt = "Continue this chess game with the single best next move in standard algebraic notation:"
)

// Session is one game room: the game state, the prompt and model
// configuration, the auto-play loop and the connected view clients.
type Session struct {
	slc            *sessionLifecycle
	logger         *zap.Logger
	proposer       *Proposer
	moveDelay      time.Duration
	proposeTimeout time.Duration

	mtx          sync.Mutex
	game         *Game
	clients      []*jsonrpc.JsonRPC
	models       map[chess.Color]string
	systemPrompt string
	userPrompt   string
	status       string

	autoplay   bool
	retries    int
	cancelAuto context.CancelFunc

	// proposalMtx serializes model requests: at most one outstanding per
	// session, later cycles queue behind it. Never taken while mtx is held.
	proposalMtx sync.Mutex
}

func newSession(slc *sessionLifecycle, game string) (*Session, error) {
	sess := &Session{}
	if err := sess.init(slc, game); err != nil {
		return nil, err
	}
	return sess, nil
}

func (sess *Session) init(slc *sessionLifecycle, game string) error {
	g, err := newGameFromString(game)
	if err != nil {
		return err
	}
	mgr := slc.mgr
	sess.slc = slc
	sess.logger = mgr.logger
	sess.proposer = mgr.proposer
	sess.moveDelay = mgr.cfg.MoveDelay
	sess.proposeTimeout = mgr.cfg.ProposeTimeout
	sess.game = g
	sess.models = map[chess.Color]string{
		chess.White: llm.DefaultModel,
		chess.Black: llm.DefaultModel,
	}
	sess.systemPrompt = DefaultSystemPrompt
	sess.userPrompt = DefaultUserPrompt
	sess.status = statusText(g)
	return nil
}

// Session.Move is an RPC function that handles a board move in [from][to]
// format (like e2e4); a missing promotion piece defaults to queen. An
// illegal move is rejected without mutating anything. A legal one always
// interrupts auto-play and triggers a single proposal for the opponent.
func (sess *Session) Move(moveStr string, validMove *bool) error {
	sess.mtx.Lock()
	if _, err := sess.game.ApplyUCI(moveStr); err != nil {
		*validMove = false
		sess.mtx.Unlock()
		return nil
	}
	*validMove = true
	sess.logger.Info("manual move",
		zap.String("room", sess.slc.roomID),
		zap.String("move", moveStr))
	sess.stopAutoPlayLocked()
	sess.announceLocked(statusText(sess.game))
	sess.persistLocked()
	gameOver := sess.game.Terminal()
	sess.mtx.Unlock()

	if !gameOver {
		go sess.proposeOnce(context.Background())
	}
	return nil
}

// Session.MoveSAN applies a move given as a notation token ("Nf3"). Same
// semantics as Session.Move otherwise.
func (sess *Session) MoveSAN(san string, validMove *bool) error {
	sess.mtx.Lock()
	if _, err := sess.game.ApplySAN(san); err != nil {
		*validMove = false
		sess.mtx.Unlock()
		return nil
	}
	*validMove = true
	sess.logger.Info("manual move",
		zap.String("room", sess.slc.roomID),
		zap.String("move", san))
	sess.stopAutoPlayLocked()
	sess.announceLocked(statusText(sess.game))
	sess.persistLocked()
	gameOver := sess.game.Terminal()
	sess.mtx.Unlock()

	if !gameOver {
		go sess.proposeOnce(context.Background())
	}
	return nil
}

// Session.LoadPGN replaces the game with the parsed PGN. On a parse error
// the current game is left untouched and the error travels back to the
// caller, which shows it next to the input.
func (sess *Session) LoadPGN(pgn string, ok *bool) error {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	if err := sess.game.LoadPGN(pgn); err != nil {
		*ok = false
		return err
	}
	*ok = true
	sess.logger.Info("pgn loaded", zap.String("room", sess.slc.roomID))
	sess.stopAutoPlayLocked()
	sess.announceLocked(statusText(sess.game))
	sess.persistLocked()
	return nil
}

// Session.Reset returns the room to the standard starting position.
func (sess *Session) Reset(_ bool, ok *bool) error {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	sess.game.Reset()
	sess.stopAutoPlayLocked()
	sess.announceLocked(statusText(sess.game))
	sess.persistLocked()
	*ok = true
	return nil
}

// Session.ForceMove asks the configured model for one move for the side to
// move. Single-shot: a failed proposal only updates the status line.
func (sess *Session) ForceMove(_ bool, ok *bool) error {
	sess.mtx.Lock()
	sess.stopAutoPlayLocked()
	sess.mtx.Unlock()
	*ok = true
	go sess.proposeOnce(context.Background())
	return nil
}

// Session.SetAutoPlay starts or stops the auto-play loop.
func (sess *Session) SetAutoPlay(on bool, ok *bool) error {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	*ok = true
	if on == sess.autoplay {
		return nil
	}
	if on {
		sess.startAutoPlayLocked()
		sess.announceLocked("auto-play started")
	} else {
		sess.stopAutoPlayLocked()
		sess.announceLocked("auto-play stopped")
	}
	return nil
}

// ModelSelection assigns a model to one color's slot.
type ModelSelection struct {
	Color string `json:"color"`
	Model string `json:"model"`
}

// Session.SetModel changes which model answers move requests for a color.
// Takes effect on the next proposal cycle.
func (sess *Session) SetModel(sel ModelSelection, ok *bool) error {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	switch sel.Color {
	case "w":
		sess.models[chess.White] = sel.Model
	case "b":
		sess.models[chess.Black] = sel.Model
	default:
		*ok = false
		return fmt.Errorf("invalid color %q", sel.Color)
	}
	*ok = true
	sess.updateClientsLocked()
	return nil
}

// PromptConfig carries the editable prompt pair.
type PromptConfig struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// Session.SetPrompts replaces the prompt configuration. The stored values
// are exactly what subsequent proposals send.
func (sess *Session) SetPrompts(cfg PromptConfig, ok *bool) error {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	sess.systemPrompt = cfg.System
	sess.userPrompt = cfg.User
	*ok = true
	sess.updateClientsLocked()
	return nil
}

// Session.Resign is an RPC function that lets a color resign.
func (sess *Session) Resign(color string, ok *bool) error {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	if sess.game.Terminal() {
		return nil
	}
	switch color {
	case "w":
		sess.game.Resign(chess.White)
	case "b":
		sess.game.Resign(chess.Black)
	default:
		return nil
	}
	*ok = true
	sess.stopAutoPlayLocked()
	sess.announceLocked(statusText(sess.game))
	sess.persistLocked()
	return nil
}

// announceLocked sets the status line and pushes the new state to every
// connected client.
func (sess *Session) announceLocked(status string) {
	sess.status = status
	sess.updateClientsLocked()
}

func (sess *Session) updateClientsLocked() {
	update := sess.newUpdateLocked()
	for _, client := range sess.clients {
		client.Notify("Session.Update", update)
	}
}

func (sess *Session) newUpdateLocked() *Update {
	u := newUpdate(sess.game)
	u.Status = sess.status
	u.WhiteModel = sess.models[chess.White]
	u.BlackModel = sess.models[chess.Black]
	u.SystemPrompt = sess.systemPrompt
	u.UserPrompt = sess.userPrompt
	u.AutoPlay = sess.autoplay
	return u
}

func (sess *Session) persistLocked() {
	serialized := sess.game.Serialize()
	go sess.slc.update(serialized)
}

func (sess *Session) moveHistory() ([]*chess.Move, []*chess.Position) {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	return sess.game.History()
}

func (sess *Session) pgn() string {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	return sess.game.PGN()
}

func (sess *Session) addClient(client *jsonrpc.JsonRPC) {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	sess.clients = append(sess.clients, client)
	sess.slc.stopTimer()
}

func (sess *Session) removeClient(client *jsonrpc.JsonRPC) {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	if len(sess.clients) == 1 {
		sess.clients = nil
		sess.slc.startTimer()
		return
	}
	for i, cl := range sess.clients {
		if cl == client {
			sess.clients = append(sess.clients[:i], sess.clients[i+1:]...)
			return
		}
	}
}

func (sess *Session) serve(ws *websocket.Conn) {
	client := jsonrpc.NewJsonRpc(ws)
	client.Register(sess, "")

	sess.addClient(client)

	sess.mtx.Lock()
	client.Notify("Session.Update", sess.newUpdateLocked())
	sess.mtx.Unlock()
	client.Serve()

	sess.removeClient(client)
}
