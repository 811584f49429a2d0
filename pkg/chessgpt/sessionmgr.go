package chessgpt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"github.com/MF-FOOM/chessgpt/pkg/llm"
)

// Config collects the session manager's tunables.
type Config struct {
	// RedisURL enables persistence when set (redis:// form).
	RedisURL string
	// KillTimeout is how long a room without clients stays alive.
	KillTimeout time.Duration
	// MoveDelay is the pause between auto-played moves.
	MoveDelay time.Duration
	// ProposeTimeout is the per-proposal deadline.
	ProposeTimeout time.Duration
}

func (cfg *Config) applyDefaults() {
	if cfg.KillTimeout == 0 {
		cfg.KillTimeout = DefaultKillTimeout
	}
	if cfg.MoveDelay == 0 {
		cfg.MoveDelay = DefaultMoveDelay
	}
	if cfg.ProposeTimeout == 0 {
		cfg.ProposeTimeout = DefaultProposeTimeout
	}
}

// SessionMgr owns the live rooms: it creates sessions on demand, restores
// them from Redis on startup and reaps them once they sit empty too long.
type SessionMgr struct {
	cfg      Config
	logger   *zap.Logger
	proposer *Proposer
	metrics  *Metrics
	sessions sync.Map
	db       *DB
}

func NewSessionMgr(cfg Config, client llm.Completer, logger *zap.Logger) *SessionMgr {
	cfg.applyDefaults()
	mgr := &SessionMgr{
		cfg:      cfg,
		logger:   logger,
		proposer: NewProposer(client, logger),
		metrics:  NewMetrics(),
	}
	if len(cfg.RedisURL) > 0 {
		db, err := NewDB(cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("redis unavailable, rooms will not survive restarts", zap.Error(err))
		} else {
			mgr.db = db
			mgr.loadSessions()
		}
	}
	return mgr
}

// GetSession returns the session for roomID, creating it at the standard
// starting position on first access.
func (mgr *SessionMgr) GetSession(roomID string) *Session {
	sess, loaded := mgr.sessions.LoadOrStore(roomID, &Session{})
	if !loaded {
		sess.(*Session).init(newSessionLifecycle(mgr, roomID), "")
		mgr.metrics.sessionOpened()
		mgr.logger.Info("new session", zap.String("room", roomID))
	}
	return sess.(*Session)
}

// ServeRPC upgrades the request to a websocket and serves the room's
// JSON-RPC session over it.
func (mgr *SessionMgr) ServeRPC(w http.ResponseWriter, r *http.Request, roomID string) {
	websocket.Handler(mgr.GetSession(roomID).serve).ServeHTTP(w, r)
}

// CreateSession spawns a room from a FEN or PGN (or the serialized
// "fen:"/"pgn:" form) and returns its generated room ID.
func (mgr *SessionMgr) CreateSession(game string) (string, error) {
	slc := newSessionLifecycle(mgr, "")
	sess, err := newSession(slc, game)
	if err != nil {
		return "", err
	}
	for {
		roomID := "custom-" + GenerateID(6)
		if _, loaded := mgr.sessions.LoadOrStore(roomID, sess); !loaded {
			slc.resetRoomID(roomID)
			mgr.metrics.sessionOpened()
			mgr.logger.Info("new custom session", zap.String("room", roomID))
			return roomID, nil
		}
	}
}

// MoveHistoryToGIF streams an animated GIF of the room's game so far.
func (mgr *SessionMgr) MoveHistoryToGIF(w io.Writer, roomID string) error {
	sess, ok := mgr.findSession(roomID)
	if !ok {
		return fmt.Errorf("no such room: %s", roomID)
	}
	moves, positions := sess.moveHistory()
	return MoveHistoryToGIF(w, moves, positions)
}

// WritePGN writes the room's full PGN record.
func (mgr *SessionMgr) WritePGN(w io.Writer, roomID string) error {
	sess, ok := mgr.findSession(roomID)
	if !ok {
		return fmt.Errorf("no such room: %s", roomID)
	}
	_, err := io.WriteString(w, sess.pgn()+"\n")
	return err
}

func (mgr *SessionMgr) findSession(roomID string) (*Session, bool) {
	sess, ok := mgr.sessions.Load(roomID)
	if !ok {
		return nil, false
	}
	return sess.(*Session), true
}

func (mgr *SessionMgr) loadSessions() {
	for roomID, game := range mgr.db.LoadSessions(context.Background()) {
		sess, err := newSession(newSessionLifecycle(mgr, roomID), game)
		if err != nil {
			mgr.logger.Error("room restore failed", zap.String("room", roomID), zap.Error(err))
			continue
		}
		mgr.sessions.Store(roomID, sess)
		mgr.metrics.sessionOpened()
		mgr.logger.Info("room restored", zap.String("room", roomID))
	}
}

func (mgr *SessionMgr) updateSession(roomID, game string) {
	if mgr.db != nil && len(roomID) > 0 {
		mgr.db.SaveSession(context.Background(), roomID, game, mgr.cfg.KillTimeout)
	}
}

func (mgr *SessionMgr) killSession(roomID string) {
	if _, loaded := mgr.sessions.LoadAndDelete(roomID); loaded {
		mgr.metrics.sessionClosed()
		mgr.logger.Info("session expired", zap.String("room", roomID))
	}
}
