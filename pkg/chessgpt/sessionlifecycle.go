package chessgpt

import (
	"time"
)

// sessionLifecycle ties a session to its room: it forwards persistence to
// the manager and runs the kill timer that reaps rooms left without clients.
type sessionLifecycle struct {
	mgr         *SessionMgr
	roomID      string
	killTimer   *time.Timer
	killTimeout time.Duration
}

func newSessionLifecycle(mgr *SessionMgr, roomID string) *sessionLifecycle {
	slc := &sessionLifecycle{
		mgr:         mgr,
		roomID:      roomID,
		killTimer:   time.NewTimer(mgr.cfg.KillTimeout),
		killTimeout: mgr.cfg.KillTimeout,
	}
	go func() {
		<-slc.killTimer.C
		mgr.killSession(slc.roomID)
	}()
	return slc
}

// resetRoomID assigns the generated ID to a custom room created before its
// ID was known.
func (slc *sessionLifecycle) resetRoomID(roomID string) {
	slc.roomID = roomID
}

func (slc *sessionLifecycle) update(game string) {
	slc.mgr.updateSession(slc.roomID, game)
}

func (slc *sessionLifecycle) startTimer() {
	slc.killTimer.Reset(slc.killTimeout)
}

func (slc *sessionLifecycle) stopTimer() {
	slc.killTimer.Stop()
}
