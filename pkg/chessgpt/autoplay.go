package chessgpt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// maxProposeRetries is how many consecutive failed proposals auto-play
// tolerates before giving up. A successful move resets the counter.
const maxProposeRetries = 3

var errGameOver = errors.New("game over")

// proposal is one model answer, pinned to the position it was computed
// for. It becomes stale if the position changed while it was in flight.
type proposal struct {
	model string
	san   string
	fen   string
}

// proposeNext runs one proposal cycle: snapshot the current state under
// the lock, then ask the configured model with the lock released. The
// proposal mutex keeps at most one model request outstanding; callers
// queue behind it. Game state is re-read at the top of every cycle, never
// carried across cycles.
func (sess *Session) proposeNext(ctx context.Context) (proposal, error) {
	sess.proposalMtx.Lock()
	defer sess.proposalMtx.Unlock()

	if err := ctx.Err(); err != nil {
		return proposal{}, err
	}

	sess.mtx.Lock()
	if sess.game.Terminal() {
		sess.mtx.Unlock()
		return proposal{}, errGameOver
	}
	snap := sess.game.Snapshot()
	params := ProposeParams{
		Model:        sess.models[sess.game.Turn()],
		SystemPrompt: sess.systemPrompt,
		UserPrompt:   sess.userPrompt,
	}
	timeout := sess.proposeTimeout
	sess.mtx.Unlock()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	san, err := sess.proposer.Propose(ctx, snap, params)

	return proposal{model: params.Model, san: san, fen: snap.FEN}, err
}

// applyProposal applies a proposed move unless it became stale: the loop
// was stopped, or the position is no longer the one the model answered.
func (sess *Session) applyProposal(ctx context.Context, prop proposal) bool {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	if ctx.Err() != nil {
		return false
	}
	if sess.game.FEN() != prop.fen {
		sess.logger.Debug("stale proposal discarded",
			zap.String("room", sess.slc.roomID),
			zap.String("move", prop.san))
		return false
	}
	if _, err := sess.game.ApplySAN(prop.san); err != nil {
		return false
	}
	sess.announceLocked(fmt.Sprintf("%s played %s", prop.model, prop.san))
	sess.persistLocked()
	return true
}

// proposeOnce runs a single proposal cycle with no retries. This is the
// force-move path and the reply to a manual board move.
func (sess *Session) proposeOnce(ctx context.Context) {
	prop, err := sess.proposeNext(ctx)
	switch {
	case err == nil:
		sess.applyProposal(ctx, prop)
	case errors.Is(err, errGameOver), errors.Is(err, context.Canceled):
	case errors.Is(err, ErrNoMove):
		sess.mtx.Lock()
		sess.announceLocked(prop.model + ": no usable move")
		sess.mtx.Unlock()
	default:
		sess.mtx.Lock()
		sess.announceLocked("model error: " + err.Error())
		sess.mtx.Unlock()
	}
}

// startAutoPlayLocked brings the loop out of idle. The context is the
// loop's cancellation token: stopping auto-play cancels the pending delay
// and makes any answer still in flight stale.
func (sess *Session) startAutoPlayLocked() {
	if sess.cancelAuto != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	sess.cancelAuto = cancel
	sess.autoplay = true
	sess.retries = 0
	go sess.runAutoPlay(ctx)
}

// stopAutoPlayLocked returns the loop to idle and resets the retry
// counter. Safe to call when the loop is not running.
func (sess *Session) stopAutoPlayLocked() {
	if sess.cancelAuto != nil {
		sess.cancelAuto()
		sess.cancelAuto = nil
	}
	sess.autoplay = false
	sess.retries = 0
}

func (sess *Session) runAutoPlay(ctx context.Context) {
	for {
		prop, err := sess.proposeNext(ctx)
		if ctx.Err() != nil {
			return
		}
		switch {
		case err == nil:
			if sess.applyProposal(ctx, prop) && sess.finishTurnAutoPlay() {
				return
			}
		case errors.Is(err, errGameOver):
			sess.mtx.Lock()
			sess.stopAutoPlayLocked()
			sess.announceLocked(statusText(sess.game))
			sess.mtx.Unlock()
			return
		case errors.Is(err, ErrNoMove):
			if sess.recordFailedProposal(prop.model) {
				return
			}
		default:
			sess.mtx.Lock()
			sess.stopAutoPlayLocked()
			sess.announceLocked("model error: " + err.Error())
			sess.mtx.Unlock()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(sess.moveDelay):
		}
	}
}

// finishTurnAutoPlay resets the retry counter after a played move and
// reports whether the game ended, stopping the loop with the outcome.
func (sess *Session) finishTurnAutoPlay() (gameOver bool) {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	sess.retries = 0
	if !sess.game.Terminal() {
		return false
	}
	sess.stopAutoPlayLocked()
	sess.announceLocked(statusText(sess.game))
	return true
}

// recordFailedProposal counts a proposal that produced no usable move and
// reports whether the retry budget is exhausted, stopping the loop.
func (sess *Session) recordFailedProposal(model string) (stopped bool) {
	sess.mtx.Lock()
	defer sess.mtx.Unlock()
	sess.retries++
	if sess.retries >= maxProposeRetries {
		sess.stopAutoPlayLocked()
		sess.announceLocked(fmt.Sprintf("auto-play stopped after %d failed proposals", maxProposeRetries))
		return true
	}
	sess.announceLocked(fmt.Sprintf("%s: no usable move (retry %d/%d)",
		model, sess.retries, maxProposeRetries))
	return false
}
