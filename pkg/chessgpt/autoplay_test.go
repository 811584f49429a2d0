package chessgpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MF-FOOM/chessgpt/pkg/llm"
)

func TestAutoPlay_StopsAfterThreeFailedProposals(t *testing.T) {
	fake := &scriptedCompleter{fallback: "pass"}
	sess := newTestSession(t, fake)

	var ok bool
	require.NoError(t, sess.SetAutoPlay(true, &ok))
	require.True(t, ok)

	waitFor(t, func() bool {
		return sess.lockedStatus() == "auto-play stopped after 3 failed proposals"
	})
	assert.Equal(t, 3, fake.callCount())
	assert.False(t, sess.lockedAutoplay())
	assert.Empty(t, sess.lockedMoveText())

	sess.mtx.Lock()
	retries := sess.retries
	sess.mtx.Unlock()
	assert.Zero(t, retries, "stopping resets the retry counter")
}

func TestAutoPlay_PlayedMoveResetsRetryCounter(t *testing.T) {
	fake := &scriptedCompleter{replies: []string{"e4", "zz", "e5"}, fallback: "zz"}
	sess := newTestSession(t, fake)

	var ok bool
	require.NoError(t, sess.SetAutoPlay(true, &ok))

	waitFor(t, func() bool {
		return sess.lockedStatus() == "auto-play stopped after 3 failed proposals"
	})
	assert.Equal(t, "1. e4 e5", sess.lockedMoveText())
	// 2 played moves, 1 absorbed failure between them, then 3 fresh
	// failures to exhaust the budget. 5 calls would mean the failure
	// before e5 was still being counted.
	assert.Equal(t, 6, fake.callCount())
}

func TestAutoPlay_StopsWhenGameEnds(t *testing.T) {
	fake := &scriptedCompleter{replies: []string{"f3", "e5", "g4", "Qh4#"}, fallback: "zz"}
	sess := newTestSession(t, fake)

	var ok bool
	require.NoError(t, sess.SetAutoPlay(true, &ok))

	waitFor(t, func() bool { return sess.lockedStatus() == "Checkmate, Black wins" })
	assert.Equal(t, 4, fake.callCount())
	assert.Equal(t, "1. f3 e5 2. g4 Qh4#", sess.lockedMoveText())
	assert.False(t, sess.lockedAutoplay())
}

func TestAutoPlay_GameAlreadyOver(t *testing.T) {
	fake := &scriptedCompleter{fallback: "e4"}
	sess := newTestSession(t, fake)

	var ok bool
	require.NoError(t, sess.LoadPGN(foolsMatePGN, &ok))
	require.True(t, ok)

	require.NoError(t, sess.SetAutoPlay(true, &ok))
	waitFor(t, func() bool {
		sess.mtx.Lock()
		defer sess.mtx.Unlock()
		return !sess.autoplay && sess.status == "Checkmate, Black wins"
	})
	assert.Zero(t, fake.callCount(), "a finished game never reaches the model")
}

func TestAutoPlay_StopAbandonsInFlightProposal(t *testing.T) {
	completer := newManualCompleter()
	sess := newTestSession(t, completer)

	var ok bool
	require.NoError(t, sess.SetAutoPlay(true, &ok))
	pending := completer.next(t)

	require.NoError(t, sess.SetAutoPlay(false, &ok))
	assert.False(t, sess.lockedAutoplay())

	// The answer arrives after the stop; it must not reach the board.
	pending.reply <- "e4"
	waitFor(t, func() bool {
		if sess.proposalMtx.TryLock() {
			sess.proposalMtx.Unlock()
			return true
		}
		return false
	})
	assert.Empty(t, sess.lockedMoveText())
	assert.Equal(t, "auto-play stopped", sess.lockedStatus())
}

func TestRecordFailedProposal(t *testing.T) {
	sess := newTestSession(t, &scriptedCompleter{})

	assert.False(t, sess.recordFailedProposal(llm.DefaultModel))
	assert.Equal(t, llm.DefaultModel+": no usable move (retry 1/3)", sess.lockedStatus())

	assert.False(t, sess.recordFailedProposal(llm.DefaultModel))
	assert.Equal(t, llm.DefaultModel+": no usable move (retry 2/3)", sess.lockedStatus())

	assert.True(t, sess.recordFailedProposal(llm.DefaultModel))
	assert.Equal(t, "auto-play stopped after 3 failed proposals", sess.lockedStatus())
}
