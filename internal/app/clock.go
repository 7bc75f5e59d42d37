package app

import (
	"time"

	"github.com/jonboulle/clockwork"
	"quiz-live-service/internal/domain"
)

// Clock is the time source for rooms and the sweeper.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) clockwork.Timer
	NewTicker(d time.Duration) clockwork.Ticker
}

// armTimerLocked replaces any pending question timer with a new one firing
// after d. The callback receives the arm sequence so it can detect that it
// was superseded. Assumes the room lock is held.
func (r *Room) armTimerLocked(d time.Duration) {
	r.cancelTimerLocked()
	seq := r.timerSeq
	r.timer = r.clock.AfterFunc(d, func() {
		r.onTimer(seq)
	})
}

// cancelTimerLocked stops the pending timer, if any, and invalidates its
// sequence so a callback already in flight becomes a no-op.
// Assumes the room lock is held.
func (r *Room) cancelTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerSeq++
}

func (r *Room) onTimer(seq uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || seq != r.timerSeq || r.phase != domain.PhaseQuestion {
		r.logger.Debug().Uint64("seq", seq).Msg("stale question timer ignored")
		return
	}
	r.timer = nil
	r.logger.Debug().Int("question", r.current).Msg("question timer fired")
	r.endQuestionLocked()
}
