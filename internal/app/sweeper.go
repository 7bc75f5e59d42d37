package app

import (
	"context"

	"golang.org/x/sync/errgroup"
	"quiz-live-service/internal/domain"
)

// Run sweeps expired rooms every SweepInterval and drives the journal
// worker until ctx is cancelled. On return every room has been closed.
func (e *Engine) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	if e.journal != nil {
		g.Go(func() error {
			e.journal.run(gctx)
			return nil
		})
	}
	g.Go(func() error {
		e.sweepLoop(gctx)
		return nil
	})
	err := g.Wait()
	e.Shutdown()
	return err
}

func (e *Engine) sweepLoop(ctx context.Context) {
	ticker := e.clock.NewTicker(e.settings.SweepInterval)
	defer ticker.Stop()

	e.logger.Info().Dur("interval", e.settings.SweepInterval).Dur("retention", e.settings.Retention).Msg("room sweeper started")
	for {
		select {
		case <-ctx.Done():
			e.logger.Info().Msg("room sweeper stopped")
			return
		case <-ticker.Chan():
			e.Sweep()
		}
	}
}

// Sweep removes every room older than the retention window, whatever its
// phase, and returns how many were removed.
func (e *Engine) Sweep() int {
	now := e.clock.Now()
	removed := 0
	for _, room := range e.rooms.List() {
		if now.Sub(room.CreatedAt()) <= e.settings.Retention {
			continue
		}
		e.closeRoom(room, domain.JournalRoomExpired)
		removed++
	}
	if removed > 0 {
		e.logger.Info().Int("removed", removed).Msg("expired rooms swept")
	}
	return removed
}

// Shutdown closes every live room and its subscribers.
func (e *Engine) Shutdown() {
	for _, room := range e.rooms.List() {
		e.closeRoom(room, "")
	}
}

func (e *Engine) closeRoom(room *Room, kind domain.JournalKind) {
	room.expire()
	e.rooms.Delete(room.Code())
	if kind != "" {
		room.journal(kind, map[string]any{"ageSeconds": int(e.clock.Now().Sub(room.CreatedAt()).Seconds())})
	}
	e.logger.Debug().Str("room", room.Code()).Msg("room closed")
}
