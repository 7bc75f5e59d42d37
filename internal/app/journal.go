package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"quiz-live-service/internal/domain"
)

// Journal receives session milestones (Redis list, NATS subject, ...).
type Journal interface {
	Record(ctx context.Context, entry domain.JournalEntry) error
}

// MultiJournal records every entry to all of its sinks.
type MultiJournal []Journal

func (m MultiJournal) Record(ctx context.Context, entry domain.JournalEntry) error {
	var errs []error
	for _, j := range m {
		if err := j.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// journalWorker decouples rooms from journal I/O. Rooms enqueue under
// their lock; the worker writes in order from a single goroutine.
type journalWorker struct {
	sink    Journal
	entries chan domain.JournalEntry
	logger  zerolog.Logger
}

func (w *journalWorker) init(buffer int, logger zerolog.Logger) {
	if buffer < 1 {
		buffer = 1
	}
	w.entries = make(chan domain.JournalEntry, buffer)
	w.logger = logger
}

func (w *journalWorker) enqueue(entry domain.JournalEntry) {
	select {
	case w.entries <- entry:
	default:
		w.logger.Warn().
			Str("room", entry.RoomCode).
			Str("kind", string(entry.Kind)).
			Msg("journal buffer full, dropping entry")
	}
}

func (w *journalWorker) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case entry := <-w.entries:
			w.write(ctx, entry)
		}
	}
}

// drain flushes what is already queued, with a fresh context.
func (w *journalWorker) drain() {
	for {
		select {
		case entry := <-w.entries:
			w.write(context.Background(), entry)
		default:
			return
		}
	}
}

func (w *journalWorker) write(ctx context.Context, entry domain.JournalEntry) {
	if err := w.sink.Record(ctx, entry); err != nil {
		w.logger.Error().
			Err(err).
			Str("room", entry.RoomCode).
			Str("kind", string(entry.Kind)).
			Msg("journal write failed")
	}
}
