package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"quiz-live-service/internal/domain"
)

// DefaultSubjectPrefix roots the per-room subjects: quiz.rooms.<code>.<kind>.
const DefaultSubjectPrefix = "quiz.rooms"

// Config describes the NATS connection used for journal publishing.
type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

type publisher interface {
	PublishMsg(msg *nats.Msg) error
}

// Journal publishes room milestones on NATS subjects so other services can
// follow sessions without polling.
type Journal struct {
	conn   publisher
	prefix string
	close  func()
}

// Connect dials NATS and returns a Journal publishing under cfg.SubjectPrefix.
func Connect(cfg Config, logger zerolog.Logger) (*Journal, error) {
	opts := []nats.Option{
		nats.Name("quiz-live-service"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	j := newJournal(nc, cfg.SubjectPrefix)
	j.close = func() {
		if err := nc.Drain(); err != nil {
			nc.Close()
		}
	}
	return j, nil
}

func newJournal(conn publisher, prefix string) *Journal {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Journal{conn: conn, prefix: prefix, close: func() {}}
}

// Subject returns the subject an entry is published on.
func (j *Journal) Subject(entry domain.JournalEntry) string {
	return fmt.Sprintf("%s.%s.%s", j.prefix, entry.RoomCode, entry.Kind)
}

func (j *Journal) Record(_ context.Context, entry domain.JournalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	msg := &nats.Msg{
		Subject: j.Subject(entry),
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(entry.Kind)},
			"Room-Code":  []string{entry.RoomCode},
		},
	}
	if err := j.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (j *Journal) Close() {
	j.close()
}
