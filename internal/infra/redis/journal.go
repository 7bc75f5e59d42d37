package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"quiz-live-service/internal/domain"
)

// JournalKey is the list room milestones are appended to.
const JournalKey = "quiz:journal"

// Journal appends room milestones to a capped Redis list.
type Journal struct {
	client *redis.Client
	limit  int64
}

// NewJournal keeps at most limit entries; limit <= 0 means unbounded.
func NewJournal(client *redis.Client, limit int64) *Journal {
	return &Journal{client: client, limit: limit}
}

func (j *Journal) Record(ctx context.Context, entry domain.JournalEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	pipe := j.client.TxPipeline()
	pipe.RPush(ctx, JournalKey, raw)
	if j.limit > 0 {
		pipe.LTrim(ctx, JournalKey, -j.limit, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}
