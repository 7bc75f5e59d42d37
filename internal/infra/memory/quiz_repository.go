package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
	"quiz-live-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store (in-memory, Postgres).
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository keeps loaded quizzes in process for a jittered TTL so room
// creation does not hit the store every time. Concurrent misses for one quiz
// share a single load.
type QuizRepository struct {
	loader QuizLoader
	ttl    time.Duration
	clock  clockwork.Clock
	loads  singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu      sync.RWMutex
	entries map[string]cacheEntry
	// gens counts invalidations per quiz; a load stores its result only if
	// no invalidation happened while it ran
	gens map[string]uint64
}

type cacheEntry struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

// RepositoryOption configures a QuizRepository.
type RepositoryOption func(*QuizRepository)

// WithClock sets the time source used for expiry.
func WithClock(c clockwork.Clock) RepositoryOption {
	return func(r *QuizRepository) { r.clock = c }
}

func NewQuizRepository(loader QuizLoader, ttl time.Duration, opts ...RepositoryOption) *QuizRepository {
	r := &QuizRepository{
		loader:  loader,
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		entries: make(map[string]cacheEntry),
		gens:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.fresh(quizID); ok {
		return quiz, nil
	}

	v, err, _ := r.loads.Do(quizID, func() (any, error) {
		if quiz, ok := r.fresh(quizID); ok {
			return quiz, nil
		}
		r.mu.RLock()
		gen := r.gens[quizID]
		r.mu.RUnlock()

		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.mu.Lock()
		if r.gens[quizID] == gen {
			r.entries[quizID] = cacheEntry{quiz: quiz, expiresAt: r.clock.Now().Add(r.ttlWithJitter())}
		}
		r.mu.Unlock()
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return v.(domain.Quiz), nil
}

// Invalidate drops the cached copy of quizID.
func (r *QuizRepository) Invalidate(_ context.Context, quizID string) error {
	r.mu.Lock()
	delete(r.entries, quizID)
	r.gens[quizID]++
	r.mu.Unlock()
	r.loads.Forget(quizID)
	return nil
}

// fresh returns the cached quiz unless it is missing or expired. Expired
// entries are removed on the way.
func (r *QuizRepository) fresh(quizID string) (domain.Quiz, bool) {
	now := r.clock.Now()
	r.mu.RLock()
	entry, ok := r.entries[quizID]
	r.mu.RUnlock()
	if !ok {
		return domain.Quiz{}, false
	}
	if !entry.expiresAt.After(now) {
		r.mu.Lock()
		if cur, still := r.entries[quizID]; still && cur.expiresAt.Equal(entry.expiresAt) {
			delete(r.entries, quizID)
		}
		r.mu.Unlock()
		return domain.Quiz{}, false
	}
	return entry.quiz, true
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% extra spreads expirations of quizzes loaded together
	spread := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(spread+1))
}
