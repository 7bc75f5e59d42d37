package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"quiz-live-service/internal/app"
)

const releaseTimeout = 2 * time.Second

// RoomStore is a Redis-aware implementation of app.RoomRepository.
// Notes:
//   - Rooms live in a local map; their timers and subscribers are in-process.
//   - Redis holds a liveness key per code (SETNX), so two instances sharing
//     one Redis never hand out the same room code.
//   - Redis calls run outside mu, so lookups for live rooms never wait on
//     the network.
type RoomStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	rooms  map[string]*app.Room
}

// NewRoomStore keeps liveness keys for ttl, normally the room retention.
func NewRoomStore(client *redis.Client, ttl time.Duration) *RoomStore {
	return &RoomStore{
		client: client,
		ttl:    ttl,
		rooms:  make(map[string]*app.Room),
	}
}

func (s *RoomStore) Insert(ctx context.Context, room *app.Room) bool {
	code := room.Code()
	if s.taken(code) {
		return false
	}

	claimed, err := s.client.SetNX(ctx, s.key(code), "1", s.ttl).Result()
	if err == nil && !claimed {
		return false
	}
	// on a Redis error the local map alone decides

	s.mu.Lock()
	defer s.mu.Unlock()
	// a concurrent local insert of the same code wins; the key it claimed
	// stays, since it marks that room
	if _, taken := s.rooms[code]; taken {
		return false
	}
	s.rooms[code] = room
	return true
}

func (s *RoomStore) Get(code string) (*app.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[code]
	return room, ok
}

func (s *RoomStore) Delete(code string) {
	s.mu.Lock()
	_, ok := s.rooms[code]
	delete(s.rooms, code)
	s.mu.Unlock()
	if ok {
		s.release(code)
	}
}

func (s *RoomStore) List() []*app.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*app.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, room)
	}
	return out
}

func (s *RoomStore) taken(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok
}

// release drops the liveness key; an expired key is harmless, so errors are ignored.
func (s *RoomStore) release(code string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	_ = s.client.Del(ctx, s.key(code)).Err()
}

func (s *RoomStore) key(code string) string {
	return "quiz:room:" + code
}
