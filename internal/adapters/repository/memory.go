package repository

import (
	"context"
	"sync"

	"github.com/courtlytics/pbp/internal/domain/model"
)

// MemorySink implements Sink in process memory. Used in tests and for
// ephemeral runs where durability is not wanted.
type MemorySink struct {
	mu     sync.RWMutex
	games  map[string]*model.GameResult
	closed bool
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{games: make(map[string]*model.GameResult)}
}

// WriteGame stores the result keyed by game id. Rewrites are idempotent: the
// latest write wins wholesale.
func (s *MemorySink) WriteGame(ctx context.Context, result *model.GameResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.games[result.GameID] = result
	return nil
}

// Game returns a previously written result.
func (s *MemorySink) Game(gameID string) (*model.GameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.games[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	return result, nil
}

// Len returns the number of stored games.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// Close marks the sink closed; later writes fail with ErrClosed.
func (s *MemorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
