package life

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type Cache[S any] interface {
	Set(ctx context.Context, key string, val S) error
	Get(ctx context.Context, key string) (S, bool, error)
	Del(ctx context.Context, key string) error
}

type MemoryCache[S any] struct {
	mu sync.RWMutex
	m  map[string]S
}

func NewMemoryCache[S any]() *MemoryCache[S] {
	return &MemoryCache[S]{m: map[string]S{}}
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	m.mu.Lock()
	m.m[key] = val
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	m.mu.RLock()
	val, ok := m.m[key]
	m.mu.RUnlock()
	return val, ok, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.m, key)
	m.mu.Unlock()
	return nil
}

// Scorer runs games and memoizes the result per word. Games are
// deterministic, so a cached result never goes stale.
type Scorer struct {
	cache       Cache[Result]
	generations int
}

type ScorerOption func(*Scorer)

func WithCache(cache Cache[Result]) ScorerOption {
	return func(s *Scorer) {
		s.cache = cache
	}
}

func WithGenerations(n int) ScorerOption {
	return func(s *Scorer) {
		if n > 0 {
			s.generations = n
		}
	}
}

func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		cache:       NewMemoryCache[Result](),
		generations: DefaultGeneration,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Scorer) Score(ctx context.Context, word string) (Result, error) {
	key := fmt.Sprintf("life:%d:%s", s.generations, word)
	if res, ok, err := s.cache.Get(ctx, key); err != nil {
		return Result{}, err
	} else if ok {
		slog.Debug("Game result cache hit", "word", word)
		return res, nil
	}
	res := Run(word, s.generations)
	if err := s.cache.Set(ctx, key, res); err != nil {
		return Result{}, err
	}
	slog.Debug("Game finished", "word", word, "generations", res.Generations, "score", res.Score)
	return res, nil
}
