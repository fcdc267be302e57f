package persistence

import (
	"context"
	"fmt"

	"tabwise_server/core/domain"
	"tabwise_server/pkg/cache"
)

// PatternStoreKey is the Redis key holding the full learned-pattern store.
const PatternStoreKey = "tabwise:patterns"

// PatternAdapter implements out.PatternRepository over Redis. The store is
// one JSON document: it is loaded once per run and replaced whole on every
// learning event, so per-domain keys would buy nothing.
type PatternAdapter struct {
	cache *cache.RedisCache
}

// NewPatternAdapter creates a new PatternAdapter.
func NewPatternAdapter(c *cache.RedisCache) *PatternAdapter {
	return &PatternAdapter{cache: c}
}

// Load returns the full pattern store, or an empty store when nothing has
// been learned yet.
func (a *PatternAdapter) Load(ctx context.Context) (*domain.PatternStore, error) {
	store := domain.NewPatternStore()
	found, err := a.cache.GetJSON(ctx, PatternStoreKey, store)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern store: %w", err)
	}
	if !found {
		return domain.NewPatternStore(), nil
	}
	if store.Patterns == nil {
		store.Patterns = make(map[string]*domain.UserPattern)
	}
	if store.CategoryDomains == nil {
		store.CategoryDomains = make(map[string][]string)
	}
	return store, nil
}

// Save persists the full pattern store, replacing the previous state.
// Patterns never expire; 0 TTL keeps the key until the next save.
func (a *PatternAdapter) Save(ctx context.Context, store *domain.PatternStore) error {
	if store == nil {
		return ErrInvalidInput
	}
	if err := a.cache.SetJSON(ctx, PatternStoreKey, store, 0); err != nil {
		return fmt.Errorf("failed to save pattern store: %w", err)
	}
	return nil
}
