package persistence

import (
	"context"
	"fmt"
	"time"

	"tabwise_server/core/domain"
	"tabwise_server/pkg/cache"
)

// UndoStateKey is the Redis key holding the single most-recent undo state.
const UndoStateKey = "tabwise:undo"

// UndoTTL caps how long an organize run stays reversible. Tabs drift too
// much after a day for the recorded state to be worth replaying.
const UndoTTL = 24 * time.Hour

// UndoAdapter implements out.UndoRepository over Redis.
type UndoAdapter struct {
	cache *cache.RedisCache
}

// NewUndoAdapter creates a new UndoAdapter.
func NewUndoAdapter(c *cache.RedisCache) *UndoAdapter {
	return &UndoAdapter{cache: c}
}

// Get returns the current undo state, or nil when there is nothing to undo.
func (a *UndoAdapter) Get(ctx context.Context) (*domain.UndoState, error) {
	state := &domain.UndoState{}
	found, err := a.cache.GetJSON(ctx, UndoStateKey, state)
	if err != nil {
		return nil, fmt.Errorf("failed to load undo state: %w", err)
	}
	if !found {
		return nil, nil
	}
	return state, nil
}

// Put replaces the undo state.
func (a *UndoAdapter) Put(ctx context.Context, state *domain.UndoState) error {
	if state == nil {
		return ErrInvalidInput
	}
	if err := a.cache.SetJSON(ctx, UndoStateKey, state, UndoTTL); err != nil {
		return fmt.Errorf("failed to save undo state: %w", err)
	}
	return nil
}

// Clear removes the undo state after a successful undo.
func (a *UndoAdapter) Clear(ctx context.Context) error {
	if err := a.cache.Delete(ctx, UndoStateKey); err != nil {
		return fmt.Errorf("failed to clear undo state: %w", err)
	}
	return nil
}
