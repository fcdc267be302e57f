package out

import (
	"context"

	"tabwise_server/core/domain"
)

// PatternRepository is the outbound port for the learned-pattern store. The
// store is loaded once at the start of a run and written back only by the
// learning entry point; implementations do not need to support concurrent
// mutation of a single store instance.
type PatternRepository interface {
	// Load returns the full pattern store, or an empty store when nothing
	// has been learned yet.
	Load(ctx context.Context) (*domain.PatternStore, error)

	// Save persists the full pattern store, replacing the previous state.
	Save(ctx context.Context, store *domain.PatternStore) error
}

// UndoRepository persists the single most-recent UndoState.
type UndoRepository interface {
	// Get returns the current undo state, or nil when there is nothing to
	// undo.
	Get(ctx context.Context) (*domain.UndoState, error)

	// Put replaces the undo state.
	Put(ctx context.Context, state *domain.UndoState) error

	// Clear removes the undo state after a successful undo.
	Clear(ctx context.Context) error
}
