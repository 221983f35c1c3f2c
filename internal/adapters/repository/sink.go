// Package repository defines the persistence sink contract and its
// implementations.
//
// The engine computes a game's full result in memory and hands it to the sink
// exactly once, after the reduction completed. WriteGame must be idempotent
// (upserts keyed on the natural row keys) so a retried write is safe.
package repository

import (
	"context"

	"github.com/courtlytics/pbp/internal/domain/model"
)

// Sink is the write contract the engine holds against durable storage.
type Sink interface {
	// WriteGame persists one game's snapshots, shots, lineup intervals and
	// quality report in a single idempotent operation. A failed write leaves
	// no partial state observable.
	WriteGame(ctx context.Context, result *model.GameResult) error

	// Close releases the sink's resources.
	Close() error
}
