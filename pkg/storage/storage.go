package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwebster45206/hunt-engine/pkg/hunt"
	"github.com/jwebster45206/hunt-engine/pkg/state"
)

// ErrHuntNotFound reports a hunt filename with no definition on disk.
var ErrHuntNotFound = errors.New("hunt not found")

// Storage defines a unified interface for all storage operations
// This interface combines progress persistence (Redis, SQLite or in-memory)
// with hunt definition loading (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Progress operations (durable backend)
	// LoadProgress returns (nil, nil) when no record exists. Malformed
	// records are treated the same way, so a broken payload never
	// blocks a session from starting fresh.
	SaveProgress(ctx context.Context, id uuid.UUID, p *state.Progress) error
	LoadProgress(ctx context.Context, id uuid.UUID) (*state.Progress, error)
	DeleteProgress(ctx context.Context, id uuid.UUID) error

	// Hunt definition operations (filesystem-backed)
	ListHunts(ctx context.Context) (map[string]string, error)
	GetHunt(ctx context.Context, filename string) (*hunt.Hunt, error)
}
