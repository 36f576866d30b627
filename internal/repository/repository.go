package repository

import (
	"context"
	"errors"

	"mswell/internal/domain"

	"github.com/google/uuid"
)

// ErrCheckpointNotFound is returned when no checkpoint matches
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// CheckpointStore persists finalized segment sets as restart checkpoints
type CheckpointStore interface {
	// Write operations
	SaveWell(ctx context.Context, set *domain.SegmentSet) (uuid.UUID, error)
	DeleteCheckpoint(ctx context.Context, id uuid.UUID) error

	// Read operations
	LoadWell(ctx context.Context, id uuid.UUID) (*domain.SegmentSet, error)
	LatestCheckpoint(ctx context.Context, well string) (*domain.CheckpointInfo, error)
	ListCheckpoints(ctx context.Context, well string) ([]domain.CheckpointInfo, error)

	// Close releases resources
	Close() error
}
