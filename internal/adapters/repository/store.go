// Package repository defines the snapshot store and player/map directory
// contracts plus their sqlite and in-memory implementations.
package repository

import (
	"context"
	"time"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

// Store provides append-only access to persisted snapshots.
type Store interface {
	// Exists reports whether a snapshot already exists for the category at
	// the reported timestamp. It is a fast path; Save's conflict detection
	// is the final arbiter.
	Exists(ctx context.Context, cat scores.Category, createdAt time.Time) (bool, error)

	// Save persists a populated snapshot atomically. Returns ErrConflict
	// when a snapshot for (category, createdAt) already exists, which
	// callers treat as benign.
	Save(ctx context.Context, snap *model.Snapshot) error

	// LatestRecords returns the records of the most recent snapshot that
	// carries data for the category, scoped to mapUID when non-empty.
	// An empty result means no history exists yet.
	LatestRecords(ctx context.Context, cat scores.Category, mapUID string) ([]model.Record, error)

	// LatestSnapshot returns the most recent snapshot for the category with
	// its points and records loaded. Returns ErrNotFound when none exists.
	LatestSnapshot(ctx context.Context, cat scores.Category) (*model.Snapshot, error)
}

// Directory resolves players and maps referenced by a snapshot, creating
// missing ones. Resolution failures are fatal to the category's round: a
// snapshot cannot be built without them.
type Directory interface {
	ResolvePlayers(ctx context.Context, players []model.PlayerRef) error
	ResolveMaps(ctx context.Context, maps []model.MapRef) error
}
