// Package source defines the client contract for the official scoreboard
// and the payload types it returns.
package source

import (
	"context"
	"time"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

// MapBoard is one campaign map's leaderboard within a payload.
type MapBoard struct {
	Map     model.MapRef
	Entries []model.Entry
}

// GeneralBoard is the global skill-point leaderboard.
type GeneralBoard struct {
	Entries     []model.Entry
	PlayerCount int
}

// LadderBoard is the ladder point distribution: a small ordered list of
// rank-to-points samples plus the total player count.
type LadderBoard struct {
	Points      []model.Point
	PlayerCount int
}

// Payload is the full leaderboard download for one category at one round.
// Exactly one section is populated, matching the category family.
type Payload struct {
	Campaign []MapBoard
	General  *GeneralBoard
	Ladder   *LadderBoard
}

// Client fetches leaderboard data from the official scoreboard.
type Client interface {
	// LatestRound discovers the most recently published round identifier.
	LatestRound(ctx context.Context) (scores.Round, error)

	// FetchTimestamp returns the approximate last-modified time the
	// scoreboard reports for the category at the given round, plus an
	// approximate player count. Returns ErrNotFound when the category has
	// no data at that round.
	FetchTimestamp(ctx context.Context, cat scores.Category, round scores.Round) (time.Time, int, error)

	// FetchLeaderboard downloads the full payload for the category.
	FetchLeaderboard(ctx context.Context, cat scores.Category, round scores.Round) (*Payload, error)
}
