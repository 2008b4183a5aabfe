// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

// Entry is one leaderboard line as reported by the official scoreboard for
// one category (optionally scoped to one map) at one round.
type Entry struct {
	Rank     int
	Score    int
	Login    string // player identity key
	Nickname string // formatted display name, may change between rounds
}

// PlayerRef identifies a player known to the directory.
type PlayerRef struct {
	Login    string
	Nickname string
}

// MapRef identifies a campaign map known to the directory.
type MapRef struct {
	UID  string
	Name string
	Mode scores.Mode
}

// GhostRef points at downloaded replay evidence for one record.
type GhostRef struct {
	URI string
}

// Record is one leaderboard line attached to a snapshot. Order is the
// 0-based position as fetched, assigned exactly once at creation; it is kept
// distinct from Rank because the scoreboard may report tied ranks, and it is
// the stable key used to correlate entries across snapshots when ranks shift.
type Record struct {
	Order  uint8
	Rank   int
	Score  int
	MapUID string // empty for non-campaign snapshots
	Player PlayerRef
	Ghost  *GhostRef // nil when no evidence was downloaded
}

// Point is one sample of the ladder rank-to-points curve.
type Point struct {
	Rank   int
	Points int
}

// Snapshot is the immutable record of one category's standings at one
// externally reported timestamp. At most one snapshot exists per
// (category, CreatedAt); the storage layer's uniqueness constraint is the
// final arbiter.
type Snapshot struct {
	ID       uuid.UUID
	Category scores.Category

	// CreatedAt is the scoreboard's reported last-modified time and drives
	// the dedup key. PublishedAt is the local wall-clock time the round ran.
	CreatedAt   time.Time
	PublishedAt time.Time

	// NoChanges distinguishes "we checked and nothing changed" from "we
	// never checked".
	NoChanges bool

	// PlayerCount is the scoreboard-reported total head count, tracked for
	// the general and ladder categories.
	PlayerCount int

	Records []Record // campaign and general snapshots
	Points  []Point  // ladder snapshots
}

// NewSnapshot builds the not-yet-persisted shell a category processor
// populates in place.
func NewSnapshot(cat scores.Category, createdAt, publishedAt time.Time) *Snapshot {
	return &Snapshot{
		ID:          uuid.New(),
		Category:    cat,
		CreatedAt:   createdAt,
		PublishedAt: publishedAt,
	}
}

// AppendRecord attaches a leaderboard line and returns the index of the
// stored record. Order is the line's 0-based position on its own board, so
// it restarts for every map within a campaign batch.
func (s *Snapshot) AppendRecord(mapUID string, order uint8, e Entry) int {
	s.Records = append(s.Records, Record{
		Order:  order,
		Rank:   e.Rank,
		Score:  e.Score,
		MapUID: mapUID,
		Player: PlayerRef{Login: e.Login, Nickname: e.Nickname},
	})
	return len(s.Records) - 1
}
