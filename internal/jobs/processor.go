// Package jobs turns fetched leaderboard payloads into populated snapshots
// plus diffs, one processor per category family.
package jobs

import (
	"context"

	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/source"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/diff"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
	"github.com/BigBang1112/tmwrr-sub000/pkg/metrics"
)

// MapDiff is one campaign map's non-empty diff.
type MapDiff struct {
	Map  model.MapRef
	Diff diff.Diff
}

// CategoryDiff is the outcome of processing one category at one round.
type CategoryDiff struct {
	Category scores.Category

	// Maps holds the per-map diffs of a campaign category; maps whose diff
	// came out empty are not listed.
	Maps []MapDiff

	// Diff is the single-board diff of the general category.
	Diff diff.Diff

	// PlayerCountDelta is the head-count change of the general and ladder
	// categories since the previous snapshot.
	PlayerCountDelta int
}

// IsEmpty reports whether processing found no change worth reporting.
func (d CategoryDiff) IsEmpty() bool {
	return len(d.Maps) == 0 && d.Diff.IsEmpty()
}

// Processor populates a not-yet-persisted snapshot shell from a fetched
// payload and returns the diff against the previously persisted state.
type Processor interface {
	Process(ctx context.Context, payload *source.Payload, shell *model.Snapshot) (CategoryDiff, error)
}

// entriesByLogin keys a board by player identity for diffing.
func entriesByLogin(entries []model.Entry) map[string]model.Entry {
	m := make(map[string]model.Entry, len(entries))
	for _, e := range entries {
		m[e.Login] = e
	}
	return m
}

// recordsByLogin converts persisted records back to the entry form the diff
// calculator compares against.
func recordsByLogin(records []model.Record) map[string]model.Entry {
	m := make(map[string]model.Entry, len(records))
	for _, r := range records {
		m[r.Player.Login] = model.Entry{
			Rank:     r.Rank,
			Score:    r.Score,
			Login:    r.Player.Login,
			Nickname: r.Player.Nickname,
		}
	}
	return m
}

// playersOf collects the player references of a board.
func playersOf(entries []model.Entry) []model.PlayerRef {
	players := make([]model.PlayerRef, 0, len(entries))
	for _, e := range entries {
		players = append(players, model.PlayerRef{Login: e.Login, Nickname: e.Nickname})
	}
	return players
}

// recordDiffMetrics publishes per-bucket diff counters.
func recordDiffMetrics(d diff.Diff) {
	metrics.RecordDiffEntries("new", len(d.New))
	metrics.RecordDiffEntries("improved", len(d.Improved))
	metrics.RecordDiffEntries("worsened", len(d.Worsened))
	metrics.RecordDiffEntries("removed", len(d.Removed))
	metrics.RecordDiffEntries("pushed_off", len(d.PushedOff))
}
