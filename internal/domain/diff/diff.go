// Package diff computes the structured difference between two sets of
// leaderboard standings for one board.
package diff

import (
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

// Change pairs a player's previous and current standings.
type Change struct {
	Before model.Entry
	After  model.Entry
}

// Diff is the five-bucket difference between the previously persisted
// standings and the newly fetched ones, keyed by player login. The buckets
// are pairwise disjoint and together cover old ∪ new.
type Diff struct {
	// New entries are present now and absent before.
	New []model.Entry
	// Improved and Worsened entries are present in both with a favorable or
	// unfavorable standings change.
	Improved []Change
	Worsened []Change
	// Removed entries disappeared even though their old score would still
	// qualify under the current cutoff: an explicit removal.
	Removed []model.Entry
	// PushedOff entries disappeared because better scores displaced them
	// past the cutoff.
	PushedOff []model.Entry
}

// IsEmpty reports whether every bucket is empty.
func (d Diff) IsEmpty() bool {
	return len(d.New) == 0 &&
		len(d.Improved) == 0 &&
		len(d.Worsened) == 0 &&
		len(d.Removed) == 0 &&
		len(d.PushedOff) == 0
}

// Len returns the total number of diff entries across all buckets.
func (d Diff) Len() int {
	return len(d.New) + len(d.Improved) + len(d.Worsened) + len(d.Removed) + len(d.PushedOff)
}

// Compute diffs the old standings against the new ones under mode m.
//
// board is the full current leaderboard and supplies the qualifying cutoff:
// the worst score still present, which approximates "the score needed to
// still be on the board". Old entries missing from new are Removed when
// their score would still qualify and PushedOff otherwise. With an empty
// board there is no cutoff and no displacing score, so every old-only entry
// is Removed; callers must treat a completely empty new leaderboard as
// "no fetch-worthy data" before calling if that is not what they want.
//
// The result is deterministic given identical inputs; bucket order follows
// map iteration and is not significant.
func Compute(m scores.Mode, old, updated map[string]model.Entry, board []model.Entry) Diff {
	var d Diff

	for login, entry := range updated {
		prev, ok := old[login]
		if !ok {
			d.New = append(d.New, entry)
			continue
		}
		os := scores.Standing{Rank: prev.Rank, Score: prev.Score}
		ns := scores.Standing{Rank: entry.Rank, Score: entry.Score}
		switch {
		case scores.Improved(m, os, ns):
			d.Improved = append(d.Improved, Change{Before: prev, After: entry})
		case scores.Worsened(m, os, ns):
			d.Worsened = append(d.Worsened, Change{Before: prev, After: entry})
		}
	}

	cutoff, hasCutoff := worstScore(m, board)
	for login, prev := range old {
		if _, ok := updated[login]; ok {
			continue
		}
		if hasCutoff && m.Worse(prev.Score, cutoff) {
			d.PushedOff = append(d.PushedOff, prev)
			continue
		}
		d.Removed = append(d.Removed, prev)
	}

	return d
}

// worstScore returns the worst score present on the board under mode m. The
// second result is false when the board is empty.
func worstScore(m scores.Mode, board []model.Entry) (int, bool) {
	if len(board) == 0 {
		return 0, false
	}
	worst := board[0].Score
	for _, e := range board[1:] {
		if m.Worse(e.Score, worst) {
			worst = e.Score
		}
	}
	return worst, true
}
