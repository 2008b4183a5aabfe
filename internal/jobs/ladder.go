package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/repository"
	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/source"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
)

// LadderProcessor processes the ladder point distribution. It tracks no
// individual players; only the shape of the rank-to-points curve and the
// total head count are compared between rounds.
type LadderProcessor struct {
	store repository.Store
}

// NewLadderProcessor creates a ladder processor over the given store.
func NewLadderProcessor(store repository.Store) *LadderProcessor {
	return &LadderProcessor{store: store}
}

// Process compares the fetched curve with the previous snapshot. An
// identical curve and head count marks the round noChanges. The curve is
// persisted either way, so each snapshot is a complete comparison baseline
// for the round after it.
func (p *LadderProcessor) Process(ctx context.Context, payload *source.Payload, shell *model.Snapshot) (CategoryDiff, error) {
	out := CategoryDiff{Category: shell.Category}
	if payload == nil || payload.Ladder == nil {
		return out, errMissingPayload
	}
	board := payload.Ladder

	shell.PlayerCount = board.PlayerCount
	shell.Points = append([]model.Point(nil), board.Points...)

	prev, err := p.store.LatestSnapshot(ctx, shell.Category)
	if errors.Is(err, repository.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("load previous ladder snapshot: %w", err)
	}

	out.PlayerCountDelta = board.PlayerCount - prev.PlayerCount
	shell.NoChanges = out.PlayerCountDelta == 0 && curvesEqual(prev.Points, board.Points)
	return out, nil
}

func curvesEqual(a, b []model.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
