package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/repository"
	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/source"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/diff"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

// errMissingPayload means the fetched payload carried no section for the
// processor's category family.
var errMissingPayload = errors.New("payload missing for category family")

// GeneralProcessor processes the single global skill-point leaderboard.
type GeneralProcessor struct {
	store     repository.Store
	directory repository.Directory
}

// NewGeneralProcessor creates a general processor over the given
// collaborators.
func NewGeneralProcessor(store repository.Store, directory repository.Directory) *GeneralProcessor {
	return &GeneralProcessor{store: store, directory: directory}
}

// Process populates the shell from the global board and diffs it against
// the previous snapshot with higher-is-better semantics. The head-count
// delta is the authoritative no-op signal: an unchanged total marks the
// round noChanges even if ranks churned.
func (p *GeneralProcessor) Process(ctx context.Context, payload *source.Payload, shell *model.Snapshot) (CategoryDiff, error) {
	out := CategoryDiff{Category: shell.Category}
	if payload == nil || payload.General == nil {
		return out, errMissingPayload
	}
	board := payload.General

	if err := p.directory.ResolvePlayers(ctx, playersOf(board.Entries)); err != nil {
		return out, fmt.Errorf("resolve general players: %w", err)
	}

	shell.PlayerCount = board.PlayerCount
	for i, e := range board.Entries {
		shell.AppendRecord("", uint8(i), e)
	}

	prev, err := p.store.LatestSnapshot(ctx, shell.Category)
	if errors.Is(err, repository.ErrNotFound) {
		// First snapshot ever: history starts here, nothing to compare.
		return out, nil
	}
	if err != nil {
		return out, fmt.Errorf("load previous general snapshot: %w", err)
	}

	out.PlayerCountDelta = board.PlayerCount - prev.PlayerCount

	if len(board.Entries) > 0 {
		out.Diff = diff.Compute(scores.HigherIsBetter,
			recordsByLogin(prev.Records), entriesByLogin(board.Entries), board.Entries)
		recordDiffMetrics(out.Diff)
	}

	if out.PlayerCountDelta == 0 {
		shell.NoChanges = true
	} else {
		shell.NoChanges = out.Diff.IsEmpty()
	}
	return out, nil
}
