package jobs

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/ghost"
	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/repository"
	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/source"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/diff"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
	"github.com/BigBang1112/tmwrr-sub000/pkg/logger"
	"github.com/BigBang1112/tmwrr-sub000/pkg/metrics"
)

// Default campaign processing constants.
const defaultMapParallelism = 4

// CampaignProcessor processes the per-map campaign categories.
type CampaignProcessor struct {
	store       repository.Store
	directory   repository.Directory
	ghosts      ghost.Downloader // nil disables enrichment
	parallelism int
	log         logger.Logger
}

// CampaignOption applies a configuration option to the CampaignProcessor.
type CampaignOption func(*CampaignProcessor)

// WithGhostDownloader enables replay enrichment for new and improved
// records.
func WithGhostDownloader(d ghost.Downloader) CampaignOption {
	return func(p *CampaignProcessor) {
		p.ghosts = d
	}
}

// WithMapParallelism bounds how many maps are diffed concurrently.
func WithMapParallelism(n int) CampaignOption {
	return func(p *CampaignProcessor) {
		if n > 0 {
			p.parallelism = n
		}
	}
}

// WithCampaignLogger sets a custom logger.
func WithCampaignLogger(l logger.Logger) CampaignOption {
	return func(p *CampaignProcessor) {
		if l != nil {
			p.log = l
		}
	}
}

// NewCampaignProcessor creates a campaign processor over the given
// collaborators.
func NewCampaignProcessor(store repository.Store, directory repository.Directory, opts ...CampaignOption) *CampaignProcessor {
	p := &CampaignProcessor{
		store:       store,
		directory:   directory,
		parallelism: defaultMapParallelism,
		log:         logger.Get().Named("campaign"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// mapResult is the outcome of processing one map board.
type mapResult struct {
	board      source.MapBoard
	records    []model.Record
	diff       diff.Diff
	hadHistory bool
}

// Process diffs every map board in the payload against its latest persisted
// records, populates the shell, and returns the non-empty map diffs.
//
// Maps are independent (disjoint records and identity maps), so they are
// diffed concurrently; records are appended to the shell only after every
// map settled, in payload order, so the shell is never observed half built.
func (p *CampaignProcessor) Process(ctx context.Context, payload *source.Payload, shell *model.Snapshot) (CategoryDiff, error) {
	out := CategoryDiff{Category: shell.Category}
	if payload == nil || len(payload.Campaign) == 0 {
		return out, nil
	}

	maps := make([]model.MapRef, 0, len(payload.Campaign))
	for _, b := range payload.Campaign {
		maps = append(maps, b.Map)
	}
	if err := p.directory.ResolveMaps(ctx, maps); err != nil {
		return out, fmt.Errorf("resolve campaign maps: %w", err)
	}

	results := make([]mapResult, len(payload.Campaign))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)
	for i, board := range payload.Campaign {
		i, board := i, board
		g.Go(func() error {
			res, err := p.processMap(gctx, shell.Category, board)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}

	var anyHistory bool
	for _, res := range results {
		shell.Records = append(shell.Records, res.records...)
		if res.hadHistory {
			anyHistory = true
		}
		if res.hadHistory && !res.diff.IsEmpty() {
			out.Maps = append(out.Maps, MapDiff{Map: res.board.Map, Diff: res.diff})
		}
	}

	// "Checked and nothing changed" requires something to have been
	// comparable in the first place.
	shell.NoChanges = anyHistory && len(out.Maps) == 0
	return out, nil
}

// processMap builds the records for one map board, diffs them against the
// latest persisted state, and attaches replay evidence to new and improved
// records.
func (p *CampaignProcessor) processMap(ctx context.Context, cat scores.Category, board source.MapBoard) (mapResult, error) {
	res := mapResult{board: board}
	if len(board.Entries) == 0 {
		// Nothing fetch-worthy; the cutoff over an empty board is
		// undefined, so no diff is computed either.
		return res, nil
	}

	if err := p.directory.ResolvePlayers(ctx, playersOf(board.Entries)); err != nil {
		return res, fmt.Errorf("resolve players for map %s: %w", board.Map.UID, err)
	}

	byLogin := make(map[string]int, len(board.Entries))
	for i, e := range board.Entries {
		res.records = append(res.records, model.Record{
			Order:  uint8(i),
			Rank:   e.Rank,
			Score:  e.Score,
			MapUID: board.Map.UID,
			Player: model.PlayerRef{Login: e.Login, Nickname: e.Nickname},
		})
		byLogin[e.Login] = i
	}

	prior, err := p.store.LatestRecords(ctx, cat, board.Map.UID)
	if err != nil {
		return res, fmt.Errorf("load latest records for map %s: %w", board.Map.UID, err)
	}
	if len(prior) == 0 {
		// First sighting of this map: populate so history exists, but
		// there is nothing to compare against.
		return res, nil
	}
	res.hadHistory = true

	res.diff = diff.Compute(board.Map.Mode, recordsByLogin(prior), entriesByLogin(board.Entries), board.Entries)
	recordDiffMetrics(res.diff)

	p.enrich(ctx, board, res.diff, byLogin, res.records)
	return res, nil
}

// enrich attaches replay evidence to the new and improved records, best
// effort: failures are logged and never abort the map, and one failure does
// not cancel sibling downloads.
func (p *CampaignProcessor) enrich(ctx context.Context, board source.MapBoard, d diff.Diff, byLogin map[string]int, records []model.Record) {
	if p.ghosts == nil {
		return
	}

	wanted := make([]model.Entry, 0, len(d.New)+len(d.Improved))
	wanted = append(wanted, d.New...)
	for _, c := range d.Improved {
		wanted = append(wanted, c.After)
	}

	for _, e := range wanted {
		idx, ok := byLogin[e.Login]
		if !ok {
			continue
		}
		ref, err := p.ghosts.Download(ctx, board.Map.UID, e.Login, e.Score)
		if err != nil {
			metrics.RecordGhostDownload(false)
			p.log.Warn(ctx, "replay download failed",
				logger.String("map", board.Map.UID),
				logger.String("login", e.Login),
				logger.Error(err),
			)
			continue
		}
		if ref == nil {
			metrics.RecordGhostDownload(false)
			continue
		}
		metrics.RecordGhostDownload(true)
		records[idx].Ghost = ref
	}
}
