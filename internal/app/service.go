// Package service provides the poll orchestrator: it drives one polling
// round across all score categories, dedups against storage, dispatches to
// the category processors, and aggregates diffs for reporting.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/ghost"
	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/notify"
	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/repository"
	"github.com/BigBang1112/tmwrr-sub000/internal/adapters/source"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
	"github.com/BigBang1112/tmwrr-sub000/internal/domain/seen"
	"github.com/BigBang1112/tmwrr-sub000/internal/jobs"
	"github.com/BigBang1112/tmwrr-sub000/pkg/logger"
	"github.com/BigBang1112/tmwrr-sub000/pkg/metrics"
	"github.com/BigBang1112/tmwrr-sub000/pkg/retry"
)

// Default orchestrator configuration constants.
const (
	defaultStaleThreshold = 36 * time.Hour // 1.5 days
)

// Service orchestrates one polling round at a time. Collaborators are
// injected; the three category processors are built over them.
type Service struct {
	src       source.Client
	store     repository.Store
	directory repository.Directory
	notifier  notify.Notifier
	seenCache seen.Cache

	campaign jobs.Processor
	general  jobs.Processor
	ladder   jobs.Processor

	staleThreshold time.Duration
	fetchRetry     retry.Policy
	ghosts         ghost.Downloader
	now            func() time.Time

	log logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithNotifier sets the reporting side channel.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithGhostDownloader enables replay enrichment on campaign records.
func WithGhostDownloader(d ghost.Downloader) Option {
	return func(s *Service) {
		s.ghosts = d
	}
}

// WithStaleThreshold sets how old reported data may be before the fetch is
// retried as stale.
func WithStaleThreshold(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.staleThreshold = d
		}
	}
}

// WithRetryPolicy sets the resilience policy wrapping each category fetch.
func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Service) {
		s.fetchRetry = p
	}
}

// WithSeenCache substitutes the in-process idempotency cache.
func WithSeenCache(c seen.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.seenCache = c
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock substitutes the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service over the required collaborators.
func New(src source.Client, store repository.Store, directory repository.Directory, opts ...Option) *Service {
	s := &Service{
		src:            src,
		store:          store,
		directory:      directory,
		notifier:       notify.Nop{},
		seenCache:      seen.NewInMemoryCache(),
		staleThreshold: defaultStaleThreshold,
		fetchRetry:     retry.NewPolicy(),
		now:            time.Now,
		log:            logger.Get().Named("orchestrator"),
	}
	for _, opt := range opts {
		opt(s)
	}

	campaignOpts := []jobs.CampaignOption{jobs.WithCampaignLogger(s.log.Named("campaign"))}
	if s.ghosts != nil {
		campaignOpts = append(campaignOpts, jobs.WithGhostDownloader(s.ghosts))
	}
	s.campaign = jobs.NewCampaignProcessor(store, directory, campaignOpts...)
	s.general = jobs.NewGeneralProcessor(store, directory)
	s.ladder = jobs.NewLadderProcessor(store)

	return s
}

// fetchResult is one settled category metadata fetch.
type fetchResult struct {
	cat scores.Category
	ts  time.Time
	err error
}

// RunRound drives one polling round: fetch every category concurrently,
// process each as it settles, persist snapshots, report aggregated campaign
// diffs, and return the next round identifier together with the most recent
// timestamp observed across categories.
//
// A zero round means "discover the latest from the source". The returned
// error is ErrAllFetchesFailed when not a single category yielded data; the
// scheduler falls back to a short retry delay in that case.
func (s *Service) RunRound(ctx context.Context, round scores.Round) (scores.Round, time.Time, error) {
	if !round.Valid() {
		r, err := s.src.LatestRound(ctx)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("discover latest round: %w", err)
		}
		round = r
	}
	s.log.Info(ctx, "starting round", logger.Int("round", int(round)))
	metrics.RecordRoundStarted()

	results := make(chan fetchResult)
	var wg sync.WaitGroup
	for _, cat := range scores.All() {
		cat := cat
		wg.Add(1)
		go func() {
			defer wg.Done()
			ts, err := s.fetchTimestamp(ctx, cat, round)
			select {
			case results <- fetchResult{cat: cat, ts: ts, err: err}:
			case <-ctx.Done():
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		scoresDate time.Time
		aggregated []jobs.CategoryDiff
	)
	// Fetches settle out of submission order; each is processed here, on
	// the calling goroutine, as soon as it arrives.
	for res := range results {
		if res.err != nil {
			metrics.RecordFetchFailure(res.cat.String())
			s.log.Warn(ctx, "category fetch failed, skipping for this round",
				logger.String("category", res.cat.String()),
				logger.Error(res.err),
			)
			continue
		}
		if res.ts.After(scoresDate) {
			scoresDate = res.ts
		}

		d, err := s.processCategory(ctx, res.cat, round, res.ts)
		if err != nil {
			s.log.Error(ctx, "category processing failed",
				logger.String("category", res.cat.String()),
				logger.Error(err),
			)
			continue
		}
		if d != nil && res.cat.IsCampaign() && !d.IsEmpty() {
			aggregated = append(aggregated, *d)
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, scoresDate, err
	}

	// Persistence already happened per category; reporting is best effort.
	if len(aggregated) > 0 {
		if err := s.notifier.Report(ctx, aggregated); err != nil {
			s.log.Warn(ctx, "diff report failed", logger.Error(err))
		}
	}

	if scoresDate.IsZero() {
		if err := s.notifier.Alert(ctx, "every category fetch failed; no scores observed this round"); err != nil {
			s.log.Warn(ctx, "alert failed", logger.Error(err))
		}
		metrics.RecordRoundFailed()
		return 0, time.Time{}, ErrAllFetchesFailed
	}

	metrics.SetLastScoresTimestamp(scoresDate)
	s.log.Info(ctx, "round finished",
		logger.Int("round", int(round)),
		logger.String("scoresDate", scoresDate.Format(time.RFC3339)),
		logger.Int("reportedCategories", len(aggregated)),
	)
	return round.Next(), scoresDate, nil
}

// fetchTimestamp fetches one category's reported timestamp under the retry
// policy: stale data retries indefinitely with jittered delay and a bounded
// per-attempt timeout, while transport failures and missing categories give
// up for this round.
func (s *Service) fetchTimestamp(ctx context.Context, cat scores.Category, round scores.Round) (time.Time, error) {
	var reported time.Time
	err := s.fetchRetry.Do(ctx, func(actx context.Context) error {
		ts, _, err := s.src.FetchTimestamp(actx, cat, round)
		if err != nil {
			return retry.Permanent(err)
		}
		if age := s.now().Sub(ts); age > s.staleThreshold {
			metrics.RecordStaleRetry(cat.String())
			return &source.StaleError{Category: cat, ReportedAt: ts, Age: age}
		}
		reported = ts
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	return reported, nil
}

// processCategory handles one settled category: dedup check, payload
// download, processor dispatch, snapshot persistence. A nil diff with nil
// error means the timestamp was already processed.
func (s *Service) processCategory(ctx context.Context, cat scores.Category, round scores.Round, ts time.Time) (*jobs.CategoryDiff, error) {
	if s.seenCache.SeenAndRecord(ctx, cat, ts) {
		s.log.Debug(ctx, "timestamp already processed in this process, skipping",
			logger.String("category", cat.String()),
		)
		return nil, nil
	}

	exists, err := s.store.Exists(ctx, cat, ts)
	if err != nil {
		s.seenCache.Unrecord(ctx, cat, ts)
		return nil, fmt.Errorf("check snapshot existence: %w", err)
	}
	if exists {
		s.log.Debug(ctx, "snapshot already persisted, skipping",
			logger.String("category", cat.String()),
			logger.String("createdAt", ts.Format(time.RFC3339)),
		)
		return nil, nil
	}

	payload, err := s.src.FetchLeaderboard(ctx, cat, round)
	if err != nil {
		s.seenCache.Unrecord(ctx, cat, ts)
		return nil, fmt.Errorf("download leaderboard: %w", err)
	}

	shell := model.NewSnapshot(cat, ts, s.now())
	d, err := s.processorFor(cat).Process(ctx, payload, shell)
	if err != nil {
		s.seenCache.Unrecord(ctx, cat, ts)
		return nil, fmt.Errorf("process %s: %w", cat, err)
	}

	// Persist unconditionally, even when the diff came out empty, so the
	// timestamp is recorded as checked.
	if err := s.store.Save(ctx, shell); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// A racing invocation already recorded this timestamp.
			s.log.Debug(ctx, "snapshot conflict treated as already processed",
				logger.String("category", cat.String()),
			)
			return nil, nil
		}
		s.seenCache.Unrecord(ctx, cat, ts)
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	metrics.RecordSnapshotCreated(cat.String())

	return &d, nil
}

func (s *Service) processorFor(cat scores.Category) jobs.Processor {
	switch {
	case cat.IsCampaign():
		return s.campaign
	case cat == scores.Ladder:
		return s.ladder
	default:
		return s.general
	}
}
