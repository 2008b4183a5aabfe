package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
	"github.com/BigBang1112/tmwrr-sub000/pkg/logger"
)

// Runner is the round-processing collaborator the loop drives, satisfied by
// the orchestrator service.
type Runner interface {
	RunRound(ctx context.Context, round scores.Round) (scores.Round, time.Time, error)
}

// Loop chains polling rounds: run one, ask the planner for the next
// instant, schedule a one-time job there, repeat until the context ends.
type Loop struct {
	sched   gocron.Scheduler
	planner *Planner
	runner  Runner
	round   scores.Round
	log     logger.Logger
}

// LoopOption applies a configuration option to the Loop.
type LoopOption func(*Loop)

// WithInitialRound sets the round identifier of the first run; zero lets
// the orchestrator discover the latest from the source.
func WithInitialRound(r scores.Round) LoopOption {
	return func(l *Loop) {
		l.round = r
	}
}

// WithLoopLogger sets a custom logger.
func WithLoopLogger(lg logger.Logger) LoopOption {
	return func(l *Loop) {
		if lg != nil {
			l.log = lg
		}
	}
}

// NewLoop creates a Loop over the runner and planner.
func NewLoop(runner Runner, planner *Planner, opts ...LoopOption) (*Loop, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	l := &Loop{
		sched:   sched,
		planner: planner,
		runner:  runner,
		log:     logger.Get().Named("schedule"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Start runs the first round immediately and keeps chaining rounds until
// ctx is cancelled.
func (l *Loop) Start(ctx context.Context) error {
	if _, err := l.sched.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartImmediately()),
		gocron.NewTask(l.runOnce, ctx),
	); err != nil {
		return fmt.Errorf("schedule first round: %w", err)
	}
	l.sched.Start()
	return nil
}

// Stop shuts the scheduler down, waiting for a running round to finish.
func (l *Loop) Stop() error {
	return l.sched.Shutdown()
}

// runOnce executes one round and schedules the next one.
func (l *Loop) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	next, scoresDate, err := l.runner.RunRound(ctx, l.round)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		// Total failure: rediscover the round next time and retry after
		// the short fallback delay.
		l.log.Error(ctx, "round failed", logger.Error(err))
		l.round = 0
		scoresDate = time.Time{}
	} else {
		l.round = next
	}

	at := l.planner.NextCheckTime(scoresDate)
	start := gocron.OneTimeJobStartDateTime(at)
	if !at.After(time.Now()) {
		// An old reported timestamp, up to the stale threshold behind,
		// can put the computed slot in the past. gocron rejects past
		// start times, which would end the chain for good.
		at = time.Now()
		start = gocron.OneTimeJobStartImmediately()
	}
	l.log.Info(ctx, "next round scheduled",
		logger.String("at", at.Format(time.RFC3339)),
		logger.Int("round", int(l.round)),
	)
	if _, err := l.sched.NewJob(
		gocron.OneTimeJob(start),
		gocron.NewTask(l.runOnce, ctx),
	); err != nil {
		l.log.Error(ctx, "failed to schedule next round", logger.Error(err))
	}
}
