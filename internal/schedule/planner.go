// Package schedule decides when the next polling round runs and drives the
// long-lived round loop.
package schedule

import (
	"time"
)

// Default planner configuration constants.
const (
	defaultCheckHour     = 17
	defaultFallbackDelay = 4 * time.Hour
)

// Planner computes the wall-clock instant of the next round from the last
// observed scoreboard timestamp.
type Planner struct {
	checkHour     int
	checkMinute   int
	loc           *time.Location
	fallbackDelay time.Duration
	now           func() time.Time
}

// PlannerOption applies a configuration option to the Planner.
type PlannerOption func(*Planner)

// WithCheckTime sets the daily check hour and minute, expressed in the
// scoreboard's clock.
func WithCheckTime(hour, minute int) PlannerOption {
	return func(p *Planner) {
		if hour >= 0 && hour < 24 {
			p.checkHour = hour
		}
		if minute >= 0 && minute < 60 {
			p.checkMinute = minute
		}
	}
}

// WithLocation sets the timezone whose seasonal UTC offset is corrected
// for.
func WithLocation(loc *time.Location) PlannerOption {
	return func(p *Planner) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithFallbackDelay sets the short retry delay used after a round that
// observed no timestamp at all, so a transient outage does not cost a whole
// day.
func WithFallbackDelay(d time.Duration) PlannerOption {
	return func(p *Planner) {
		if d > 0 {
			p.fallbackDelay = d
		}
	}
}

// WithPlannerClock substitutes the wall clock, for tests.
func WithPlannerClock(now func() time.Time) PlannerOption {
	return func(p *Planner) {
		if now != nil {
			p.now = now
		}
	}
}

// NewPlanner creates a Planner with defaults applied.
func NewPlanner(opts ...PlannerOption) *Planner {
	p := &Planner{
		checkHour:     defaultCheckHour,
		loc:           time.UTC,
		fallbackDelay: defaultFallbackDelay,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NextCheckTime returns the instant the next round should run: one day
// after the last observed timestamp, aligned to the configured check hour
// with the UTC offset active at that date subtracted: the scoreboard's
// clock and the deployment's clock may disagree by an hour or two depending
// on daylight saving. A zero last timestamp (total fetch failure) yields
// now plus the short fallback delay instead of losing a whole day.
//
// The result is always strictly later than last.
func (p *Planner) NextCheckTime(last time.Time) time.Time {
	if last.IsZero() {
		return p.now().Add(p.fallbackDelay)
	}

	day := last.AddDate(0, 0, 1).In(p.loc)
	_, offset := day.Zone()
	next := time.Date(day.Year(), day.Month(), day.Day(),
		p.checkHour-offset/3600, p.checkMinute, 0, 0, p.loc)
	if !next.After(last) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
