// Package notify publishes round outcomes to a chat webhook. Everything
// here is best effort: reporting failures are logged by callers and never
// block snapshot persistence, which always happens first.
package notify

import (
	"context"

	"github.com/BigBang1112/tmwrr-sub000/internal/jobs"
)

// Notifier is the reporting side channel of the tracker.
type Notifier interface {
	// Report publishes the aggregated campaign diffs of one round.
	Report(ctx context.Context, diffs []jobs.CategoryDiff) error

	// Alert raises an operational alert, e.g. when every fetch of a round
	// failed.
	Alert(ctx context.Context, message string) error
}

// Nop is the Notifier used when no webhook is configured.
type Nop struct{}

// Report does nothing.
func (Nop) Report(context.Context, []jobs.CategoryDiff) error { return nil }

// Alert does nothing.
func (Nop) Alert(context.Context, string) error { return nil }
