package source

import (
	"errors"
	"fmt"
	"time"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/scores"
)

// Sentinel kinds for scoreboard errors.
var (
	// ErrNotFound means the category has no data at the requested round.
	ErrNotFound = errors.New("category not found on scoreboard")
)

// StaleError reports that the scoreboard handed back data older than the
// acceptable threshold. It is transient: the fetch should be retried until
// fresh data appears or the round is cancelled.
type StaleError struct {
	Category   scores.Category
	ReportedAt time.Time
	Age        time.Duration
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("stale scoreboard data for %s: reported %s (%s old)",
		e.Category, e.ReportedAt.Format(time.RFC3339), e.Age.Round(time.Minute))
}

// IsStale reports whether err is (or wraps) a StaleError.
func IsStale(err error) bool {
	var se *StaleError
	return errors.As(err, &se)
}
