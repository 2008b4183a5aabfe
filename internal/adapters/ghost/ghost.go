// Package ghost downloads replay evidence for leaderboard records. The
// whole concern is best effort: a failed or missing download is logged by
// the caller and never fails the round.
package ghost

import (
	"context"

	"github.com/BigBang1112/tmwrr-sub000/internal/domain/model"
)

// Downloader fetches replay evidence for a (map, player, score) triple.
type Downloader interface {
	// Download returns a reference to the stored evidence, or (nil, nil)
	// when the scoreboard has none for the expected score. Errors signal
	// transport failures only; callers treat them as "no evidence".
	Download(ctx context.Context, mapUID, login string, score int) (*model.GhostRef, error)
}
