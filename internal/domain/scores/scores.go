// Package scores contains the score category vocabulary shared across the
// tracker: the fixed category set, per-category ordering semantics, and the
// cyclic round identifier used by the official scoreboard.
package scores

// Category identifies one of the fixed leaderboard families tracked by the
// service. The set is closed; free-form strings never reach the processors.
type Category string

// The fixed category set. General and Ladder are global; the rest are
// campaigns that partition into per-map sub-leaderboards.
const (
	General  Category = "general"
	Ladder   Category = "ladder"
	Race     Category = "race"
	Puzzle   Category = "puzzle"
	Platform Category = "platform"
	Stunts   Category = "stunts"
	Nations  Category = "nations"
	Star     Category = "star"
)

// campaigns is the fixed campaign subset, in reporting order.
var campaigns = []Category{Race, Puzzle, Platform, Stunts, Nations, Star}

// Campaigns returns the fixed campaign categories. The returned slice is a
// copy; callers may reorder it freely.
func Campaigns() []Category {
	out := make([]Category, len(campaigns))
	copy(out, campaigns)
	return out
}

// All returns every tracked category: General, Ladder, then the campaigns.
func All() []Category {
	return append([]Category{General, Ladder}, campaigns...)
}

// IsCampaign reports whether c is one of the per-map campaign categories.
func (c Category) IsCampaign() bool {
	switch c {
	case Race, Puzzle, Platform, Stunts, Nations, Star:
		return true
	}
	return false
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	return c == General || c == Ladder || c.IsCampaign()
}

// String implements fmt.Stringer; the value doubles as the persistence key
// and the metrics label.
func (c Category) String() string { return string(c) }

// Mode is the score ordering semantics of one leaderboard.
type Mode int

const (
	// LowerIsBetter orders time-based scores: smaller value wins.
	LowerIsBetter Mode = iota
	// HigherIsBetter orders point-based scores: larger value wins.
	HigherIsBetter
)

// DefaultMode returns the ordering mode a category uses unless a per-map
// override says otherwise. Stunts and the global skill-point ranking count
// points; every other campaign races against the clock.
func DefaultMode(c Category) Mode {
	switch c {
	case Stunts, General, Ladder:
		return HigherIsBetter
	default:
		return LowerIsBetter
	}
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == HigherIsBetter {
		return "higher-is-better"
	}
	return "lower-is-better"
}

// roundCount is the number of publication slots the official scoreboard
// cycles through.
const roundCount = 6

// Round identifies one polling batch on the official scoreboard. Valid
// values are 1..6; the zero value means "discover the latest from the
// source".
type Round int

// Next returns the round following r in the 1..6 cycle.
func (r Round) Next() Round {
	return r%roundCount + 1
}

// Valid reports whether r is an assigned round identifier.
func (r Round) Valid() bool {
	return r >= 1 && r <= roundCount
}
