package scores

// Better reports whether score a beats score b under mode m.
func (m Mode) Better(a, b int) bool {
	if m == HigherIsBetter {
		return a > b
	}
	return a < b
}

// Worse reports whether score a loses to score b under mode m.
func (m Mode) Worse(a, b int) bool {
	if m == HigherIsBetter {
		return a < b
	}
	return a > b
}

// Standing is the comparable part of one leaderboard line: position as
// reported plus the raw score.
type Standing struct {
	Rank  int
	Score int
}

// Improved reports whether updated is an improvement over old: a strictly
// better rank, or a strictly better score under mode m. The rank-or-score
// check absorbs score ties whose ranks differ only by insertion order.
// Equal rank and equal score is neither an improvement nor a regression.
func Improved(m Mode, old, updated Standing) bool {
	return updated.Rank < old.Rank || m.Better(updated.Score, old.Score)
}

// Worsened reports whether updated is a regression from old, symmetric to
// Improved.
func Worsened(m Mode, old, updated Standing) bool {
	return updated.Rank > old.Rank || m.Worse(updated.Score, old.Score)
}
