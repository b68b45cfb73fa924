package mastery

// Band is a coarse display label for a score.
type Band string

const (
	BandNew        Band = "new"
	BandLearning   Band = "learning"
	BandProficient Band = "proficient"
	BandMastered   Band = "mastered"
)

// BandFor maps a score to its band. The cut points line up with the
// curriculum difficulty thresholds.
func BandFor(score int) Band {
	switch {
	case score <= 0:
		return BandNew
	case score < 50:
		return BandLearning
	case score < 80:
		return BandProficient
	default:
		return BandMastered
	}
}

// Icon returns a single-glyph marker for the band.
func (b Band) Icon() string {
	switch b {
	case BandLearning:
		return "◐"
	case BandProficient:
		return "◕"
	case BandMastered:
		return "●"
	default:
		return "○"
	}
}
