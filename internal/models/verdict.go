package models

// Verdict is the polling outcome the scheduler acts on
type Verdict int

const (
	// NoChanges means nothing was checked in since the baseline
	NoChanges Verdict = iota
	// Significant means some changes exist but fewer than the threshold
	Significant
	// BuildNow means the change count reached the threshold
	BuildNow
)

func (v Verdict) String() string {
	switch v {
	case NoChanges:
		return "NO_CHANGES"
	case Significant:
		return "SIGNIFICANT"
	case BuildNow:
		return "BUILD_NOW"
	default:
		return "UNKNOWN"
	}
}

// ShouldBuild reports whether the scheduler should start a build
func (v Verdict) ShouldBuild() bool {
	return v == BuildNow
}
