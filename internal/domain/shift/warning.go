package shift

import "time"

// WarningLevel classifies how long a shift has stayed open
type WarningLevel string

const (
	WarningLevelNone     WarningLevel = "NONE"
	WarningLevelWarning  WarningLevel = "WARNING"
	WarningLevelCritical WarningLevel = "CRITICAL"
)

// String returns the string representation of WarningLevel
func (l WarningLevel) String() string {
	return string(l)
}

// Thresholds are the open durations at which a shift escalates
type Thresholds struct {
	Warning  time.Duration
	Critical time.Duration
}

// DefaultThresholds returns 12h for Warning and 24h for Critical
func DefaultThresholds() Thresholds {
	return Thresholds{
		Warning:  12 * time.Hour,
		Critical: 24 * time.Hour,
	}
}

// Classify maps an open duration onto a warning level
func (t Thresholds) Classify(open time.Duration) WarningLevel {
	switch {
	case t.Critical > 0 && open >= t.Critical:
		return WarningLevelCritical
	case t.Warning > 0 && open >= t.Warning:
		return WarningLevelWarning
	default:
		return WarningLevelNone
	}
}

// WarningLevel classifies the shift at the given instant. Closed shifts are
// never in warning.
func (s *Shift) WarningLevel(now time.Time, t Thresholds) WarningLevel {
	if s.IsClosed {
		return WarningLevelNone
	}
	return t.Classify(s.OpenDuration(now))
}
