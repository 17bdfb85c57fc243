package scene

// DefaultPlannedSeconds is the display duration assumed for scenes without a
// planned duration of their own.
const DefaultPlannedSeconds = 5.0

// PlannedDuration returns the scene's planned display duration in seconds,
// applying the fallback when unset or invalid.
func PlannedDuration(s Scene, fallback float64) float64 {
	if fallback <= 0 {
		fallback = DefaultPlannedSeconds
	}
	if s.PlannedSeconds > 0 {
		return s.PlannedSeconds
	}
	return fallback
}

// TotalPlannedSeconds sums the planned durations of the given scenes using the
// fallback rule. The result is positive whenever at least one scene exists.
func TotalPlannedSeconds(scenes []Scene, fallback float64) float64 {
	total := 0.0
	for _, s := range scenes {
		total += PlannedDuration(s, fallback)
	}
	return total
}
