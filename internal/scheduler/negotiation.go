package scheduler

// NeedsHoursPrompt reports whether the caller should negotiate a daily cap
// before allocating: the work needs more than half the drop day, or some
// hours were already logged against the task.
func NeedsHoursPrompt(remainingMinutes, dayMaxMinutes int, workedHours float64) bool {
	return remainingMinutes*2 > dayMaxMinutes || workedHours > 0
}

// ClampPerDayCap bounds a requested daily cap by the day's real maximum.
// A non-positive request means "use the maximum".
func ClampPerDayCap(requestedMinutes, dayMaxMinutes int) int {
	if requestedMinutes <= 0 || requestedMinutes > dayMaxMinutes {
		return dayMaxMinutes
	}
	return requestedMinutes
}
