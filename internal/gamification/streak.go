package gamification

// NextStreak applies one evaluation period to a streak pair.
// The result always satisfies current <= longest.
func NextStreak(current, longest int, won bool) (int, int) {
	if won {
		current++
	} else {
		current = 0
	}
	if current > longest {
		longest = current
	}
	return current, longest
}

// AlreadyEvaluated reports whether period has been applied given the stored
// last evaluated week. Both are YYYY-MM-DD keys, so string order is date order.
func AlreadyEvaluated(lastEvaluated, period string) bool {
	return lastEvaluated != "" && lastEvaluated >= period
}
