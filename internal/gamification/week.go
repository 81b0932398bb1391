package gamification

import "time"

const periodLayout = "2006-01-02"

// WeekStart returns Monday 00:00 of the week containing t, in loc.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
}

// PreviousWeekStart returns the Monday of the last fully elapsed week.
func PreviousWeekStart(t time.Time, loc *time.Location) time.Time {
	ws := WeekStart(t, loc)
	y, m, d := ws.Date()
	return time.Date(y, m, d-7, 0, 0, 0, 0, loc)
}

// PeriodKey formats a week start as the DATE stored in last_evaluated_week.
func PeriodKey(weekStart time.Time) string {
	return weekStart.Format(periodLayout)
}
