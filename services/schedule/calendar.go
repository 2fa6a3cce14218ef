package schedule

import (
	"time"

	"serenity/models"
	"serenity/utils"
)

// MonthDays returns one CalendarDay per day of the given month, in order.
// The caller supplies the current time so "is today" stays deterministic
// under test clocks. Out-of-range months normalize the same way time.Date
// does (month 13 of 2024 is January 2025).
func MonthDays(year int, month time.Month, now time.Time) ([]models.CalendarDay, error) {
	if now.IsZero() {
		return nil, NewInvalidInputError("current time must be supplied")
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	today := utils.DateOf(now)

	days := make([]models.CalendarDay, 0, 31)
	for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
		date := utils.DateOf(d)
		days = append(days, models.CalendarDay{
			Date:    date,
			Weekday: d.Weekday(),
			IsToday: date == today,
		})
	}
	return days, nil
}
