package schedule

import "serenity/models"

// findOverlap returns the id of the first active booking whose start minute
// falls in [w.Start, w.End) on the given date. Bookings start inside their
// window, so a start-minute containment check is the whole overlap test.
func findOverlap(bookings []models.Booking, date string, w Window) (string, bool) {
	for _, b := range bookings {
		if !b.Active() || b.Date != date {
			continue
		}
		if b.Minute >= w.Start && b.Minute < w.End {
			return b.ID, true
		}
	}
	return "", false
}
