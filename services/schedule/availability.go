package schedule

import (
	"serenity/models"
	"serenity/utils"

	"time"
)

// WindowStatus classifies a template window for a selected date.
type WindowStatus string

const (
	// StatusOpen: no record yet; selecting it creates one.
	StatusOpen WindowStatus = "open"
	// StatusHeld: an unbooked slot record exists; selecting it loads the record.
	StatusHeld WindowStatus = "held"
	// StatusBooked: the window carries a confirmed session; not selectable.
	StatusBooked WindowStatus = "booked"
	// StatusPast: the window's start has already elapsed today; not selectable.
	StatusPast WindowStatus = "past"
)

// WindowState is one resolved template window. Slot is non-nil when a
// persisted record backs the window; BookingID identifies the colliding
// booking when Status is booked.
type WindowState struct {
	Window    Window       `json:"window"`
	Status    WindowStatus `json:"status"`
	Slot      *models.Slot `json:"slot,omitempty"`
	BookingID string       `json:"bookingId,omitempty"`
}

// Selectable reports whether a user action on this window is meaningful.
func (ws WindowState) Selectable() bool {
	return ws.Status == StatusOpen || ws.Status == StatusHeld
}

// ResolveAvailability merges the window template with the persisted slots and
// active bookings for one therapist and date. It returns exactly one entry
// per template window, in template order. The precedence per window is
// booked > past > held > open; a window that is both past and booked reports
// booked, the more specific fact.
//
// The function is pure: all inputs, including the clock, are supplied by the
// caller, and it is recomputed in full on every call.
func ResolveAvailability(template WindowTemplate, date string, now time.Time, slots []models.Slot, bookings []models.Booking) ([]WindowState, error) {
	if err := template.Validate(); err != nil {
		return nil, NewInvalidInputError("bad window template: %v", err)
	}
	if now.IsZero() {
		return nil, NewInvalidInputError("current time must be supplied")
	}
	if _, err := utils.ParseDate(date); err != nil {
		return nil, NewInvalidInputError("bad date %q: %v", date, err)
	}

	isToday := date == utils.DateOf(now)
	nowMinute := utils.MinuteOfDay(now)

	states := make([]WindowState, 0, len(template))
	for _, w := range template {
		state := WindowState{Window: w, Status: StatusOpen}

		var slot *models.Slot
		for i := range slots {
			if slots[i].Date == date && slots[i].Start == w.Start && slots[i].End == w.End {
				slot = &slots[i]
				break
			}
		}
		if slot != nil {
			state.Slot = slot
		}

		bookingID, hasBooking := findOverlap(bookings, date, w)

		switch {
		case (slot != nil && slot.Booked) || hasBooking:
			state.Status = StatusBooked
			state.BookingID = bookingID
		case isToday && w.Start <= nowMinute:
			// A window lapses the moment its start is no longer strictly
			// ahead of the clock, even if it has not ended yet.
			state.Status = StatusPast
		case slot != nil:
			state.Status = StatusHeld
		}

		states = append(states, state)
	}
	return states, nil
}
