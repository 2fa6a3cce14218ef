package schedule

import (
	"context"
	"fmt"
	"time"

	bookingRepo "serenity/database/repository/booking"
	slotRepo "serenity/database/repository/slot"
	"serenity/models"
	"serenity/utils"

	"go.uber.org/zap"
)

// SchedulingEngine computes a therapist's offerable windows and validates
// booking candidates against confirmed sessions. All checks it performs are
// advisory; the stores re-assert uniqueness and overlap at write time.
type SchedulingEngine interface {
	// MonthCalendar returns the day descriptors for a month navigation.
	MonthCalendar(year int, month time.Month, now time.Time) ([]models.CalendarDay, error)
	// GetAvailability resolves every template window for one therapist and date.
	GetAvailability(ctx context.Context, therapistID, date string, now time.Time) ([]WindowState, error)
	// CheckConflict reports whether an active booking already occupies the
	// candidate window, with the colliding booking id for diagnostics.
	CheckConflict(ctx context.Context, therapistID, date string, w Window) (bool, string, error)
}

// DefaultSchedulingEngine is the production implementation.
type DefaultSchedulingEngine struct {
	Template WindowTemplate
	Slots    slotRepo.SlotRepository
	Bookings bookingRepo.BookingRepository
}

func (se *DefaultSchedulingEngine) MonthCalendar(year int, month time.Month, now time.Time) ([]models.CalendarDay, error) {
	return MonthDays(year, month, now)
}

func (se *DefaultSchedulingEngine) GetAvailability(ctx context.Context, therapistID, date string, now time.Time) ([]WindowState, error) {
	logger := utils.GetLogger()

	if therapistID == "" {
		return nil, NewInvalidInputError("therapist id must not be empty")
	}
	if _, err := utils.ParseDate(date); err != nil {
		return nil, NewInvalidInputError("bad date %q: %v", date, err)
	}

	slots, err := se.Slots.ListByDate(ctx, therapistID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}
	bookings, err := se.Bookings.ListActive(ctx, therapistID, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active bookings: %w", err)
	}

	states, err := ResolveAvailability(se.Template, date, now, slots, bookings)
	if err != nil {
		return nil, err
	}

	logger.Debug("resolved availability",
		zap.String("therapistID", therapistID),
		zap.String("date", date),
		zap.Int("windows", len(states)))
	return states, nil
}

func (se *DefaultSchedulingEngine) CheckConflict(ctx context.Context, therapistID, date string, w Window) (bool, string, error) {
	if !se.Template.Contains(w) {
		return false, "", NewInvalidInputError("window %s-%s is not a template window",
			utils.MinutesToClock(w.Start), utils.MinutesToClock(w.End))
	}
	if _, err := utils.ParseDate(date); err != nil {
		return false, "", NewInvalidInputError("bad date %q: %v", date, err)
	}

	booking, err := se.Bookings.FindOverlapping(ctx, therapistID, date, w.Start, w.End)
	if err != nil {
		return false, "", fmt.Errorf("conflict check failed: %w", err)
	}
	if booking == nil {
		return false, "", nil
	}
	return true, booking.ID, nil
}
