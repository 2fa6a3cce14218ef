package schedule

import (
	"context"
	"time"

	bookingRepo "serenity/database/repository/booking"
	slotRepo "serenity/database/repository/slot"
	"serenity/models"
	"serenity/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService owns the commit side of a reservation: the only flow that
// turns a held window into a booked one.
type BookingService interface {
	ConfirmBooking(ctx context.Context, therapistID, patientID, date string, w Window, now time.Time) (*models.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) error
	CompleteBooking(ctx context.Context, bookingID string) error
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Engine   SchedulingEngine
	Slots    slotRepo.SlotRepository
	Bookings bookingRepo.BookingRepository
}

// ConfirmBooking validates the candidate window, re-checks it for conflicts,
// and commits the reservation transactionally. Displayed availability is
// never trusted: losing the race at commit time yields a conflict the caller
// answers with an availability refresh.
func (s *DefaultBookingService) ConfirmBooking(ctx context.Context, therapistID, patientID, date string, w Window, now time.Time) (*models.Booking, error) {
	logger := utils.GetLogger()

	if patientID == "" || therapistID == "" {
		return nil, NewInvalidInputError("therapist and patient ids must not be empty")
	}
	day, err := utils.ParseDate(date)
	if err != nil {
		return nil, NewInvalidInputError("bad date %q: %v", date, err)
	}
	if now.IsZero() {
		return nil, NewInvalidInputError("current time must be supplied")
	}

	// Advisory pre-check; the transaction re-asserts it authoritatively.
	states, err := s.Engine.GetAvailability(ctx, therapistID, date, now)
	if err != nil {
		return nil, err
	}
	var state *WindowState
	for i := range states {
		if states[i].Window == w {
			state = &states[i]
			break
		}
	}
	if state == nil {
		return nil, NewInvalidInputError("window %s-%s is not a template window",
			utils.MinutesToClock(w.Start), utils.MinutesToClock(w.End))
	}
	switch state.Status {
	case StatusBooked:
		return nil, NewScheduleError(CodeSlotConflict, "window already carries a confirmed session")
	case StatusPast:
		return nil, NewScheduleError(CodeInvalidState, "window has already lapsed today")
	}

	slot, err := s.ensureSlot(ctx, state, therapistID, date, w)
	if err != nil {
		return nil, err
	}

	startsAt := day.Add(time.Duration(w.Start) * time.Minute)
	booking := &models.Booking{
		ID:          uuid.New().String(),
		TherapistID: therapistID,
		PatientID:   patientID,
		StartsAt:    startsAt,
		Date:        date,
		Minute:      w.Start,
		Status:      models.StatusBooked,
		CreatedAt:   time.Now(),
	}

	if err := s.Bookings.Commit(ctx, booking, slot.ID, w.Start, w.End); err != nil {
		if err == bookingRepo.ErrBookingConflict {
			return nil, NewScheduleError(CodeSlotConflict, "window was just taken; refresh availability")
		}
		return nil, NewScheduleError(CodeSlotCreationFailed, err.Error())
	}

	logger.Info("booking confirmed",
		zap.String("bookingID", booking.ID),
		zap.String("therapistID", therapistID),
		zap.String("date", date),
		zap.String("window", utils.MinutesToClock(w.Start)+"-"+utils.MinutesToClock(w.End)))
	return booking, nil
}

// ensureSlot returns the persisted slot backing the window, creating one for
// a patient booking an open window. Creation races resolve by adopting the
// winner's record.
func (s *DefaultBookingService) ensureSlot(ctx context.Context, state *WindowState, therapistID, date string, w Window) (*models.Slot, error) {
	if state.Slot != nil {
		return state.Slot, nil
	}

	created, err := s.Slots.Create(ctx, models.Slot{
		TherapistID: therapistID,
		Date:        date,
		Start:       w.Start,
		End:         w.End,
	})
	if err == slotRepo.ErrSlotExists {
		existing, lookupErr := s.Slots.GetByWindow(ctx, therapistID, date, w.Start, w.End)
		if lookupErr != nil {
			return nil, NewScheduleError(CodeSlotConflict, "window was just taken; refresh availability")
		}
		if existing.Booked {
			return nil, NewScheduleError(CodeSlotConflict, "window was just booked; refresh availability")
		}
		return existing, nil
	}
	if err != nil {
		return nil, NewScheduleError(CodeSlotCreationFailed, err.Error())
	}
	return created, nil
}

func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID string) error {
	err := s.Bookings.Cancel(ctx, bookingID)
	if err == bookingRepo.ErrBookingNotFound {
		return NewScheduleError(CodeNotFound, "booking not found")
	}
	return err
}

func (s *DefaultBookingService) CompleteBooking(ctx context.Context, bookingID string) error {
	err := s.Bookings.Complete(ctx, bookingID)
	if err == bookingRepo.ErrBookingNotFound {
		return NewScheduleError(CodeNotFound, "booking not found")
	}
	return err
}
