package schedule

import (
	"context"
	"encoding/json"
	"time"

	slotRepo "serenity/database/repository/slot"
	"serenity/models"
	"serenity/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifecycleController walks a slot through select / edit / delete. The
// current selection is cached as a JSON session so it survives requests;
// navigating to a different date abandons the session.
type LifecycleController interface {
	SelectWindow(ctx context.Context, therapistID, date string, w Window, now time.Time) (*models.Selection, error)
	EditSelected(ctx context.Context, sessionID string, newEnd int) (*models.Selection, error)
	DeleteSelected(ctx context.Context, sessionID string) error
	GenerateCandidates(ctx context.Context, therapistID, date string, now time.Time) ([]WindowState, error)
	ResetSelection(ctx context.Context, sessionID string) error
}

// DefaultLifecycleController implements LifecycleController.
type DefaultLifecycleController struct {
	Engine SchedulingEngine
	Slots  slotRepo.SlotRepository
	Cache  *redis.Client
	TTL    time.Duration
}

func (c *DefaultLifecycleController) sessionTTL() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return utils.SelectionCacheTTL
}

// SelectWindow resolves the window's current state and either loads the
// existing record (held) or creates one (open). A racing creation by another
// actor is not an error: the existing record is adopted as the selection.
func (c *DefaultLifecycleController) SelectWindow(ctx context.Context, therapistID, date string, w Window, now time.Time) (*models.Selection, error) {
	logger := utils.GetLogger()

	states, err := c.Engine.GetAvailability(ctx, therapistID, date, now)
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

	selection := &models.Selection{
		SessionID:   uuid.New().String(),
		TherapistID: therapistID,
		Date:        date,
	}

	switch state.Status {
	case StatusHeld:
		// Load the existing record unchanged; no store call.
		selection.Slot = *state.Slot

	case StatusOpen:
		created, err := c.Slots.Create(ctx, models.Slot{
			TherapistID: therapistID,
			Date:        date,
			Start:       w.Start,
			End:         w.End,
		})
		if err == slotRepo.ErrSlotExists {
			// Another actor won the race; adopt their record.
			existing, lookupErr := c.Slots.GetByWindow(ctx, therapistID, date, w.Start, w.End)
			if lookupErr != nil {
				return nil, NewScheduleError(CodeSlotConflict, "window was just taken; refresh availability")
			}
			if existing.Booked {
				return nil, NewScheduleError(CodeSlotConflict, "window was just booked; refresh availability")
			}
			logger.Info("adopted racing slot record",
				zap.String("therapistID", therapistID),
				zap.String("slotID", existing.ID))
			selection.Slot = *existing
		} else if err != nil {
			return nil, NewScheduleError(CodeSlotCreationFailed, err.Error())
		} else {
			selection.Slot = *created
			selection.NewlyCreated = true
		}

	case StatusBooked:
		return nil, NewScheduleError(CodeSlotConflict, "window already carries a confirmed session")

	case StatusPast:
		return nil, NewScheduleError(CodeInvalidState, "window has already lapsed today")
	}

	if err := c.saveSession(ctx, selection); err != nil {
		return nil, err
	}
	return selection, nil
}

// EditSelected changes the end time of the currently selected slot. Only a
// persisted, unbooked slot may be edited.
func (c *DefaultLifecycleController) EditSelected(ctx context.Context, sessionID string, newEnd int) (*models.Selection, error) {
	selection, err := c.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !selection.Slot.Persisted() {
		return nil, NewScheduleError(CodeInvalidState, "cannot edit a slot that has no record")
	}
	if selection.Slot.Booked {
		return nil, NewScheduleError(CodeInvalidState, "cannot edit a booked slot")
	}
	if newEnd <= selection.Slot.Start || newEnd > 24*60 {
		return nil, NewInvalidInputError("new end %s must fall after the slot start %s",
			utils.MinutesToClock(newEnd), utils.MinutesToClock(selection.Slot.Start))
	}

	updated, err := c.Slots.UpdateEnd(ctx, selection.TherapistID, selection.Slot.ID, newEnd)
	switch err {
	case nil:
	case slotRepo.ErrSlotNotFound:
		// Deleted by another actor; drop the stale session so the caller
		// re-fetches availability.
		_ = c.ResetSelection(ctx, sessionID)
		return nil, NewScheduleError(CodeNotFound, "selected slot no longer exists; refresh availability")
	case slotRepo.ErrSlotBooked:
		return nil, NewScheduleError(CodeInvalidState, "slot was booked while selected; refresh availability")
	default:
		return nil, NewScheduleError(CodeSlotCreationFailed, err.Error())
	}

	selection.Slot = *updated
	selection.NewlyCreated = false
	if err := c.saveSession(ctx, selection); err != nil {
		return nil, err
	}
	return selection, nil
}

// DeleteSelected removes the currently selected slot record and clears the
// selection. Booked slots are refused here regardless of what the store
// would allow; deleting one would orphan a confirmed session.
func (c *DefaultLifecycleController) DeleteSelected(ctx context.Context, sessionID string) error {
	selection, err := c.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if selection.Slot.Booked {
		return NewScheduleError(CodeCannotDeleteBookedSlot, "slot carries a confirmed session")
	}
	if !selection.Slot.Persisted() {
		return NewScheduleError(CodeInvalidState, "cannot delete a slot that has no record")
	}

	err = c.Slots.Delete(ctx, selection.TherapistID, selection.Slot.ID)
	switch err {
	case nil:
	case slotRepo.ErrSlotNotFound:
		_ = c.ResetSelection(ctx, sessionID)
		return NewScheduleError(CodeNotFound, "selected slot no longer exists; refresh availability")
	case slotRepo.ErrSlotBooked:
		return NewScheduleError(CodeCannotDeleteBookedSlot, "slot was booked while selected")
	default:
		return NewScheduleError(CodeSlotCreationFailed, err.Error())
	}

	return c.ResetSelection(ctx, sessionID)
}

// GenerateCandidates recomputes the full window decomposition for a date.
// There is no cross-call cache; every call reflects fresh store reads.
func (c *DefaultLifecycleController) GenerateCandidates(ctx context.Context, therapistID, date string, now time.Time) ([]WindowState, error) {
	return c.Engine.GetAvailability(ctx, therapistID, date, now)
}

// ResetSelection abandons the current selection, e.g. on date navigation.
func (c *DefaultLifecycleController) ResetSelection(ctx context.Context, sessionID string) error {
	if err := c.Cache.Del(ctx, utils.SelectionCachePrefix+sessionID).Err(); err != nil {
		return NewScheduleError(CodeSlotCreationFailed, "failed to clear selection: "+err.Error())
	}
	return nil
}

func (c *DefaultLifecycleController) saveSession(ctx context.Context, selection *models.Selection) error {
	data, err := json.Marshal(selection)
	if err != nil {
		return NewScheduleError(CodeSlotCreationFailed, "failed to marshal selection: "+err.Error())
	}
	key := utils.SelectionCachePrefix + selection.SessionID
	if err := c.Cache.Set(ctx, key, data, c.sessionTTL()).Err(); err != nil {
		return NewScheduleError(CodeSlotCreationFailed, "failed to cache selection: "+err.Error())
	}
	return nil
}

func (c *DefaultLifecycleController) loadSession(ctx context.Context, sessionID string) (*models.Selection, error) {
	data, err := c.Cache.Get(ctx, utils.SelectionCachePrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, NewScheduleError(CodeNotFound, "selection session not found or expired")
	}
	if err != nil {
		return nil, NewScheduleError(CodeSlotCreationFailed, "failed to load selection: "+err.Error())
	}
	var selection models.Selection
	if err := json.Unmarshal([]byte(data), &selection); err != nil {
		return nil, NewScheduleError(CodeSlotCreationFailed, "failed to parse selection: "+err.Error())
	}
	return &selection, nil
}
