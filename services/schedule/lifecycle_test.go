package schedule

import (
	"context"
	"testing"
	"time"

	"serenity/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T) (*DefaultLifecycleController, *fakeSlotStore, *fakeBookingStore) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	slots := newFakeSlotStore()
	bookings := newFakeBookingStore(slots)
	engine := &DefaultSchedulingEngine{Template: testTemplate, Slots: slots, Bookings: bookings}
	controller := &DefaultLifecycleController{
		Engine: engine,
		Slots:  slots,
		Cache:  cache,
		TTL:    time.Minute,
	}
	return controller, slots, bookings
}

// morningOf returns a clock well before the first template window on date.
func morningOf() time.Time {
	return time.Date(2024, time.May, 1, 8, 0, 0, 0, time.Local)
}

func TestSelectWindowCreatesSlotForOpenWindow(t *testing.T) {
	controller, slots, _ := newTestController(t)
	ctx := context.Background()

	selection, err := controller.SelectWindow(ctx, "t1", "2024-05-02", Window{Start: 540, End: 660}, morningOf())
	require.NoError(t, err)

	assert.True(t, selection.NewlyCreated)
	assert.True(t, selection.Slot.Persisted())
	assert.False(t, selection.Slot.Booked)
	assert.Equal(t, 540, selection.Slot.Start)
	assert.Equal(t, 1, slots.count())
}

func TestSelectWindowTwiceYieldsOneSlot(t *testing.T) {
	controller, slots, _ := newTestController(t)
	ctx := context.Background()
	w := Window{Start: 540, End: 660}

	first, err := controller.SelectWindow(ctx, "t1", "2024-05-02", w, morningOf())
	require.NoError(t, err)

	second, err := controller.SelectWindow(ctx, "t1", "2024-05-02", w, morningOf())
	require.NoError(t, err)

	assert.Equal(t, 1, slots.count(), "no duplicate record for the same window")
	assert.Equal(t, first.Slot.ID, second.Slot.ID)
	assert.True(t, first.NewlyCreated)
	assert.False(t, second.NewlyCreated, "second selection loads the existing record")
}

func TestSelectWindowAdoptsRacingWinner(t *testing.T) {
	controller, slots, _ := newTestController(t)
	ctx := context.Background()
	w := Window{Start: 540, End: 660}

	// Another actor persists the same window between the availability read
	// and our create.
	slots.onCreate = func() {
		slots.insert(models.Slot{
			ID:          "winner",
			TherapistID: "t1",
			Date:        "2024-05-02",
			Start:       540,
			End:         660,
		})
	}

	selection, err := controller.SelectWindow(ctx, "t1", "2024-05-02", w, morningOf())
	require.NoError(t, err)

	assert.Equal(t, "winner", selection.Slot.ID)
	assert.False(t, selection.NewlyCreated)
	assert.Equal(t, 1, slots.count())
}

func TestSelectWindowRefusesBookedAndPastWindows(t *testing.T) {
	controller, slots, bookings := newTestController(t)
	ctx := context.Background()

	bookings.add(bookingAt("t1", "2024-05-02", 570, models.StatusBooked))
	_, err := controller.SelectWindow(ctx, "t1", "2024-05-02", Window{Start: 540, End: 660}, morningOf())
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeSlotConflict))

	// 14:30 on the selected date: the 13:00 window has lapsed.
	now := time.Date(2024, time.May, 2, 14, 30, 0, 0, time.Local)
	_, err = controller.SelectWindow(ctx, "t1", "2024-05-02", Window{Start: 780, End: 900}, now)
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeInvalidState))

	assert.Equal(t, 0, slots.count(), "refused selections must not create records")
}

func TestSelectWindowRejectsNonTemplateWindow(t *testing.T) {
	controller, _, _ := newTestController(t)

	_, err := controller.SelectWindow(context.Background(), "t1", "2024-05-02", Window{Start: 500, End: 620}, morningOf())
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeInvalidInput))
}

func TestEditSelectedUpdatesEndTime(t *testing.T) {
	controller, slots, _ := newTestController(t)
	ctx := context.Background()

	selection, err := controller.SelectWindow(ctx, "t1", "2024-05-02", Window{Start: 540, End: 660}, morningOf())
	require.NoError(t, err)

	updated, err := controller.EditSelected(ctx, selection.SessionID, 630)
	require.NoError(t, err)
	assert.Equal(t, 630, updated.Slot.End)

	stored, err := slots.GetByID(ctx, "t1", selection.Slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 630, stored.End)
}

func TestEditSelectedRejectsEphemeralSlot(t *testing.T) {
	controller, _, _ := newTestController(t)
	ctx := context.Background()

	// A candidate with no backing record must not be editable.
	selection := &models.Selection{
		SessionID:   "ephemeral-session",
		TherapistID: "t1",
		Date:        "2024-05-02",
		Slot:        models.Slot{TherapistID: "t1", Date: "2024-05-02", Start: 540, End: 660},
	}
	require.NoError(t, controller.saveSession(ctx, selection))

	_, err := controller.EditSelected(ctx, "ephemeral-session", 630)
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeInvalidState))
}

func TestEditSelectedRejectsBookedSlot(t *testing.T) {
	controller, slots, _ := newTestController(t)
	ctx := context.Background()

	booked := slots.insert(models.Slot{
		TherapistID: "t1", Date: "2024-05-02", Start: 540, End: 660, Booked: true,
	})
	selection := &models.Selection{
		SessionID:   "booked-session",
		TherapistID: "t1",
		Date:        "2024-05-02",
		Slot:        booked,
	}
	require.NoError(t, controller.saveSession(ctx, selection))

	_, err := controller.EditSelected(ctx, "booked-session", 630)
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeInvalidState))
}

func TestEditSelectedRejectsBadEndTime(t *testing.T) {
	controller, _, _ := newTestController(t)
	ctx := context.Background()

	selection, err := controller.SelectWindow(ctx, "t1", "2024-05-02", Window{Start: 540, End: 660}, morningOf())
	require.NoError(t, err)

	_, err = controller.EditSelected(ctx, selection.SessionID, 540)
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeInvalidInput))

	_, err = controller.EditSelected(ctx, selection.SessionID, 25*60)
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeInvalidInput))
}

func TestEditSelectedHandlesExternallyDeletedSlot(t *testing.T) {
	controller, slots, _ := newTestController(t)
	ctx := context.Background()

	selection, err := controller.SelectWindow(ctx, "t1", "2024-05-02", Window{Start: 540, End: 660}, morningOf())
	require.NoError(t, err)

	// Another actor deletes the record.
	require.NoError(t, slots.Delete(ctx, "t1", selection.Slot.ID))

	_, err = controller.EditSelected(ctx, selection.SessionID, 630)
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeNotFound))

	// The stale session was dropped.
	_, err = controller.EditSelected(ctx, selection.SessionID, 630)
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeNotFound))
}

func TestDeleteSelectedRemovesUnbookedSlot(t *testing.T) {
	controller, slots, _ := newTestController(t)
	ctx := context.Background()

	selection, err := controller.SelectWindow(ctx, "t1", "2024-05-02", Window{Start: 540, End: 660}, morningOf())
	require.NoError(t, err)

	require.NoError(t, controller.DeleteSelected(ctx, selection.SessionID))
	assert.Equal(t, 0, slots.count())

	// The selection is cleared with the slot.
	err = controller.DeleteSelected(ctx, selection.SessionID)
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeNotFound))
}

func TestDeleteSelectedRefusesBookedSlot(t *testing.T) {
	controller, slots, _ := newTestController(t)
	ctx := context.Background()

	booked := slots.insert(models.Slot{
		TherapistID: "t1", Date: "2024-05-02", Start: 540, End: 660, Booked: true,
	})
	selection := &models.Selection{
		SessionID:   "booked-session",
		TherapistID: "t1",
		Date:        "2024-05-02",
		Slot:        booked,
	}
	require.NoError(t, controller.saveSession(ctx, selection))

	err := controller.DeleteSelected(ctx, "booked-session")
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeCannotDeleteBookedSlot))
	assert.Equal(t, 1, slots.count(), "store must be left unchanged")
}

func TestGenerateCandidatesFullDecomposition(t *testing.T) {
	controller, slots, bookings := newTestController(t)
	ctx := context.Background()

	slots.insert(models.Slot{
		TherapistID: "t1", Date: "2024-05-02", Start: 540, End: 660,
	})
	bookings.add(bookingAt("t1", "2024-05-02", 700, models.StatusBooked))

	states, err := controller.GenerateCandidates(ctx, "t1", "2024-05-02", morningOf())
	require.NoError(t, err)
	require.Len(t, states, len(testTemplate))

	assert.Equal(t, StatusHeld, states[0].Status)
	assert.Equal(t, StatusBooked, states[1].Status)
	assert.Equal(t, StatusOpen, states[2].Status)
	assert.Equal(t, StatusOpen, states[3].Status)
}
