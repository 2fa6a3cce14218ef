package schedule

import (
	"context"
	"sync"
	"time"

	bookingRepo "serenity/database/repository/booking"
	slotRepo "serenity/database/repository/slot"
	"serenity/models"

	"github.com/google/uuid"
)

// fakeSlotStore is an in-memory SlotRepository enforcing the same window
// uniqueness the mongo index provides.
type fakeSlotStore struct {
	mu    sync.Mutex
	slots map[string]models.Slot

	// onCreate runs just before uniqueness is checked, letting tests inject
	// a racing writer.
	onCreate func()
	// createErr, when set, fails Create unconditionally.
	createErr error

	createCalls int
}

func newFakeSlotStore() *fakeSlotStore {
	return &fakeSlotStore{slots: make(map[string]models.Slot)}
}

func (f *fakeSlotStore) insert(slot models.Slot) models.Slot {
	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	f.slots[slot.ID] = slot
	return slot
}

func (f *fakeSlotStore) Create(ctx context.Context, slot models.Slot) (*models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.onCreate != nil {
		f.onCreate()
		f.onCreate = nil
	}
	for _, s := range f.slots {
		if s.TherapistID == slot.TherapistID && s.Date == slot.Date && s.Start == slot.Start && s.End == slot.End {
			return nil, slotRepo.ErrSlotExists
		}
	}
	slot.Booked = false
	slot.CreatedAt = time.Now()
	created := f.insert(slot)
	return &created, nil
}

func (f *fakeSlotStore) UpdateEnd(ctx context.Context, therapistID, slotID string, newEnd int) (*models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.slots[slotID]
	if !ok || slot.TherapistID != therapistID {
		return nil, slotRepo.ErrSlotNotFound
	}
	if slot.Booked {
		return nil, slotRepo.ErrSlotBooked
	}
	slot.End = newEnd
	f.slots[slotID] = slot
	return &slot, nil
}

func (f *fakeSlotStore) Delete(ctx context.Context, therapistID, slotID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.slots[slotID]
	if !ok || slot.TherapistID != therapistID {
		return slotRepo.ErrSlotNotFound
	}
	if slot.Booked {
		return slotRepo.ErrSlotBooked
	}
	delete(f.slots, slotID)
	return nil
}

func (f *fakeSlotStore) ListByDate(ctx context.Context, therapistID, date string) ([]models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Slot
	for _, s := range f.slots {
		if s.TherapistID == therapistID && s.Date == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSlotStore) GetByID(ctx context.Context, therapistID, slotID string) (*models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.slots[slotID]
	if !ok || slot.TherapistID != therapistID {
		return nil, slotRepo.ErrSlotNotFound
	}
	return &slot, nil
}

func (f *fakeSlotStore) GetByWindow(ctx context.Context, therapistID, date string, start, end int) (*models.Slot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, s := range f.slots {
		if s.TherapistID == therapistID && s.Date == date && s.Start == start && s.End == end {
			slot := s
			return &slot, nil
		}
	}
	return nil, slotRepo.ErrSlotNotFound
}

func (f *fakeSlotStore) DeleteLapsedUnbooked(ctx context.Context, before string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var deleted int64
	for id, s := range f.slots {
		if s.Date < before && !s.Booked {
			delete(f.slots, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeSlotStore) EnsureIndexes() error { return nil }

func (f *fakeSlotStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.slots)
}

// fakeBookingStore is an in-memory BookingRepository whose Commit mirrors the
// transactional mongo implementation: overlap re-check, insert, mark booked.
type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	slots    *fakeSlotStore

	// onCommit runs at the start of Commit, letting tests inject a racing
	// booking between the advisory check and the transaction.
	onCommit func()
	// releaseErr, when set, fails the slot-release write inside Cancel.
	releaseErr error
}

func newFakeBookingStore(slots *fakeSlotStore) *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[string]models.Booking), slots: slots}
}

func (f *fakeBookingStore) add(b models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	f.bookings[b.ID] = b
}

func (f *fakeBookingStore) ListActive(ctx context.Context, therapistID, fromDate, toDate string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Booking
	for _, b := range f.bookings {
		if b.TherapistID == therapistID && b.Active() && b.Date >= fromDate && b.Date <= toDate {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) FindOverlapping(ctx context.Context, therapistID, date string, start, end int) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findOverlappingLocked(therapistID, date, start, end), nil
}

func (f *fakeBookingStore) findOverlappingLocked(therapistID, date string, start, end int) *models.Booking {
	for _, b := range f.bookings {
		if b.TherapistID == therapistID && b.Active() && b.Date == date && b.Minute >= start && b.Minute < end {
			booking := b
			return &booking
		}
	}
	return nil
}

func (f *fakeBookingStore) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

func (f *fakeBookingStore) Commit(ctx context.Context, booking *models.Booking, slotID string, slotStart, slotEnd int) error {
	if f.onCommit != nil {
		f.onCommit()
		f.onCommit = nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.findOverlappingLocked(booking.TherapistID, booking.Date, slotStart, slotEnd) != nil {
		return bookingRepo.ErrBookingConflict
	}

	f.slots.mu.Lock()
	slot, ok := f.slots.slots[slotID]
	if !ok || slot.TherapistID != booking.TherapistID || slot.Booked {
		f.slots.mu.Unlock()
		return bookingRepo.ErrBookingConflict
	}
	slot.Booked = true
	f.slots.slots[slotID] = slot
	f.slots.mu.Unlock()

	f.bookings[booking.ID] = *booking
	return nil
}

// Cancel mirrors the transactional implementation: the status flip and the
// slot release apply together or not at all.
func (f *fakeBookingStore) Cancel(ctx context.Context, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[bookingID]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	if f.releaseErr != nil {
		return f.releaseErr
	}
	b.Status = models.StatusCancelled
	f.bookings[bookingID] = b

	// Release the slot the booking occupied.
	f.slots.mu.Lock()
	defer f.slots.mu.Unlock()
	for id, s := range f.slots.slots {
		if s.TherapistID == b.TherapistID && s.Date == b.Date && s.Start <= b.Minute && b.Minute < s.End && s.Booked {
			s.Booked = false
			f.slots.slots[id] = s
		}
	}
	return nil
}

func (f *fakeBookingStore) Complete(ctx context.Context, bookingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.bookings[bookingID]
	if !ok {
		return bookingRepo.ErrBookingNotFound
	}
	b.Status = models.StatusCompleted
	f.bookings[bookingID] = b
	return nil
}

func (f *fakeBookingStore) EnsureIndexes() error { return nil }
