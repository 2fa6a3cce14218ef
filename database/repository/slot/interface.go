// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"errors"

	"serenity/database"
	"serenity/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// Store-level outcomes the engine reacts to.
var (
	// ErrSlotExists is returned by Create when a record for the same
	// (therapist, date, start, end) already exists.
	ErrSlotExists = errors.New("slot already exists for this window")
	// ErrSlotNotFound is returned when the referenced slot record is gone.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrSlotBooked is returned when a mutation is refused because the slot
	// carries a confirmed booking.
	ErrSlotBooked = errors.New("slot is booked")
)

// SlotRepository is the persisted slot store. Uniqueness of
// (therapistId, date, start, end) is enforced by a unique index, so the
// store is the authority on window ownership even under racing writers.
type SlotRepository interface {
	Create(ctx context.Context, slot models.Slot) (*models.Slot, error)
	UpdateEnd(ctx context.Context, therapistID, slotID string, newEnd int) (*models.Slot, error)
	Delete(ctx context.Context, therapistID, slotID string) error
	ListByDate(ctx context.Context, therapistID, date string) ([]models.Slot, error)
	GetByID(ctx context.Context, therapistID, slotID string) (*models.Slot, error)
	GetByWindow(ctx context.Context, therapistID, date string, start, end int) (*models.Slot, error)
	DeleteLapsedUnbooked(ctx context.Context, before string) (int64, error)
	EnsureIndexes() error
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	db := database.MongoClient.Database("serenity")
	return &mongoSlotRepo{
		coll: db.Collection("slots"),
	}
}
