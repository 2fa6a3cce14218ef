package bookingRepo

import (
	"context"
	"errors"

	"serenity/database"
	"serenity/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrBookingConflict is returned by Commit when an active booking already
	// occupies the candidate window.
	ErrBookingConflict = errors.New("an active booking already occupies this window")
	// ErrBookingNotFound is returned when the referenced booking is gone.
	ErrBookingNotFound = errors.New("booking not found")
)

// BookingRepository is the confirmed-reservation store. The engine reads it
// for conflict detection; Commit is the single write path that turns a slot
// into a booked slot.
type BookingRepository interface {
	ListActive(ctx context.Context, therapistID, fromDate, toDate string) ([]models.Booking, error)
	FindOverlapping(ctx context.Context, therapistID, date string, start, end int) (*models.Booking, error)
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	// Commit inserts the booking and marks the slot booked in one transaction,
	// re-checking for an overlapping active booking inside the transaction.
	Commit(ctx context.Context, booking *models.Booking, slotID string, slotStart, slotEnd int) error
	Cancel(ctx context.Context, bookingID string) error
	Complete(ctx context.Context, bookingID string) error
	EnsureIndexes() error
}

type mongoBookingRepo struct {
	bookingColl *mongo.Collection
	slotColl    *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database("serenity")
	return &mongoBookingRepo{
		bookingColl: db.Collection("bookings"),
		slotColl:    db.Collection("slots"),
	}
}
