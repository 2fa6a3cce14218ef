package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"serenity/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListActive fetches bookings with status Booked for a therapist over an
// inclusive date range.
func (r *mongoBookingRepo) ListActive(ctx context.Context, therapistID, fromDate, toDate string) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"therapistId": therapistID,
		"status":      models.StatusBooked,
		"date":        bson.M{"$gte": fromDate, "$lte": toDate},
	}
	cursor, err := r.bookingColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}

// FindOverlapping returns the active booking whose start minute lies in
// [start, end) on the given date, or nil when the window is free.
func (r *mongoBookingRepo) FindOverlapping(ctx context.Context, therapistID, date string, start, end int) (*models.Booking, error) {
	filter := overlapFilter(therapistID, date, start, end)

	var booking models.Booking
	err := r.bookingColl.FindOne(ctx, filter, options.FindOne().SetSort(bson.D{{Key: "minute", Value: 1}})).Decode(&booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("overlap query failed: %w", err)
	}
	return &booking, nil
}

func overlapFilter(therapistID, date string, start, end int) bson.M {
	return bson.M{
		"therapistId": therapistID,
		"date":        date,
		"status":      models.StatusBooked,
		"minute":      bson.M{"$gte": start, "$lt": end},
	}
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.bookingColl.FindOne(ctx, bson.M{"id": bookingID}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("find error: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepo) setStatus(ctx context.Context, bookingID, from, to string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": bookingID, "status": from}
	update := bson.M{"$set": bson.M{"status": to}}
	res, err := r.bookingColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// Cancel marks the booking Cancelled and releases the slot it occupied.
// Both writes ride one transaction so a failure between them can never
// strand a slot booked with no active booking behind it.
func (r *mongoBookingRepo) Cancel(ctx context.Context, bookingID string) error {
	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		var booking models.Booking
		if err := r.bookingColl.FindOne(sc, bson.M{"id": bookingID}).Decode(&booking); err != nil {
			if err == mongo.ErrNoDocuments {
				return ErrBookingNotFound
			}
			return fmt.Errorf("find error: %w", err)
		}

		res, err := r.bookingColl.UpdateOne(sc,
			bson.M{"id": bookingID, "status": models.StatusBooked},
			bson.M{"$set": bson.M{"status": models.StatusCancelled}})
		if err != nil {
			return fmt.Errorf("failed to update booking status: %w", err)
		}
		if res.MatchedCount == 0 {
			return ErrBookingNotFound
		}

		// Release the slot so the window becomes offerable again.
		filter := bson.M{
			"therapistId": booking.TherapistID,
			"date":        booking.Date,
			"start":       bson.M{"$lte": booking.Minute},
			"end":         bson.M{"$gt": booking.Minute},
			"booked":      true,
		}
		update := bson.M{"$set": bson.M{"booked": false}}
		if _, err := r.slotColl.UpdateOne(sc, filter, update); err != nil {
			return fmt.Errorf("failed to release slot for cancelled booking: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrBookingNotFound {
			return ErrBookingNotFound
		}
		return fmt.Errorf("cancel transaction failed: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) Complete(ctx context.Context, bookingID string) error {
	return r.setStatus(ctx, bookingID, models.StatusBooked, models.StatusCompleted)
}
