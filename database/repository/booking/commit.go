package bookingRepo

import (
	"context"
	"fmt"

	"serenity/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Commit performs the authoritative booking write: inside one transaction it
// re-checks the candidate window for an active overlapping booking, inserts
// the booking record, and marks the slot booked. A loss at any step aborts
// the whole transaction, so availability snapshots taken before Commit can
// never leak a half-applied reservation.
func (r *mongoBookingRepo) Commit(ctx context.Context, booking *models.Booking, slotID string, slotStart, slotEnd int) error {
	client := r.bookingColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		// Authoritative conflict re-check: the advisory client-side check may
		// be stale by now.
		var existing models.Booking
		err := r.bookingColl.FindOne(sc, overlapFilter(booking.TherapistID, booking.Date, slotStart, slotEnd)).Decode(&existing)
		if err == nil {
			return ErrBookingConflict
		}
		if err != mongo.ErrNoDocuments {
			return fmt.Errorf("conflict re-check failed: %w", err)
		}

		if _, err := r.bookingColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}

		filter := bson.M{
			"id":          slotID,
			"therapistId": booking.TherapistID,
			"booked":      false,
		}
		update := bson.M{"$set": bson.M{"booked": true}}
		res, err := r.slotColl.UpdateOne(sc, filter, update)
		if err != nil {
			return fmt.Errorf("mark slot booked failed: %w", err)
		}
		if res.MatchedCount == 0 {
			// Another actor booked or deleted the slot between our re-check
			// and the update.
			return ErrBookingConflict
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
		if err == ErrBookingConflict {
			return ErrBookingConflict
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
