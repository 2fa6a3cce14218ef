// File: database/repository/slot/queries.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"serenity/models"
)

func (r *mongoSlotRepo) ListByDate(ctx context.Context, therapistID, date string) ([]models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"therapistId": therapistID, "date": date}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("error decoding slots: %w", err)
	}
	return slots, nil
}

func (r *mongoSlotRepo) GetByWindow(ctx context.Context, therapistID, date string, start, end int) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"therapistId": therapistID,
		"date":        date,
		"start":       start,
		"end":         end,
	}
	var slot models.Slot
	if err := r.coll.FindOne(ctx, filter).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("find error: %w", err)
	}
	return &slot, nil
}

// DeleteLapsedUnbooked removes unbooked slot records dated strictly before
// the given date. Booked slots are never touched; their records back
// confirmed sessions.
func (r *mongoSlotRepo) DeleteLapsedUnbooked(ctx context.Context, before string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"date":   bson.M{"$lt": before},
		"booked": false,
	}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete lapsed slots: %w", err)
	}
	return res.DeletedCount, nil
}
