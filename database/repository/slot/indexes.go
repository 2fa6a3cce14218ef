// FILE: database/repository/slot/indexes.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the slots collection.
// The unique window index is the server-side guarantee that at most one
// slot record exists per (therapist, date, start, end).
func (r *mongoSlotRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// Unique index on Slot ID
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Unique compound index guarding against double-created windows
		{
			Keys: bson.D{
				{Key: "therapistId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "start", Value: 1},
				{Key: "end", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("unique_therapist_window"),
		},
		// Compound index for therapistId and date (primary query pattern)
		{
			Keys:    bson.D{{Key: "therapistId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("therapist_date_idx"),
		},
		// Date + booked for the lapsed-slot janitor
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "booked", Value: 1}},
			Options: options.Index().SetName("date_booked_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create slot indexes: %w", err)
	}
	return nil
}
