// File: database/repository/slot/crud.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"serenity/models"
)

func (r *mongoSlotRepo) Create(ctx context.Context, slot models.Slot) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	slot.Booked = false
	slot.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, slot); err != nil {
		// The unique window index turns a racing duplicate into a key error.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrSlotExists
		}
		return nil, fmt.Errorf("failed to insert slot: %w", err)
	}
	return &slot, nil
}

func (r *mongoSlotRepo) UpdateEnd(ctx context.Context, therapistID, slotID string, newEnd int) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "therapistId": therapistID, "booked": false}
	update := bson.M{"$set": bson.M{"end": newEnd}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update slot end: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a booked slot from a deleted one.
		existing, lookupErr := r.GetByID(ctx, therapistID, slotID)
		if lookupErr != nil {
			return nil, ErrSlotNotFound
		}
		if existing.Booked {
			return nil, ErrSlotBooked
		}
		return nil, ErrSlotNotFound
	}

	return r.GetByID(ctx, therapistID, slotID)
}

func (r *mongoSlotRepo) Delete(ctx context.Context, therapistID, slotID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "therapistId": therapistID, "booked": false}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	if res.DeletedCount == 0 {
		existing, lookupErr := r.GetByID(ctx, therapistID, slotID)
		if lookupErr != nil {
			return ErrSlotNotFound
		}
		if existing.Booked {
			return ErrSlotBooked
		}
		return ErrSlotNotFound
	}
	return nil
}

func (r *mongoSlotRepo) GetByID(ctx context.Context, therapistID, slotID string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "therapistId": therapistID}
	var slot models.Slot
	if err := r.coll.FindOne(ctx, filter).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("find error: %w", err)
	}
	return &slot, nil
}
