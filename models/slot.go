package models

import "time"

// Slot represents a therapist's bookable window on a specific date.
// A Slot with an empty ID is ephemeral: a candidate derived from the window
// template that has no backing store record yet.
type Slot struct {
	ID          string    `bson:"id" json:"id,omitempty"`
	TherapistID string    `bson:"therapistId" json:"therapistId"`
	Date        string    `bson:"date" json:"date"`     // e.g., "2025-02-25"
	Start       int       `bson:"start" json:"start"`   // minutes from midnight (e.g., 480 for 8:00 AM)
	End         int       `bson:"end" json:"end"`       // minutes from midnight (e.g., 600 for 10:00 AM)
	Booked      bool      `bson:"booked" json:"booked"` // set only by a successful booking commit
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Persisted reports whether the slot has a backing store record.
func (s Slot) Persisted() bool {
	return s.ID != ""
}
