package models

import "time"

// Booking statuses. Only StatusBooked counts toward conflict detection.
const (
	StatusBooked    = "Booked"
	StatusCancelled = "Cancelled"
	StatusCompleted = "Completed"
)

// Booking represents a confirmed therapy session reservation.
// Date and Minute are denormalized from StartsAt so the overlap query can
// filter without date arithmetic in the database.
type Booking struct {
	ID          string    `bson:"id" json:"id"`
	TherapistID string    `bson:"therapistId" json:"therapistId"`
	PatientID   string    `bson:"patientId" json:"patientId"`
	StartsAt    time.Time `bson:"startsAt" json:"startsAt"`
	Date        string    `bson:"date" json:"date"`     // "2006-01-02", derived from StartsAt
	Minute      int       `bson:"minute" json:"minute"` // minutes from midnight, derived from StartsAt
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// Active reports whether the booking still occupies its window.
func (b Booking) Active() bool {
	return b.Status == StatusBooked
}
