package models

// Selection is the slot a therapist or patient is currently working on.
// It lives in the cache for the duration of the interaction and is reset
// when the user navigates to a different date.
type Selection struct {
	SessionID    string `json:"sessionId"`
	TherapistID  string `json:"therapistId"`
	Date         string `json:"date"`
	Slot         Slot   `json:"slot"`
	NewlyCreated bool   `json:"newlyCreated"` // true if SelectWindow created the record
}
