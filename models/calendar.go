package models

import "time"

// CalendarDay describes a single day of a rendered month. Generated fresh on
// every month navigation; never persisted.
type CalendarDay struct {
	Date    string       `json:"date"` // "2006-01-02"
	Weekday time.Weekday `json:"weekday"`
	IsToday bool         `json:"isToday"`
}
