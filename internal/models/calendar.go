package models

import "time"

type EventType string

const (
	EventTypeSession  EventType = "session"
	EventTypeWorkshop EventType = "workshop"
	EventTypeOther    EventType = "other"
)

// CalendarEventInput is the payload accepted when creating or replacing a calendar entry.
type CalendarEventInput struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Date        string    `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string    `json:"time" validate:"max=50"`
	Description string    `json:"description"`
	Type        EventType `json:"type" validate:"omitempty,oneof=session workshop other"`
}

// CalendarEvent is a planned game date or other group activity.
type CalendarEvent struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Date        string    `json:"date" db:"date"`
	Time        string    `json:"time" db:"time"`
	Description string    `json:"description" db:"description"`
	Type        EventType `json:"type" db:"type"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Day returns the date of the event. Events with a malformed date return the zero time.
func (e CalendarEvent) Day() time.Time {
	d, err := time.Parse(time.DateOnly, e.Date)
	if err != nil {
		return time.Time{}
	}
	return d
}
