package main

import (
	"context"
	"time"
)

// CalendarProvider lists the events of one calendar, one page per call.
// An empty pageToken requests the first page.
type CalendarProvider interface {
	ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, pageToken string) (*EventPage, error)
}

type Event struct {
	ID             string
	Summary        string
	Start          time.Time
	End            time.Time
	// Filled by providers for a later organizer lookup; the sync loop stores placeholders.
	OrganizerName  string
	OrganizerEmail string
}

type EventPage struct {
	Events        []*Event
	NextPageToken string
	// Skipped counts items without a timed start and end, such as all-day events.
	Skipped int
}
