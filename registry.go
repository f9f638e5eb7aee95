package main

import (
	"sort"
	"sync"
	"time"
)

// Registry receives the normalized meetings of each cycle.
// Implementations must be safe for concurrent readers while the loop writes.
type Registry interface {
	Clear()
	Store(start, end time.Time, title, organizerName, organizerEmail string)
}

type Meeting struct {
	Start          time.Time
	End            time.Time
	Title          string
	OrganizerName  string
	OrganizerEmail string
}

// MeetingRegistry is an in-memory Registry for display layers.
type MeetingRegistry struct {
	mu       sync.RWMutex
	meetings []Meeting
}

func NewMeetingRegistry() *MeetingRegistry {
	return &MeetingRegistry{}
}

func (r *MeetingRegistry) Clear() {
	r.mu.Lock()
	r.meetings = nil
	r.mu.Unlock()
}

func (r *MeetingRegistry) Store(start, end time.Time, title, organizerName, organizerEmail string) {
	r.mu.Lock()
	r.meetings = append(r.meetings, Meeting{
		Start:          start,
		End:            end,
		Title:          title,
		OrganizerName:  organizerName,
		OrganizerEmail: organizerEmail,
	})
	r.mu.Unlock()
}

// Meetings returns a copy ordered by start time.
func (r *MeetingRegistry) Meetings() []Meeting {
	r.mu.RLock()
	out := make([]Meeting, len(r.meetings))
	copy(out, r.meetings)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}

func (r *MeetingRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.meetings)
}
