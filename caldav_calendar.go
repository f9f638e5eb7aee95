package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

type CalDAVProvider struct {
	client *caldav.Client
	// floating DTSTART/DTEND values are read in this zone
	loc *time.Location
}

func NewCalDAVProvider(base *http.Client, serverURL, username, password string, loc *time.Location) (*CalDAVProvider, error) {
	baseURL, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid CalDAV server URL: %w", err)
	}

	var httpClient webdav.HTTPClient = http.DefaultClient
	if base != nil {
		httpClient = base
	}
	if username != "" && password != "" {
		httpClient = webdav.HTTPClientWithBasicAuth(httpClient, username, password)
	}

	c, err := caldav.NewClient(httpClient, baseURL.String())
	if err != nil {
		return nil, fmt.Errorf("failed to create CalDAV client: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &CalDAVProvider{client: c, loc: loc}, nil
}

// ListEvents issues one calendar-query REPORT. CalDAV has no paging, so the
// result is always a single page.
func (c *CalDAVProvider) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, pageToken string) (*EventPage, error) {
	calURL, err := url.Parse(calendarID)
	if err != nil {
		return nil, fmt.Errorf("invalid calendar URL: %w", err)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     "VCALENDAR",
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{{
				Name:  "VEVENT",
				Start: timeMin,
				End:   timeMax,
			}},
		},
	}

	objects, err := c.client.QueryCalendar(ctx, calURL.Path, query)
	if err != nil {
		return nil, &TransportError{Op: "query calendar", Err: err}
	}

	page := &EventPage{}
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		if err := appendCalendarEvents(page, obj.Data, c.loc); err != nil {
			return nil, &TransportError{Op: "query calendar", Err: fmt.Errorf("%s: %w", obj.Path, err)}
		}
	}
	return page, nil
}

func appendCalendarEvents(page *EventPage, cal *ical.Calendar, loc *time.Location) error {
	for _, comp := range cal.Component.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		// DTEND is optional: DURATION may stand in for it, or the event has no length.
		if isDateOnly(comp.Props, ical.PropDateTimeStart) ||
			(comp.Props.Get(ical.PropDateTimeEnd) != nil && isDateOnly(comp.Props, ical.PropDateTimeEnd)) {
			page.Skipped++
			continue
		}

		uid := getTextProp(comp.Props, ical.PropUID)
		vevent := &ical.Event{Component: comp}
		start, err := vevent.DateTimeStart(loc)
		if err != nil {
			return fmt.Errorf("event %s: bad DTSTART: %w", uid, err)
		}
		end, err := vevent.DateTimeEnd(loc)
		if err != nil {
			return fmt.Errorf("event %s: bad end: %w", uid, err)
		}

		event := &Event{
			ID:      uid,
			Summary: getTextProp(comp.Props, ical.PropSummary),
			Start:   start,
			End:     end,
		}
		if organizer := comp.Props.Get(ical.PropOrganizer); organizer != nil {
			event.OrganizerName = organizer.Params.Get(ical.ParamCommonName)
			event.OrganizerEmail = strings.TrimPrefix(strings.ToLower(organizer.Value), "mailto:")
		}
		page.Events = append(page.Events, event)
	}
	return nil
}

func isDateOnly(props ical.Props, name string) bool {
	prop := props.Get(name)
	if prop == nil {
		return true
	}
	return strings.EqualFold(prop.Params.Get(ical.ParamValue), string(ical.ValueDate))
}

func getTextProp(props ical.Props, name string) string {
	prop := props.Get(name)
	if prop == nil {
		return ""
	}
	return prop.Value
}
