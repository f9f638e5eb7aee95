package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type GoogleCalendarProvider struct {
	service *calendar.Service
}

// NewGoogleCalendarProvider builds a Calendar service authorized by a fixed access token.
// base carries the timeouts; endpoint overrides the API root when non-empty.
func NewGoogleCalendarProvider(ctx context.Context, base *http.Client, token *oauth2.Token, endpoint string) (*GoogleCalendarProvider, error) {
	if token == nil {
		return nil, fmt.Errorf("token cannot be nil")
	}
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleCalendarProvider{service: service}, nil
}

func (g *GoogleCalendarProvider) ListEvents(ctx context.Context, calendarID string, timeMin, timeMax time.Time, pageToken string) (*EventPage, error) {
	call := g.service.Events.List(calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339))
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	events, err := call.Context(ctx).Do()
	if err != nil {
		terr := &TransportError{Op: "list events", Err: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			terr.StatusCode = apiErr.Code
		}
		return nil, terr
	}

	page := &EventPage{NextPageToken: events.NextPageToken}
	for _, item := range events.Items {
		if item == nil || item.Start == nil || item.End == nil ||
			item.Start.DateTime == "" || item.End.DateTime == "" {
			page.Skipped++
			continue
		}
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return nil, &TransportError{Op: "list events", Err: fmt.Errorf("event %s: bad start: %w", item.Id, err)}
		}
		end, err := time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return nil, &TransportError{Op: "list events", Err: fmt.Errorf("event %s: bad end: %w", item.Id, err)}
		}

		event := &Event{
			ID:      item.Id,
			Summary: item.Summary,
			Start:   start,
			End:     end,
		}
		if item.Organizer != nil {
			event.OrganizerName = item.Organizer.DisplayName
			event.OrganizerEmail = item.Organizer.Email
		}
		page.Events = append(page.Events, event)
	}
	return page, nil
}
