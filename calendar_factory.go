package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// CalendarFactory builds an authenticated provider for the configured calendar.
// It is asked once per cycle, so Google access tokens are never reused.
type CalendarFactory struct {
	config     *Config
	httpClient *http.Client
	refresher  *TokenRefresher
}

func NewCalendarFactory(config *Config, httpClient *http.Client) *CalendarFactory {
	if httpClient == nil {
		httpClient = newHTTPClient(config.HTTPTimeout.Duration)
	}
	return &CalendarFactory{
		config:     config,
		httpClient: httpClient,
		refresher:  NewTokenRefresher(httpClient, config.TokenURL),
	}
}

// newHTTPClient bounds connect and whole-request time; the calls have no other deadline.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext
	transport.TLSHandshakeTimeout = 5 * time.Second
	return &http.Client{Timeout: timeout, Transport: transport}
}

// Connect is a Connector.
func (cf *CalendarFactory) Connect(ctx context.Context) (CalendarProvider, error) {
	switch cf.config.Provider {
	case "google":
		token, err := cf.refresher.Refresh(ctx, cf.config.ClientID, cf.config.ClientSecret, cf.config.RefreshToken)
		if err != nil {
			return nil, err
		}
		return NewGoogleCalendarProvider(ctx, cf.httpClient, token, cf.config.APIEndpoint)

	case "caldav":
		loc, err := cf.config.Location()
		if err != nil {
			return nil, err
		}
		dav := cf.config.CalDAV
		return NewCalDAVProvider(cf.httpClient, dav.ServerURL, dav.Username, dav.Password, loc)

	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrConfigurationMissing, cf.config.Provider)
	}
}
