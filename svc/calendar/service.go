package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/logger"
)

// Entitlements answers capability questions for a user.
type Entitlements interface {
	HasCapability(ctx context.Context, userID uuid.UUID, c entitlement.Capability) (bool, error)
}

// Service connects Google Calendar for users whose plan includes calendarIntegration.
// OAuth tokens are returned to the caller and never stored.
type Service struct {
	ent        Entitlements
	cfg        Config
	conf       *oauth2.Config
	httpClient *http.Client
	loc        *time.Location
	log        *slog.Logger
}

// Option configures Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithHTTPClient sets the client used for token exchange and API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Service) {
		if c != nil {
			s.httpClient = c
		}
	}
}

// WithEndpoint replaces the Google OAuth endpoint.
func WithEndpoint(e oauth2.Endpoint) Option {
	return func(s *Service) {
		s.conf.Endpoint = e
	}
}

// WithLocation sets the zone used for all-day events.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// NewService creates a calendar service. It panics if ent is nil.
func NewService(ent Entitlements, cfg Config, opts ...Option) *Service {
	if ent == nil {
		panic("calendar: entitlements cannot be nil")
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://www.googleapis.com/calendar/v3"
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 250
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &Service{
		ent: ent,
		cfg: cfg,
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     google.Endpoint,
		},
		httpClient: &http.Client{Timeout: timeout},
		loc:        time.UTC,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("calendar"))
	return s
}

// AuthURL returns the Google consent URL carrying state.
func (s *Service) AuthURL(ctx context.Context, userID uuid.UUID, state string) (string, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return "", err
	}
	return s.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// Exchange trades an authorization code for a token.
func (s *Service) Exchange(ctx context.Context, userID uuid.UUID, code string) (*oauth2.Token, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return nil, err
	}
	tok, err := s.conf.Exchange(s.clientContext(ctx), code)
	if err != nil {
		s.log.InfoContext(ctx, "calendar code exchange failed", logger.UserID(userID), logger.Error(err))
		return nil, ErrInvalidCode
	}
	return tok, nil
}

// ListEvents returns events of calendarID overlapping [start, end), recurring
// events expanded and ordered by start time. Cancelled events are skipped.
func (s *Service) ListEvents(ctx context.Context, userID uuid.UUID, tok *oauth2.Token, calendarID string, start, end time.Time) ([]Event, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return nil, err
	}
	if tok == nil || tok.AccessToken == "" {
		return nil, ErrMissingToken
	}
	if !end.After(start) {
		return nil, ErrInvalidRange
	}
	if calendarID == "" {
		calendarID = "primary"
	}

	q := url.Values{}
	q.Set("timeMin", start.Format(time.RFC3339))
	q.Set("timeMax", end.Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	q.Set("maxResults", strconv.Itoa(s.cfg.MaxResults))
	endpoint := strings.TrimRight(s.cfg.APIBaseURL, "/") + "/calendars/" + url.PathEscape(calendarID) + "/events?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := s.conf.Client(s.clientContext(ctx), tok)
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Join(ErrFetchEvents, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorizedCall
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: google api returned status %d", ErrFetchEvents, resp.StatusCode)
	}

	var payload apiEvents
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Join(ErrFetchEvents, err)
	}

	events := make([]Event, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.Status == "cancelled" {
			continue
		}
		ev, err := item.toEvent(s.loc)
		if err != nil {
			s.log.WarnContext(ctx, "skipping calendar event with bad time", slog.String("event_id", item.ID), logger.Error(err))
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *Service) authorize(ctx context.Context, userID uuid.UUID) error {
	if !s.cfg.Enabled() {
		return ErrNotConfigured
	}
	ok, err := s.ent.HasCapability(ctx, userID, entitlement.CapabilityCalendarIntegration)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotEntitled
	}
	return nil
}

// clientContext makes oauth2 use the service HTTP client.
func (s *Service) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}
