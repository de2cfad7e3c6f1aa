package calendar_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/svc/calendar"
)

type mockEntitlements struct {
	mock.Mock
}

func (m *mockEntitlements) HasCapability(ctx context.Context, userID uuid.UUID, c entitlement.Capability) (bool, error) {
	args := m.Called(ctx, userID, c)
	return args.Bool(0), args.Error(1)
}

func entitled(userID uuid.UUID, ok bool) *mockEntitlements {
	m := &mockEntitlements{}
	m.On("HasCapability", mock.Anything, userID, entitlement.CapabilityCalendarIntegration).Return(ok, nil)
	return m
}

var testConfig = calendar.Config{
	ClientID:     "client-id",
	ClientSecret: "client-secret",
	RedirectURL:  "https://focusflow.app/calendar/callback",
	Scopes:       []string{"https://www.googleapis.com/auth/calendar.readonly"},
}

const eventsJSON = `{
  "items": [
    {"id": "a", "summary": "Standup", "htmlLink": "https://calendar.google.com/a",
     "attendees": [{"email": "ana@example.com"}, {"email": ""}],
     "start": {"dateTime": "2025-03-10T09:00:00Z"}, "end": {"dateTime": "2025-03-10T09:15:00Z"}},
    {"id": "b", "status": "cancelled", "summary": "Dropped",
     "start": {"dateTime": "2025-03-10T10:00:00Z"}, "end": {"dateTime": "2025-03-10T11:00:00Z"}},
    {"id": "c", "summary": "Conference",
     "start": {"date": "2025-03-10"}, "end": {"date": "2025-03-11"}},
    {"id": "d", "summary": "Broken", "start": {"dateTime": "yesterday"}, "end": {"dateTime": "today"}}
  ]
}`

func TestListEvents(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	tok := &oauth2.Token{AccessToken: "access", TokenType: "Bearer"}

	t.Run("requests one expanded day and normalizes events", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/calendars/primary/events", r.URL.Path)
			assert.Equal(t, "Bearer access", r.Header.Get("Authorization"))
			q := r.URL.Query()
			assert.Equal(t, "2025-03-10T00:00:00Z", q.Get("timeMin"))
			assert.Equal(t, "2025-03-11T00:00:00Z", q.Get("timeMax"))
			assert.Equal(t, "true", q.Get("singleEvents"))
			assert.Equal(t, "startTime", q.Get("orderBy"))
			_, _ = w.Write([]byte(eventsJSON))
		}))
		t.Cleanup(srv.Close)

		cfg := testConfig
		cfg.APIBaseURL = srv.URL
		svc := calendar.NewService(entitled(userID, true), cfg, calendar.WithHTTPClient(srv.Client()))

		events, err := svc.ListEvents(context.Background(), userID, tok, "", day, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, events, 2)

		assert.Equal(t, "Standup", events[0].Title)
		assert.Equal(t, 15*time.Minute, events[0].Duration())
		assert.False(t, events[0].AllDay)
		assert.Equal(t, []string{"ana@example.com"}, events[0].Attendees)

		assert.Equal(t, "Conference", events[1].Title)
		assert.True(t, events[1].AllDay)
		assert.Equal(t, day, events[1].Start)
	})

	t.Run("rejected token has its own error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		t.Cleanup(srv.Close)

		cfg := testConfig
		cfg.APIBaseURL = srv.URL
		svc := calendar.NewService(entitled(userID, true), cfg, calendar.WithHTTPClient(srv.Client()))

		_, err := svc.ListEvents(context.Background(), userID, tok, "primary", day, day.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, calendar.ErrUnauthorizedCall)
	})

	t.Run("plan without calendar integration is rejected", func(t *testing.T) {
		svc := calendar.NewService(entitled(userID, false), testConfig)

		_, err := svc.ListEvents(context.Background(), userID, tok, "primary", day, day.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, calendar.ErrNotEntitled)
	})

	t.Run("invalid input is rejected before calling google", func(t *testing.T) {
		svc := calendar.NewService(entitled(userID, true), testConfig)

		_, err := svc.ListEvents(context.Background(), userID, nil, "primary", day, day.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, calendar.ErrMissingToken)

		_, err = svc.ListEvents(context.Background(), userID, tok, "primary", day, day)
		assert.ErrorIs(t, err, calendar.ErrInvalidRange)
	})

	t.Run("unconfigured service is disabled", func(t *testing.T) {
		svc := calendar.NewService(entitled(userID, true), calendar.Config{})

		_, err := svc.ListEvents(context.Background(), userID, tok, "primary", day, day.AddDate(0, 0, 1))
		assert.ErrorIs(t, err, calendar.ErrNotConfigured)
	})
}

func TestOAuthFlow(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("auth url carries state and offline access", func(t *testing.T) {
		svc := calendar.NewService(entitled(userID, true), testConfig)

		raw, err := svc.AuthURL(context.Background(), userID, "state-123")
		require.NoError(t, err)

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "accounts.google.com", u.Host)
		assert.Equal(t, "state-123", u.Query().Get("state"))
		assert.Equal(t, "offline", u.Query().Get("access_type"))
		assert.Equal(t, "client-id", u.Query().Get("client_id"))
	})

	t.Run("exchange returns the token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"Bearer","refresh_token":"r","expires_in":3600}`))
		}))
		t.Cleanup(srv.Close)

		svc := calendar.NewService(entitled(userID, true), testConfig,
			calendar.WithHTTPClient(srv.Client()),
			calendar.WithEndpoint(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}))

		tok, err := svc.Exchange(context.Background(), userID, "code")
		require.NoError(t, err)
		assert.Equal(t, "abc", tok.AccessToken)
		assert.Equal(t, "r", tok.RefreshToken)
	})

	t.Run("failed exchange is an invalid code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		t.Cleanup(srv.Close)

		svc := calendar.NewService(entitled(userID, true), testConfig,
			calendar.WithHTTPClient(srv.Client()),
			calendar.WithEndpoint(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}))

		_, err := svc.Exchange(context.Background(), userID, "bad")
		assert.ErrorIs(t, err, calendar.ErrInvalidCode)
	})
}

func TestPlanFocus(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event calendar.Event
		want  int
	}{
		{"short meeting keeps its length", calendar.Event{Title: "Review", Start: start, End: start.Add(45 * time.Minute)}, 45},
		{"long workshop is capped", calendar.Event{Title: "Workshop", Start: start, End: start.Add(4 * time.Hour)}, calendar.MaxFocusMinutes},
		{"all day event gets the cap", calendar.Event{Title: "Offsite", Start: start, End: start.Add(24 * time.Hour), AllDay: true}, calendar.MaxFocusMinutes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.event.PlanFocus()
			assert.Equal(t, tt.want, p.Minutes)
			assert.Equal(t, "Preparation: "+tt.event.Title, p.Title)
		})
	}
}

func TestEventJSON(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	b, err := json.Marshal(calendar.Event{ID: "a", Title: "Standup", Start: start, End: start.Add(15 * time.Minute)})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Standup", got["title"])
	assert.NotContains(t, got, "summary")
}
