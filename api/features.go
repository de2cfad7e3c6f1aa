package api

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/focusflow/handler"
	"github.com/dmitrymomot/focusflow/pkg/validator"
	"github.com/dmitrymomot/focusflow/svc/calendar"
	"github.com/dmitrymomot/focusflow/svc/coach"
)

// calendarTokenHeader carries the caller's Google access token.
const calendarTokenHeader = "X-Calendar-Token"

func (s *server) recordFocusSession(ctx handler.Context, _ struct{}) handler.Response {
	userID, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	q, err := s.Entitlements.RecordFocusSession(ctx, userID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(map[string]any{"quota": q}, handler.WithJSONStatus(http.StatusCreated))
}

func (s *server) coachChat(ctx handler.Context, req coach.ChatRequest) handler.Response {
	if s.Coach == nil {
		return handler.Error(ErrNotConfigured)
	}
	userID, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}

	reply, err := s.Coach.Reply(ctx, userID, req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(reply)
}

func (s *server) coachInsights(ctx handler.Context, stats coach.Stats) handler.Response {
	if s.Coach == nil {
		return handler.Error(ErrNotConfigured)
	}
	userID, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}

	insight, err := s.Coach.Analyze(ctx, userID, stats)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(insight)
}

func (s *server) calendarAuthURL(ctx handler.Context, _ struct{}) handler.Response {
	if s.Calendar == nil {
		return handler.Error(ErrNotConfigured)
	}
	userID, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}

	state, err := newState()
	if err != nil {
		return handler.Error(err)
	}
	url, err := s.Calendar.AuthURL(ctx, userID, state)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(map[string]string{"url": url, "state": state})
}

type calendarTokenRequest struct {
	Code string `json:"code"`
}

func (s *server) calendarToken(ctx handler.Context, req calendarTokenRequest) handler.Response {
	if s.Calendar == nil {
		return handler.Error(ErrNotConfigured)
	}
	userID, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := validator.Apply(validator.RequiredString("code", req.Code)); err != nil {
		return handler.Error(err)
	}

	tok, err := s.Calendar.Exchange(ctx, userID, req.Code)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(tok)
}

type calendarEventsRequest struct {
	Date     string `query:"date"`
	Calendar string `query:"calendar"`
}

func (s *server) calendarEvents(ctx handler.Context, req calendarEventsRequest) handler.Response {
	if s.Calendar == nil {
		return handler.Error(ErrNotConfigured)
	}
	userID, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := validator.Apply(validator.ValidDate("date", req.Date, time.DateOnly)); err != nil {
		return handler.Error(err)
	}

	day := s.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		day, _ = time.Parse(time.DateOnly, req.Date)
	}

	tok := &oauth2.Token{
		AccessToken: strings.TrimSpace(ctx.Request().Header.Get(calendarTokenHeader)),
		TokenType:   "Bearer",
	}
	events, err := s.Calendar.ListEvents(ctx, userID, tok, req.Calendar, day, day.AddDate(0, 0, 1))
	if err != nil {
		return handler.Error(err)
	}

	type plannedEvent struct {
		calendar.Event
		Focus calendar.FocusPlan `json:"focus"`
	}
	out := make([]plannedEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, plannedEvent{Event: ev, Focus: ev.PlanFocus()})
	}
	return handler.JSON(out)
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
