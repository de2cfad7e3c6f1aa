// Package calendar imports Google Calendar events for focus planning.
//
// The service runs the OAuth consent flow (AuthURL, Exchange) and lists events
// of one calendar for a time window. Every call requires the
// calendarIntegration capability; users on plans without it get ErrNotEntitled.
// Tokens are handed back to the caller rather than stored server side.
//
//	svc := calendar.NewService(entitlementSvc, cfg)
//	events, err := svc.ListEvents(ctx, userID, tok, "primary", dayStart, dayStart.AddDate(0, 0, 1))
//	plan := events[0].PlanFocus() // "Preparation: <summary>", at most 120 minutes
package calendar
