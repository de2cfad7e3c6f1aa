package entitlement

import (
	"fmt"
	"slices"
)

// Event triggers a subscription status change.
type Event string

const (
	EventStartTrial    Event = "start_trial"
	EventActivate      Event = "activate"
	EventCancel        Event = "cancel"
	EventPaymentFailed Event = "payment_failed"
)

// transition lists the source statuses an event may fire from.
// A nil From accepts any status.
type transition struct {
	From []Status
	To   Status
}

var lifecycle = map[Event]transition{
	EventStartTrial:    {To: StatusTrial},
	EventActivate:      {To: StatusActive},
	EventCancel:        {From: []Status{StatusActive, StatusTrial, StatusPastDue}, To: StatusCancelled},
	EventPaymentFailed: {From: []Status{StatusActive, StatusTrial}, To: StatusPastDue},
}

// NextStatus returns the status an event leads to from the given status.
func NextStatus(from Status, event Event) (Status, error) {
	t, ok := lifecycle[event]
	if !ok {
		return from, fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, event)
	}
	if t.From != nil && !slices.Contains(t.From, from) {
		return from, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, event, from)
	}
	return t.To, nil
}

// CanTransition reports whether the event may fire from the given status.
func CanTransition(from Status, event Event) bool {
	_, err := NextStatus(from, event)
	return err == nil
}
