package billing

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
)

// Action is what a webhook asks the entitlement service to do.
type Action string

const (
	ActionNone     Action = "none"
	ActionActivate Action = "activate"
	ActionCancel   Action = "cancel"
	ActionPastDue  Action = "past_due"
)

// Event is a normalized billing webhook.
type Event struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Action     Action     `json:"action"`
	UserID     uuid.UUID  `json:"user_id"`
	PriceID    string     `json:"price_id"`
	Status     string     `json:"status"`
	OccurredAt time.Time  `json:"occurred_at"`
	PeriodEnd  *time.Time `json:"period_end,omitempty"`
}

type paddleEvent struct {
	EventID    string     `json:"event_id"`
	EventType  string     `json:"event_type"`
	OccurredAt time.Time  `json:"occurred_at"`
	Data       paddleData `json:"data"`
}

type paddleData struct {
	ID             string         `json:"id"`
	Status         string         `json:"status"`
	SubscriptionID string         `json:"subscription_id"`
	CustomData     map[string]any `json:"custom_data"`
	Items          []struct {
		PriceID string `json:"price_id"`
		Price   struct {
			ID string `json:"id"`
		} `json:"price"`
	} `json:"items"`
	CurrentBillingPeriod *struct {
		EndsAt time.Time `json:"ends_at"`
	} `json:"current_billing_period"`
}

// ParseEvent decodes a Paddle webhook body. Unknown event types parse with ActionNone.
func ParseEvent(payload []byte) (Event, error) {
	var pe paddleEvent
	if err := json.Unmarshal(payload, &pe); err != nil {
		return Event{}, errors.Join(ErrInvalidPayload, err)
	}
	if pe.EventType == "" {
		return Event{}, errors.Join(ErrInvalidPayload, errors.New("missing event_type"))
	}

	ev := Event{
		ID:         pe.EventID,
		Type:       pe.EventType,
		Status:     pe.Data.Status,
		OccurredAt: pe.OccurredAt,
		Action:     actionFor(pe.EventType, pe.Data.Status),
	}
	if len(pe.Data.Items) > 0 {
		ev.PriceID = pe.Data.Items[0].Price.ID
		if ev.PriceID == "" {
			ev.PriceID = pe.Data.Items[0].PriceID
		}
	}
	if p := pe.Data.CurrentBillingPeriod; p != nil && !p.EndsAt.IsZero() {
		ends := p.EndsAt
		ev.PeriodEnd = &ends
	}
	if raw, ok := pe.Data.CustomData["user_id"].(string); ok {
		if id, err := uuid.Parse(raw); err == nil {
			ev.UserID = id
		}
	}
	return ev, nil
}

func actionFor(eventType, status string) Action {
	switch eventType {
	case "subscription.created", "subscription.activated", "subscription.resumed",
		"transaction.completed", "transaction.payment_succeeded":
		return ActionActivate
	case "subscription.canceled":
		return ActionCancel
	case "subscription.past_due", "transaction.payment_failed":
		return ActionPastDue
	case "subscription.updated":
		switch entitlement.ParseStatus(strings.ToLower(status)) {
		case entitlement.StatusActive, entitlement.StatusTrial:
			return ActionActivate
		case entitlement.StatusPastDue:
			return ActionPastDue
		default:
			return ActionCancel
		}
	}
	return ActionNone
}
