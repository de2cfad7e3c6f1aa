package api

import "github.com/dmitrymomot/focusflow/handler"

func (s *server) billingWebhook(ctx handler.Context, _ struct{}) handler.Response {
	if !s.Billing.Enabled() {
		return handler.Error(handler.ErrNotFound)
	}
	ev, err := s.Billing.HandleWebhook(ctx.Request())
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(map[string]string{"event_id": ev.ID, "action": string(ev.Action)})
}
