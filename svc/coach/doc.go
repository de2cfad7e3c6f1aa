// Package coach is the AI productivity coach.
//
// Service.Reply forwards a chat message, with its recent history and a fixed
// coaching system prompt, to an OpenRouter compatible chat-completions
// endpoint. Only users whose plan includes aiCoaching may use it; others get
// ErrNotEntitled. When the model cannot be reached the reply is FallbackReply
// rather than an error.
//
//	client, err := coach.NewOpenRouter(cfg, nil)
//	svc := coach.NewService(entitlementSvc, client, coach.WithLogger(log))
//	reply, err := svc.Reply(ctx, userID, coach.ChatRequest{Message: "I can't focus today"})
package coach
