package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/logger"
)

const (
	SystemPrompt = `You are a warm, empathetic and practical AI productivity coach who helps young people with focus, motivation and planning.
- Be human, positive and supportive
- Use an emoji now and then
- Give practical tips, ask questions, acknowledge feelings
- Answer concisely, clearly and motivationally`

	FallbackReply = "Sorry, I can't answer right now. Please try again later."

	analysisPrompt = "You are an AI productivity coach. Always answer with a single JSON object."
)

// Entitlements answers capability questions for a user.
type Entitlements interface {
	HasCapability(ctx context.Context, userID uuid.UUID, c entitlement.Capability) (bool, error)
}

// Turn is one earlier message of the conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Message string `json:"message"`
}

// ChatRequest is a user message with the preceding conversation.
type ChatRequest struct {
	Message string `json:"message"`
	History []Turn `json:"history"`
}

// ChatReply is the coach's answer. Fallback is set when the model could not be reached.
type ChatReply struct {
	Response string `json:"response"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Stats summarizes a user's day for Analyze.
type Stats struct {
	FocusMinutes        int `json:"focus_minutes"`
	SessionsCompleted   int `json:"sessions_completed"`
	DistractionsBlocked int `json:"distractions_blocked"`
	Productivity        int `json:"productivity"`
}

// Insight is a short coaching card derived from Stats.
type Insight struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Action   string `json:"action"`
	Priority string `json:"priority"`
	Type     string `json:"type"`
	Fallback bool   `json:"fallback,omitempty"`
}

var fallbackInsight = Insight{
	Title:    "Focus time!",
	Message:  "Every focus session brings you closer to your goals. Keep going!",
	Action:   "Start session",
	Priority: "medium",
	Type:     "motivation",
	Fallback: true,
}

// Service answers coaching requests for entitled users.
type Service struct {
	ent        Entitlements
	completer  Completer
	maxHistory int
	log        *slog.Logger
}

// ServiceOption configures Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMaxHistory limits how many earlier turns are sent to the model.
func WithMaxHistory(n int) ServiceOption {
	return func(s *Service) {
		s.maxHistory = n
	}
}

// NewService creates a coaching service. It panics on nil dependencies.
func NewService(ent Entitlements, completer Completer, opts ...ServiceOption) *Service {
	if ent == nil {
		panic("coach: entitlements cannot be nil")
	}
	if completer == nil {
		panic("coach: completer cannot be nil")
	}
	s := &Service{
		ent:        ent,
		completer:  completer,
		maxHistory: 20,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("coach"))
	return s
}

// Reply answers req for userID.
// Model failures produce FallbackReply instead of an error.
func (s *Service) Reply(ctx context.Context, userID uuid.UUID, req ChatRequest) (ChatReply, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return ChatReply{}, err
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return ChatReply{}, ErrEmptyMessage
	}

	text, err := s.completer.Complete(ctx, s.conversation(msg, req.History))
	if err != nil {
		s.log.WarnContext(ctx, "coach reply failed, using fallback", logger.UserID(userID), logger.Error(err))
		return ChatReply{Response: FallbackReply, Fallback: true}, nil
	}
	return ChatReply{Response: text}, nil
}

// Analyze turns daily stats into an Insight.
// Unparseable model output produces a default motivational insight.
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, st Stats) (Insight, error) {
	if err := s.authorize(ctx, userID); err != nil {
		return Insight{}, err
	}

	prompt := fmt.Sprintf(`Analyze these statistics and give practical insights.
Focus time today: %d minutes
Completed sessions: %d
Blocked distractions: %d
Productivity score: %d%%

Reply with JSON fields: "title" (max 30 characters), "message" (max 120 characters), "action" (max 40 characters), "priority" ("high", "medium" or "low") and "type" ("motivation", "tip", "warning" or "achievement").`,
		st.FocusMinutes, st.SessionsCompleted, st.DistractionsBlocked, st.Productivity)

	text, err := s.completer.Complete(ctx, []Message{
		{Role: RoleSystem, Content: analysisPrompt},
		{Role: RoleUser, Content: prompt},
	})
	if err != nil {
		s.log.WarnContext(ctx, "coach analysis failed, using fallback", logger.UserID(userID), logger.Error(err))
		return fallbackInsight, nil
	}

	var in Insight
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &in); err != nil || in.Title == "" {
		return fallbackInsight, nil
	}
	in.Fallback = false
	return in, nil
}

func (s *Service) authorize(ctx context.Context, userID uuid.UUID) error {
	ok, err := s.ent.HasCapability(ctx, userID, entitlement.CapabilityAICoaching)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotEntitled
	}
	return nil
}

func (s *Service) conversation(msg string, history []Turn) []Message {
	if s.maxHistory >= 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	out := make([]Message, 0, len(history)+2)
	out = append(out, Message{Role: RoleSystem, Content: SystemPrompt})
	for _, t := range history {
		if t.Role != RoleUser && t.Role != RoleAssistant {
			continue
		}
		if strings.TrimSpace(t.Message) == "" {
			continue
		}
		out = append(out, Message{Role: t.Role, Content: t.Message})
	}
	return append(out, Message{Role: RoleUser, Content: msg})
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
