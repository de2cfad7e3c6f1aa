package api

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/focusflow/handler"
	"github.com/dmitrymomot/focusflow/pkg/validator"
)

func (s *server) listUsers(ctx handler.Context, _ struct{}) handler.Response {
	granter, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	subs, err := s.Entitlements.ListSubscriptions(ctx, granter)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(subs, handler.WithJSONMeta(map[string]any{"total": len(subs)}))
}

type promoteRequest struct {
	Email string `json:"email"`
}

func (s *server) promoteAdmin(ctx handler.Context, req promoteRequest) handler.Response {
	granter, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := validator.Apply(validator.ValidEmail("email", req.Email)); err != nil {
		return handler.Error(err)
	}

	if err := s.Entitlements.PromoteToAdmin(ctx, granter, req.Email); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}

type demoteRequest struct {
	UserID string `path:"userID"`
}

func (s *server) demoteAdmin(ctx handler.Context, req demoteRequest) handler.Response {
	granter, _, err := currentUser(ctx)
	if err != nil {
		return handler.Error(err)
	}
	if err := validator.Apply(validator.ValidUUID("userID", req.UserID)); err != nil {
		return handler.Error(err)
	}

	if err := s.Entitlements.DemoteAdmin(ctx, granter, uuid.MustParse(req.UserID)); err != nil {
		return handler.Error(err)
	}
	return handler.Empty()
}
