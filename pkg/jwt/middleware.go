package jwt

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/logger"
)

// Middleware authenticates requests carrying a bearer token.
//
// A request without an Authorization header passes through anonymously so
// that the access guard can answer with a sign-in prompt. A malformed, expired
// or forged token is rejected with 401.
func Middleware(p *Parser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := BearerToken(r)
			if errors.Is(err, ErrMissingToken) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				unauthorized(w, err)
				return
			}

			claims, err := p.Parse(tokenString)
			if err != nil {
				if log != nil {
					log.DebugContext(r.Context(), "rejected access token", logger.Error(err))
				}
				unauthorized(w, err)
				return
			}

			userID, _ := claims.UserID()
			ctx := SetClaims(r.Context(), claims)
			ctx = entitlement.SetUserIDToContext(ctx, userID)
			if claims.Email != "" {
				ctx = entitlement.SetEmailToContext(ctx, claims.Email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(w http.ResponseWriter, err error) {
	code := "invalid_token"
	if errors.Is(err, ErrExpiredToken) {
		code = "expired_token"
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": "Invalid or expired access token."},
	})
}
