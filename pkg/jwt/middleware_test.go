package jwt_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/focusflow/pkg/entitlement"
	"github.com/dmitrymomot/focusflow/pkg/jwt"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	p := newParser(t)
	userID := uuid.New()

	type seen struct {
		userID uuid.UUID
		email  string
		authed bool
	}
	serve := func(authorization string) (*httptest.ResponseRecorder, seen) {
		var s seen
		h := jwt.Middleware(p, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.userID, s.authed = entitlement.GetUserIDFromContext(r.Context())
			s.email, _ = entitlement.GetEmailFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))
		req := httptest.NewRequest(http.MethodGet, "/v1/me/subscription", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec, s
	}

	t.Run("valid token sets the user in context", func(t *testing.T) {
		tok, err := p.Issue(userID, "ada@example.com", "authenticated", time.Hour)
		require.NoError(t, err)

		rec, s := serve("Bearer " + tok)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, s.authed)
		assert.Equal(t, userID, s.userID)
		assert.Equal(t, "ada@example.com", s.email)
	})

	t.Run("missing token continues anonymously", func(t *testing.T) {
		rec, s := serve("")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.False(t, s.authed)
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		rec, _ := serve("Basic abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_token")
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		tok, err := p.Issue(userID, "", "authenticated", -time.Hour)
		require.NoError(t, err)

		rec, _ := serve("Bearer " + tok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "expired_token")
	})
}
