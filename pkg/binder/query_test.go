package binder_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/focusflow/pkg/binder"
)

type eventsRequest struct {
	Date     string   `query:"date"`
	Calendar string   `query:"calendar"`
	Limit    *int     `query:"limit"`
	Tags     []string `query:"tag"`
	Ignored  string
}

func TestQuery(t *testing.T) {
	t.Parallel()

	bind := binder.Query()

	t.Run("binds tagged fields only", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/?date=2025-03-10&limit=5&tag=deep,shallow&ignored=x", nil)

		var req eventsRequest
		require.NoError(t, bind(r, &req))
		assert.Equal(t, "2025-03-10", req.Date)
		assert.Empty(t, req.Calendar)
		require.NotNil(t, req.Limit)
		assert.Equal(t, 5, *req.Limit)
		assert.Equal(t, []string{"deep", "shallow"}, req.Tags)
		assert.Empty(t, req.Ignored)
	})

	t.Run("reports malformed numbers", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/?limit=many", nil)

		var req eventsRequest
		assert.ErrorIs(t, bind(r, &req), binder.ErrFailedToParseQuery)
	})

	t.Run("requires a struct pointer", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		var req eventsRequest
		assert.ErrorIs(t, bind(r, req), binder.ErrFailedToParseQuery)
	})
}

func TestPath(t *testing.T) {
	t.Parallel()

	bind := binder.Path(chi.URLParam)

	serve := func(t *testing.T, path string, v any) error {
		t.Helper()
		var err error
		router := chi.NewRouter()
		router.Delete("/admins/{userID}", func(w http.ResponseWriter, r *http.Request) {
			err = bind(r, v)
		})
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, path, nil))
		return err
	}

	t.Run("binds path parameters into strings", func(t *testing.T) {
		t.Parallel()
		var req struct {
			UserID string `path:"userID"`
		}
		require.NoError(t, serve(t, "/admins/abc", &req))
		assert.Equal(t, "abc", req.UserID)
	})

	t.Run("binds text unmarshalers", func(t *testing.T) {
		t.Parallel()
		id := uuid.New()
		var req struct {
			UserID uuid.UUID `path:"userID"`
		}
		require.NoError(t, serve(t, "/admins/"+id.String(), &req))
		assert.Equal(t, id, req.UserID)
	})

	t.Run("reports values the field type rejects", func(t *testing.T) {
		t.Parallel()
		var req struct {
			UserID uuid.UUID `path:"userID"`
		}
		assert.ErrorIs(t, serve(t, "/admins/nope", &req), binder.ErrFailedToParsePath)
	})
}
