package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	id "casework/pkg/domain"
	"casework/pkg/requestcontext"
)

type stubValidator struct {
	actor id.Actor
	err   error
}

func (v stubValidator) ValidateToken(string) (id.Actor, error) {
	return v.actor, v.err
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRequireActor(t *testing.T) {
	var got id.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = requestcontext.Actor(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("valid token stores the actor", func(t *testing.T) {
		want := id.Actor{ID: 5, Role: id.RoleMaker}
		h := RequireActor(stubValidator{actor: want}, discard)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, want, got)
	})

	t.Run("missing header", func(t *testing.T) {
		h := RequireActor(stubValidator{}, discard)(next)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`, w.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		h := RequireActor(stubValidator{err: errors.New("bad signature")}, discard)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireRole(discard, id.RoleAdmin)(next)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req.WithContext(requestcontext.WithActor(req.Context(), id.Actor{ID: 1, Role: id.RoleMaker})))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req.WithContext(requestcontext.WithActor(req.Context(), id.Actor{ID: 1, Role: id.RoleAdmin})))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
