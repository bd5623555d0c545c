package admin_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	admin "felicity/pkg/platform/middleware/admin"
	auth "felicity/pkg/platform/middleware/auth"
)

func TestRequireRole(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := admin.RequireRole(logger, "admin", "superadmin")

	serve := func(role string) *httptest.ResponseRecorder {
		called := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		req := httptest.NewRequest(http.MethodGet, "/admin/registrations", nil)
		if role != "" {
			req = req.WithContext(auth.WithSession(req.Context(), "auth-1", role))
		}
		rec := httptest.NewRecorder()
		gate(called).ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, serve("admin").Code)
	assert.Equal(t, http.StatusNoContent, serve("superadmin").Code)

	rec := serve("user")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "forbidden")

	assert.Equal(t, http.StatusForbidden, serve("").Code, "missing claims are rejected")
}
