package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/oauth"
	"github.com/stretchr/testify/assert"
)

func TestAdminRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		claims map[string]string
		status int
	}{
		{"no claims", nil, http.StatusForbidden},
		{"other role", map[string]string{"roles": "viewer"}, http.StatusForbidden},
		{"admin", map[string]string{"roles": "admin"}, http.StatusNoContent},
		{"admin among others", map[string]string{"roles": "viewer, admin"}, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/forms", nil)
			if tt.claims != nil {
				req = req.WithContext(context.WithValue(req.Context(), oauth.ClaimsContext, tt.claims))
			}
			rec := httptest.NewRecorder()
			admin(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusForbidden {
				assert.JSONEq(t, `{"error":"Forbidden"}`, rec.Body.String())
			}
		})
	}
}
