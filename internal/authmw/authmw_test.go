package authmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func protected(token string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Bearer(token)(next)
}

func TestBearer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		token      string
		header     string
		wantStatus int
	}{
		{"valid token", "secret-123", "Bearer secret-123", http.StatusOK},
		{"missing header", "secret-123", "", http.StatusUnauthorized},
		{"wrong token", "secret-123", "Bearer wrong", http.StatusUnauthorized},
		{"wrong scheme", "secret-123", "Basic secret-123", http.StatusUnauthorized},
		{"bare token without scheme", "secret-123", "secret-123", http.StatusUnauthorized},
		{"token is prefix of expected", "secret-123", "Bearer secret-12", http.StatusUnauthorized},
		{"expected is prefix of token", "secret-123", "Bearer secret-1234", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/x/notes", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(tt.token).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusUnauthorized {
				if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q, want application/json", ct)
				}
			}
		})
	}
}

func TestBearer_EmptyTokenDisablesCheck(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/alerts/x/notes", nil)
	rec := httptest.NewRecorder()
	protected("").ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (open boundary)", rec.Code)
	}
}
