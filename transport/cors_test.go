package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okBackend() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSHandler(t *testing.T) {
	t.Run("allows any origin with wildcard", func(t *testing.T) {
		handler := CORSHandler(DefaultCORSConfig(), okBackend())

		req := httptest.NewRequest(http.MethodGet, "/sse", nil)
		req.Header.Set("Origin", "http://example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
	})

	t.Run("allows only listed origins", func(t *testing.T) {
		config := CORSConfig{AllowOrigins: []string{"http://allowed.test"}}
		handler := CORSHandler(config, okBackend())

		req := httptest.NewRequest(http.MethodGet, "/sse", nil)
		req.Header.Set("Origin", "http://allowed.test")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://allowed.test" {
			t.Errorf("Allow-Origin = %q, want http://allowed.test", got)
		}

		req = httptest.NewRequest(http.MethodGet, "/sse", nil)
		req.Header.Set("Origin", "http://other.test")
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty for disallowed origin", got)
		}
	})

	t.Run("answers preflight", func(t *testing.T) {
		handler := CORSHandler(DefaultCORSConfig(), okBackend())

		req := httptest.NewRequest(http.MethodOptions, "/messages", nil)
		req.Header.Set("Origin", "http://example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("preflight status = %d, want 204", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Error("expected Allow-Methods on preflight")
		}
		if got := rec.Header().Get("Access-Control-Max-Age"); got != "86400" {
			t.Errorf("Max-Age = %q, want 86400", got)
		}
	})

	t.Run("passes through without origin", func(t *testing.T) {
		handler := CORSHandler(CORSConfig{AllowOrigins: []string{"http://allowed.test"}}, okBackend())

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})

	t.Run("sets credentials header", func(t *testing.T) {
		config := DefaultCORSConfig()
		config.AllowCredentials = true
		handler := CORSHandler(config, okBackend())

		req := httptest.NewRequest(http.MethodGet, "/sse", nil)
		req.Header.Set("Origin", "http://example.com")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
			t.Errorf("Allow-Credentials = %q, want true", got)
		}
	})
}
