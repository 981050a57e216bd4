package ui

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSameHostOrigin(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"no origin header", "", true},
		{"same host", "http://dashboard.local:8080", true},
		{"same host different case", "http://DASHBOARD.LOCAL:8080", true},
		{"cross origin", "http://evil.example.com", false},
		{"same name wrong port", "http://dashboard.local:9999", false},
		{"unparsable origin", "http://a b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ws/monitor", nil)
			req.Host = "dashboard.local:8080"
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := sameHostOrigin(req); got != tt.want {
				t.Errorf("origin %q allowed = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestMonitorSocketRejectsCrossOrigin(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/ws/monitor", nil)
	req.Host = "dashboard.local:8080"
	req.Header.Set("Origin", "http://evil.example.com")
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")

	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("cross-origin upgrade = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
