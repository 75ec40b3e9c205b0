package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harborstay/booking-backend/internal/ratelimit"
)

func mustNets(t *testing.T, cidrs ...string) []*net.IPNet {
	t.Helper()
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			t.Fatalf("parse %s: %v", cidr, err)
		}
		nets = append(nets, n)
	}
	return nets
}

func resolveThrough(t *testing.T, trusted []*net.IPNet, req *http.Request) string {
	t.Helper()
	var got string
	handler := RealIP(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIP(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestRealIP(t *testing.T) {
	trusted := mustNets(t, "10.0.0.0/8")

	tests := []struct {
		name    string
		remote  string
		forward string
		realIP  string
		want    string
	}{
		{name: "untrusted peer ignores headers", remote: "203.0.113.50:4000", forward: "198.51.100.1", realIP: "198.51.100.2", want: "203.0.113.50"},
		{name: "trusted peer without headers", remote: "10.0.0.1:4000", want: "10.0.0.1"},
		{name: "trusted peer uses real ip", remote: "10.0.0.1:4000", realIP: "172.16.0.9", want: "172.16.0.9"},
		{name: "rightmost untrusted hop wins", remote: "10.0.0.1:4000", forward: " 198.51.100.77 , 203.0.113.7 , 10.0.0.2", want: "203.0.113.7"},
		{name: "fully trusted chain falls back to first hop", remote: "10.0.0.1:4000", forward: "10.1.1.1, 10.0.0.2", want: "10.1.1.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.forward != "" {
				req.Header.Set("X-Forwarded-For", tt.forward)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := resolveThrough(t, trusted, req); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestClientIPWithoutRealIPUsesPeer(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.50:4000"
	req.Header.Set("X-Forwarded-For", "198.51.100.1")
	if got := ClientIP(req); got != "203.0.113.50" {
		t.Fatalf("expected peer address, got %s", got)
	}
}

func TestRateLimit_RotatingForwardedForDoesNotEvadeOrigin(t *testing.T) {
	limited := RateLimit(ratelimit.PolicySearch, newSearchLimiter(t, 1), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	handler := RealIP(nil)(limited)

	codes := make([]int, 0, 2)
	for _, spoofed := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil)
		req.RemoteAddr = "203.0.113.50:4000"
		req.Header.Set("X-Forwarded-For", spoofed)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}
