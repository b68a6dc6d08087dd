package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestRealIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xRealIP    string
		want       string
	}{
		{name: "remote addr only", remoteAddr: "10.0.0.1:5432", want: "10.0.0.1"},
		{name: "x-forwarded-for wins", remoteAddr: "10.0.0.1:5432", xff: "203.0.113.7", want: "203.0.113.7"},
		{name: "x-forwarded-for first entry", remoteAddr: "10.0.0.1:5432", xff: "203.0.113.7, 198.51.100.2", want: "203.0.113.7"},
		{name: "x-real-ip fallback", remoteAddr: "10.0.0.1:5432", xRealIP: "203.0.113.9", want: "203.0.113.9"},
		{name: "unparseable remote addr", remoteAddr: "garbage", want: "garbage"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-Ip", tt.xRealIP)
			}
			assert.Equal(t, tt.want, realIP(req))
		})
	}
}

func TestLimit_EnforcesBurstPerIP(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(0), 2)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1:1111"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1111"))

	// A different client is tracked separately.
	assert.Equal(t, http.StatusOK, do("10.0.0.2:2222"))
}
