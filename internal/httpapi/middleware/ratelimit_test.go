package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimit_AllowsThenBlocks(t *testing.T) {
	h := RateLimit(60, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "1.2.3.4:1234"

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("want 200 got %d", rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != 429 {
		t.Fatalf("want 429 got %d", rr.Code)
	}

	time.Sleep(1100 * time.Millisecond)
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, req)
	if rr2.Code != 200 {
		t.Fatalf("want 200 after refill got %d", rr2.Code)
	}
}

func TestRateLimit_PerClient(t *testing.T) {
	h := RateLimit(60, 1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	a := httptest.NewRequest("POST", "/", nil)
	a.RemoteAddr = "10.0.0.1:5000"
	b := httptest.NewRequest("POST", "/", nil)
	b.RemoteAddr = "10.0.0.2:5000"
	proxied := httptest.NewRequest("POST", "/", nil)
	proxied.RemoteAddr = "10.0.0.1:5000"
	proxied.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	for _, req := range []*http.Request{a, b} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("first request from %s should pass, got %d", req.RemoteAddr, rr.Code)
		}
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, proxied)
	if rr.Code != 429 {
		t.Fatalf("untrusted peer cannot pick a fresh bucket via X-Forwarded-For, got %d", rr.Code)
	}
}

func TestRateLimit_TrustedProxyForwardsClient(t *testing.T) {
	h := RateLimit(60, 1, "10.0.0.1")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	send := func(xff string) int {
		req := httptest.NewRequest("POST", "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := send("203.0.113.9"); code != 200 {
		t.Fatalf("first client via proxy should pass, got %d", code)
	}
	if code := send("203.0.113.10"); code != 200 {
		t.Fatalf("second client via proxy has its own bucket, got %d", code)
	}
	// a spoofed left-most entry does not change the right-most client
	if code := send("198.51.100.1, 203.0.113.9"); code != 429 {
		t.Fatalf("spoofed hop should not reset the bucket, got %d", code)
	}
}

func TestClientIP(t *testing.T) {
	trusted := map[string]bool{"10.0.0.1": true, "10.0.0.2": true}
	tests := []struct {
		name   string
		remote string
		xff    string
		want   string
	}{
		{"direct", "192.0.2.5:80", "", "192.0.2.5"},
		{"untrusted peer ignores header", "192.0.2.5:80", "203.0.113.9", "192.0.2.5"},
		{"trusted peer", "10.0.0.1:80", "203.0.113.9", "203.0.113.9"},
		{"proxy chain", "10.0.0.1:80", "203.0.113.9, 10.0.0.2", "203.0.113.9"},
		{"trusted peer without header", "10.0.0.1:80", "", "10.0.0.1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if got := clientIP(req, trusted); got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	h := RateLimit(0, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest("GET", "/", nil)
	for i := 0; i < 50; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != 200 {
			t.Fatalf("disabled limiter should pass everything, got %d", rr.Code)
		}
	}
}
