package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Keys holds the API keys accepted by the auth middleware. Read keys open
// the monitor status routes; admin keys open everything.
type Keys struct {
	Read  []string
	Admin []string
}

// presentedKey reads a bearer token or, failing that, X-API-Key.
func presentedKey(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(r.Header.Get("X-API-Key"))
}

// matchAny compares against every key so timing does not reveal which one
// matched.
func matchAny(given string, sets ...[]string) bool {
	if given == "" {
		return false
	}
	ok := 0
	for _, set := range sets {
		for _, k := range set {
			ok |= subtle.ConstantTimeCompare([]byte(k), []byte(given))
		}
	}
	return ok == 1
}

// guard rejects requests whose key is in none of sets. With no keys
// configured at all the guard is a no-op, which keeps local runs open.
func guard(denyCode int, denyMsg string, sets ...[]string) func(http.Handler) http.Handler {
	configured := false
	for _, set := range sets {
		configured = configured || len(set) > 0
	}
	body := []byte(`{"error":"` + denyMsg + `"}`)
	return func(next http.Handler) http.Handler {
		if !configured {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matchAny(presentedKey(r), sets...) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(denyCode)
				_, _ = w.Write(body)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRead admits read or admin keys.
func RequireRead(keys Keys) func(http.Handler) http.Handler {
	return guard(http.StatusUnauthorized, "unauthorized", keys.Read, keys.Admin)
}

// RequireAdmin admits admin keys only.
func RequireAdmin(keys Keys) func(http.Handler) http.Handler {
	return guard(http.StatusForbidden, "forbidden", keys.Admin)
}
