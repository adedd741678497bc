package auth

import (
	"encoding/json"
	"net/http"
)

// Middleware authenticates HTTP requests with the same bearer tokens the
// gRPC interceptor accepts. Requests without a valid token get 401.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := ParseBearer(r.Header.Get("Authorization"), secret)
			if err != nil {
				writeUnauthorized(w, "auth error: "+err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireKindHTTP rejects authenticated callers of any other kind with 403.
func RequireKindHTTP(kind Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				writeUnauthorized(w, "missing principal")
				return
			}
			if p.Kind != kind {
				writeJSON(w, http.StatusForbidden, "forbidden", "only "+string(kind)+" can perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="sewa"`)
	writeJSON(w, http.StatusUnauthorized, "unauthenticated", msg)
}

func writeJSON(w http.ResponseWriter, code int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"kind": kind, "message": msg})
}
