package middlewares

import "net/http"

// CORSMiddleware implements the operator's stated policy (§6): any
// origin, GET/POST only, and a fixed header allowlist — miner clients are
// public, unauthenticated browsers, not a multi-tenant app needing a
// per-origin allowlist.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Accept, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
