package mw

import "net/http"

// CORS sets the fixed permissive cross-origin headers the submission API
// promises on every response, whatever the outcome. It deliberately does
// not short-circuit OPTIONS: the endpoint contract answers 405 to any
// non-POST method, headers included.
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", "POST")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			next.ServeHTTP(w, r)
		})
	}
}
