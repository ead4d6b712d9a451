package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/plugmarket/plugmarket/internal/httpserver/deps"
	"github.com/plugmarket/plugmarket/internal/httpserver/handlers"
	"github.com/plugmarket/plugmarket/internal/httpserver/mw"
)

func init() { Register(registerSubmit) }

// Registered for all methods: the handler owns the 405 envelope so that
// non-POST requests still get the JSON body and CORS headers.
func registerSubmit(r chi.Router, d deps.Deps) {
	r.With(mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.RateBurst,
		RefillPerIPPerMin: d.RatePerMin,
		TrustProxy:        d.TrustProxy,
	})).Handle("/submit", handlers.Submit(d))
}
