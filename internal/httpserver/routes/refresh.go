package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/plugmarket/plugmarket/internal/httpserver/deps"
	"github.com/plugmarket/plugmarket/internal/httpserver/handlers"
	"github.com/plugmarket/plugmarket/internal/httpserver/mw"
)

func init() { Register(registerRefresh) }

func registerRefresh(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger)).Post("/refresh", handlers.Refresh(d))
}
